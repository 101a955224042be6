package presenter

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	p := New()
	assert.NotNil(t, p)
	assert.Equal(t, os.Stdout, p.output)
	assert.Equal(t, os.Stderr, p.errorOutput)
	assert.False(t, p.quiet)
}

func TestNewWithOptions(t *testing.T) {
	var output, errorOutput bytes.Buffer
	p := NewWithOptions(&output, &errorOutput, ColorNever)

	assert.Equal(t, &output, p.output)
	assert.Equal(t, &errorOutput, p.errorOutput)
}

func TestDetectColorMode(t *testing.T) {
	tests := []struct {
		name     string
		noColor  string
		envColor string
		expected ColorMode
	}{
		{"NO_COLOR set", "1", "", ColorNever},
		{"SKILLCTL_COLOR always", "", "always", ColorAlways},
		{"SKILLCTL_COLOR force", "", "force", ColorAlways},
		{"SKILLCTL_COLOR never", "", "never", ColorNever},
		{"SKILLCTL_COLOR off", "", "off", ColorNever},
		{"default", "", "", ColorAuto},
		{"invalid value", "", "invalid", ColorAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.noColor)
			t.Setenv("SKILLCTL_COLOR", tt.envColor)

			assert.Equal(t, tt.expected, detectColorMode())
		})
	}
}

func TestError(t *testing.T) {
	var errorOutput bytes.Buffer
	p := NewWithOptions(nil, &errorOutput, ColorNever)

	p.Error(errors.New("boom"), "loading corpus")

	output := errorOutput.String()
	assert.Contains(t, output, "Error:")
	assert.Contains(t, output, "loading corpus")
	assert.Contains(t, output, "boom")

	errorOutput.Reset()
	p.Error(errors.New("boom"), "")
	assert.Contains(t, errorOutput.String(), "boom")
	assert.NotContains(t, errorOutput.String(), "loading corpus")

	errorOutput.Reset()
	p.Error(nil, "ignored")
	assert.Empty(t, errorOutput.String())
}

func TestErrorShownInQuietMode(t *testing.T) {
	var errorOutput bytes.Buffer
	p := NewWithOptions(nil, &errorOutput, ColorNever)
	p.SetQuiet(true)

	p.Error(errors.New("boom"), "")
	assert.Contains(t, errorOutput.String(), "boom")
}

func TestMessages(t *testing.T) {
	var output bytes.Buffer
	p := NewWithOptions(&output, nil, ColorNever)

	p.Success("installed")
	assert.Contains(t, output.String(), "✓")
	assert.Contains(t, output.String(), "installed")

	output.Reset()
	p.Warning("unknown category")
	assert.Contains(t, output.String(), "⚠")
	assert.Contains(t, output.String(), "unknown category")

	output.Reset()
	p.Info("3 skills found")
	assert.Contains(t, output.String(), "3 skills found")

	output.Reset()
	p.Section("Installed bundles")
	assert.Contains(t, output.String(), "Installed bundles")

	output.Reset()
	p.Separator()
	assert.Contains(t, output.String(), strings.Repeat("-", 10))
}

func TestQuietModeSuppressesOutput(t *testing.T) {
	var output bytes.Buffer
	p := NewWithOptions(&output, nil, ColorNever)
	p.SetQuiet(true)

	p.Success("installed")
	p.Warning("warn")
	p.Info("info")
	p.Section("section")
	p.Separator()

	assert.Empty(t, output.String())
	assert.True(t, p.IsQuiet())

	p.SetQuiet(false)
	assert.False(t, p.IsQuiet())
}

func TestDefaultPresenterFunctions(t *testing.T) {
	var output, errorOutput bytes.Buffer
	prev := SetDefault(NewWithOptions(&output, &errorOutput, ColorNever))
	defer SetDefault(prev)

	Error(errors.New("boom"), "context")
	assert.Contains(t, errorOutput.String(), "boom")
	assert.Contains(t, errorOutput.String(), "context")

	output.Reset()
	Success("done")
	assert.Contains(t, output.String(), "done")

	output.Reset()
	Warning("careful")
	assert.Contains(t, output.String(), "careful")

	output.Reset()
	Info("hello")
	assert.Contains(t, output.String(), "hello")

	output.Reset()
	Section("Skills")
	assert.Contains(t, output.String(), "Skills")

	output.Reset()
	Separator()
	assert.Contains(t, output.String(), "----")

	SetQuiet(true)
	output.Reset()
	Info("suppressed")
	assert.Empty(t, output.String())
	SetQuiet(false)
}

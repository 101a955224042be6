package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlainPassesThrough(t *testing.T) {
	r := NewPlain()

	doc := "# Title\n\nSome **bold** text.\n"
	out, err := r.Render(doc)
	require.NoError(t, err)
	assert.Equal(t, doc, out)
}

func TestNewDegradesWithoutTerminal(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	r, err := New()
	require.NoError(t, err)
	assert.True(t, r.plain)

	out, err := r.Render("plain text")
	require.NoError(t, err)
	assert.Equal(t, "plain text", out)
}

package skill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	content := `---
name: schema-design
description: Best practices for relational schema design
license: Apache-2.0
compatibility: Works with any SQL database
allowed-tools:
  - Read
  - Grep
metadata:
  author: example
  version: 1.2.0
  category: data
---

# Schema Design

Normalize until it hurts, denormalize until it works.
`

	s, err := Parse([]byte(content))
	require.NoError(t, err)

	assert.Equal(t, "schema-design", s.Name)
	assert.Equal(t, "Best practices for relational schema design", s.Description)
	assert.Equal(t, "Apache-2.0", s.License)
	assert.Equal(t, "Works with any SQL database", s.Compatibility)
	assert.Equal(t, []string{"Read", "Grep"}, s.AllowedTools)
	assert.True(t, s.UserInvocable)
	assert.Equal(t, "example", s.Metadata.Author)
	assert.Equal(t, "1.2.0", s.Metadata.Version)
	assert.Equal(t, "data", s.Metadata.Category)
	assert.Contains(t, s.Content, "# Schema Design")
	assert.NotContains(t, s.Content, "license:")
}

func TestParseAllowedToolsString(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected []string
	}{
		{
			name:     "space separated",
			value:    "Read Grep Glob",
			expected: []string{"Read", "Grep", "Glob"},
		},
		{
			name:     "comma separated",
			value:    "Read, Grep, Bash",
			expected: []string{"Read", "Grep", "Bash"},
		},
		{
			name:     "bracketed list",
			value:    "[Read, Grep]",
			expected: []string{"Read", "Grep"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := `---
name: test-skill
description: A test skill
allowed-tools: ` + tt.value + `
---

Body.
`
			s, err := Parse([]byte(content))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, []string(s.AllowedTools))
		})
	}
}

func TestParseUserInvocable(t *testing.T) {
	t.Run("absent defaults to true", func(t *testing.T) {
		s, err := Parse([]byte("---\nname: a-skill\ndescription: d\n---\nbody\n"))
		require.NoError(t, err)
		assert.True(t, s.UserInvocable)
	})

	t.Run("explicit false", func(t *testing.T) {
		s, err := Parse([]byte("---\nname: a-skill\ndescription: d\nuser-invocable: false\n---\nbody\n"))
		require.NoError(t, err)
		assert.False(t, s.UserInvocable)
	})
}

func TestParseErrors(t *testing.T) {
	t.Run("missing frontmatter", func(t *testing.T) {
		_, err := Parse([]byte("# Just a heading\n\nNo frontmatter here.\n"))
		assert.Error(t, err)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := Parse([]byte("---\ndescription: no name\n---\nbody\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name is required")
	})

	t.Run("missing description", func(t *testing.T) {
		_, err := Parse([]byte("---\nname: no-description\n---\nbody\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "description is required")
	})
}

func TestSplitRaw(t *testing.T) {
	yamlText, body, ok := SplitRaw("---\nname: x\n---\n\nBody text.\n")
	require.True(t, ok)
	assert.Equal(t, "name: x", yamlText)
	assert.Equal(t, "Body text.\n", body)

	_, body, ok = SplitRaw("no frontmatter")
	assert.False(t, ok)
	assert.Equal(t, "no frontmatter", body)

	// Unterminated frontmatter is treated as body
	_, _, ok = SplitRaw("---\nname: x\n")
	assert.False(t, ok)
}

func TestSplitTools(t *testing.T) {
	assert.Equal(t, []string{"Read", "Grep"}, SplitTools("Read Grep"))
	assert.Equal(t, []string{"Read", "Grep"}, SplitTools("Read,Grep"))
	assert.Equal(t, []string{"Read", "Grep"}, SplitTools("  Read ,  Grep  "))
	assert.Empty(t, SplitTools(""))
}

func TestKnownCategory(t *testing.T) {
	for _, c := range KnownCategories {
		assert.True(t, KnownCategory(c))
	}
	assert.False(t, KnownCategory("networking"))
	assert.False(t, KnownCategory(""))
}

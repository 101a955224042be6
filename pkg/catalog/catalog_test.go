package catalog

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillctl/skillctl/pkg/skill"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(context.Background(), filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func testSkills() map[string]*skill.Skill {
	return map[string]*skill.Skill{
		"schema-design": {
			Name:          "schema-design",
			Description:   "Relational schema design practices",
			License:       "Apache-2.0",
			AllowedTools:  []string{"Read", "Grep"},
			UserInvocable: true,
			Metadata:      skill.Metadata{Author: "example", Version: "1.0.0", Category: "data"},
			Directory:     "/corpus/schema-design",
			Content:       "# Schema Design\n",
		},
		"incident-response": {
			Name:          "incident-response",
			Description:   "Incident response playbooks",
			UserInvocable: true,
			Metadata:      skill.Metadata{Category: "operations"},
			Directory:     "/corpus/incident-response",
			Content:       "# Incident Response\n",
		},
		"commit-message": {
			Name:          "commit-message",
			Description:   "Commit message conventions",
			UserInvocable: true,
			Metadata:      skill.Metadata{Category: "vcs"},
			Builtin:       true,
			Content:       "# Commit Messages\n",
		},
	}
}

func TestRebuildAndList(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	scanID, err := c.Rebuild(ctx, testSkills())
	require.NoError(t, err)
	assert.NotEmpty(t, scanID)

	entries, err := c.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Sorted by name
	assert.Equal(t, "commit-message", entries[0].Name)
	assert.Equal(t, "incident-response", entries[1].Name)
	assert.Equal(t, "schema-design", entries[2].Name)

	assert.Equal(t, []string{"Read", "Grep"}, entries[2].Tools())
	assert.Equal(t, scanID, entries[0].ScanID)
	assert.True(t, entries[0].Builtin)
}

func TestEntryMarshalJSONExposesTools(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	_, err := c.Rebuild(ctx, testSkills())
	require.NoError(t, err)

	entry, err := c.Get(ctx, "schema-design")
	require.NoError(t, err)

	payload, err := json.Marshal(entry)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"allowedTools":["Read","Grep"]`)

	// Entries without tools omit the field entirely
	entry, err = c.Get(ctx, "commit-message")
	require.NoError(t, err)
	payload, err = json.Marshal(entry)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "allowedTools")
}

func TestRebuildReplacesIndex(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	_, err := c.Rebuild(ctx, testSkills())
	require.NoError(t, err)

	_, err = c.Rebuild(ctx, map[string]*skill.Skill{
		"only-skill": {Name: "only-skill", Description: "d", UserInvocable: true},
	})
	require.NoError(t, err)

	entries, err := c.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "only-skill", entries[0].Name)
}

func TestListFilters(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	_, err := c.Rebuild(ctx, testSkills())
	require.NoError(t, err)

	t.Run("by category", func(t *testing.T) {
		entries, err := c.List(ctx, Filter{Category: "data"})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "schema-design", entries[0].Name)
	})

	t.Run("by name glob", func(t *testing.T) {
		entries, err := c.List(ctx, Filter{NameGlob: "*-design"})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "schema-design", entries[0].Name)
	})

	t.Run("by substring", func(t *testing.T) {
		entries, err := c.List(ctx, Filter{Substring: "playbook"})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "incident-response", entries[0].Name)
	})

	t.Run("invalid glob", func(t *testing.T) {
		_, err := c.List(ctx, Filter{NameGlob: "[unclosed"})
		assert.Error(t, err)
	})
}

func TestGet(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	_, err := c.Rebuild(ctx, testSkills())
	require.NoError(t, err)

	entry, err := c.Get(ctx, "incident-response")
	require.NoError(t, err)
	assert.Equal(t, "operations", entry.Category)
	assert.NotEmpty(t, entry.BodyHash)

	_, err = c.Get(ctx, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestStats(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.Nil(t, stats.LastScan)

	scanID, err := c.Rebuild(ctx, testSkills())
	require.NoError(t, err)

	stats, err = c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Builtin)
	assert.Equal(t, map[string]int{"data": 1, "operations": 1, "vcs": 1}, stats.ByCategory)
	require.NotNil(t, stats.LastScan)
	assert.Equal(t, scanID, stats.LastScan.ID)
	assert.Equal(t, 3, stats.LastScan.SkillCount)
}

func TestOpenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	ctx := context.Background()

	c1, err := Open(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, c1.Close())

	// Reopening runs migrations again without error
	c2, err := Open(ctx, dbPath)
	require.NoError(t, err)
	defer c2.Close()

	_, err = c2.List(ctx, Filter{})
	assert.NoError(t, err)
}

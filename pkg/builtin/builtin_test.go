package builtin

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillctl/skillctl/pkg/skill"
)

func TestNames(t *testing.T) {
	names, err := Names()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"commit-message", "skill-authoring"}, names)
}

func TestBuiltinSkillsParse(t *testing.T) {
	names, err := Names()
	require.NoError(t, err)

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			content, err := fs.ReadFile(FS(), name+"/"+skill.SkillFileName)
			require.NoError(t, err)

			s, err := skill.Parse(content)
			require.NoError(t, err)
			assert.Equal(t, name, s.Name)
			assert.NotEmpty(t, s.Description)
			assert.NotEmpty(t, s.Content)
		})
	}
}

func TestBuiltinsDiscoverable(t *testing.T) {
	discovery, err := skill.NewDiscovery(
		skill.WithSkillDirs(t.TempDir()),
		skill.WithBuiltins(FS()),
	)
	require.NoError(t, err)

	skills, err := discovery.DiscoverSkills()
	require.NoError(t, err)
	require.Len(t, skills, 2)
	assert.True(t, skills["commit-message"].Builtin)
	assert.True(t, skills["skill-authoring"].Builtin)
}

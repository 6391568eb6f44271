package profiles_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sherwynjoel/hybridllm/profiles"
)

func TestList(t *testing.T) {
	names, err := profiles.List()
	require.NoError(t, err)

	for _, name := range []string{"default", "python", "node", "jvm", "cpp"} {
		assert.Contains(t, names, name, "should contain profile %q", name)
	}

	// Names should be sorted.
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i], "profiles should be sorted")
	}
}

func TestGet_Default(t *testing.T) {
	p, err := profiles.Get("default")
	require.NoError(t, err)
	assert.Equal(t, "default", p.Name)
	assert.Empty(t, p.ExcludeDirs)
	assert.Empty(t, p.IgnorePatterns)
}

func TestGet_Python(t *testing.T) {
	p, err := profiles.Get("python")
	require.NoError(t, err)
	assert.Contains(t, p.ExcludeDirs, "venv")
	assert.Contains(t, p.ExcludeDirs, ".venv")
	assert.NotEmpty(t, p.Description)
}

func TestGet_Unknown(t *testing.T) {
	_, err := profiles.Get("cobol")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestAll_PatternsAreValid(t *testing.T) {
	all, err := profiles.All()
	require.NoError(t, err)
	require.NotEmpty(t, all)
	for _, p := range all {
		assert.NoError(t, p.Options().Validate(), "profile %s", p.Name)
	}
}

func TestMerge(t *testing.T) {
	base, err := profiles.Get("node")
	require.NoError(t, err)

	merged := profiles.Merge(base, []string{"dist", "storybook-static", ""}, []string{"**/*.min.js", "fixtures/**"})
	assert.Equal(t, "node", merged.Name)
	assert.Equal(t, len(base.ExcludeDirs)+1, len(merged.ExcludeDirs))
	assert.Contains(t, merged.ExcludeDirs, "storybook-static")
	assert.Equal(t, len(base.IgnorePatterns)+1, len(merged.IgnorePatterns))
	assert.Equal(t, "fixtures/**", merged.IgnorePatterns[len(merged.IgnorePatterns)-1])

	// The base profile is not modified.
	assert.NotContains(t, base.ExcludeDirs, "storybook-static")
}

func TestOptions_Copies(t *testing.T) {
	p := profiles.Profile{ExcludeDirs: []string{"a"}}
	opts := p.Options()
	opts.ExcludeDirs[0] = "b"
	assert.Equal(t, "a", p.ExcludeDirs[0])
}

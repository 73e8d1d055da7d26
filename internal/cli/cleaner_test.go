package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleaner_Clean(t *testing.T) {
	t.Run("removes artifact and empty parents", func(t *testing.T) {
		output := t.TempDir()
		artifact := filepath.Join(output, "a", "b", "mappings.properties")
		require.NoError(t, os.MkdirAll(filepath.Dir(artifact), 0755))
		require.NoError(t, os.WriteFile(artifact, nil, 0644))

		target, removed, err := NewCleaner().Clean(output, "a/b/mappings.properties")
		require.NoError(t, err)
		assert.True(t, removed)
		assert.Equal(t, artifact, target)
		assert.NoDirExists(t, filepath.Join(output, "a"))
		assert.DirExists(t, output)
	})

	t.Run("keeps non-empty parents", func(t *testing.T) {
		output := t.TempDir()
		artifact := filepath.Join(output, "META-INF-CUSTOM", "mappings.properties")
		sibling := filepath.Join(output, "META-INF-CUSTOM", "other.properties")
		require.NoError(t, os.MkdirAll(filepath.Dir(artifact), 0755))
		require.NoError(t, os.WriteFile(artifact, nil, 0644))
		require.NoError(t, os.WriteFile(sibling, nil, 0644))

		_, removed, err := NewCleaner().Clean(output, "META-INF-CUSTOM/mappings.properties")
		require.NoError(t, err)
		assert.True(t, removed)
		assert.FileExists(t, sibling)
	})

	t.Run("missing artifact", func(t *testing.T) {
		_, removed, err := NewCleaner().Clean(t.TempDir(), "META-INF-CUSTOM/mappings.properties")
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("invalid resource", func(t *testing.T) {
		_, _, err := NewCleaner().Clean(t.TempDir(), "../outside.properties")
		assert.Error(t, err)
	})
}

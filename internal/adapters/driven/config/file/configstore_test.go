package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("embedding.model", "bge-m3"))
	require.NoError(t, store.Set("retrieval.top_k", 25))
	require.NoError(t, store.Set("retrieval.rrf_k", 60.0))
	require.NoError(t, store.Set("verbose", true))

	assert.Equal(t, "bge-m3", store.GetString("embedding.model"))
	assert.Equal(t, 25, store.GetInt("retrieval.top_k"))
	assert.Equal(t, 60.0, store.GetFloat("retrieval.rrf_k"))
	assert.True(t, store.GetBool("verbose"))
}

func TestConfigStore_MissingKeys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	_, ok := store.Get("nothing")
	assert.False(t, ok)
	assert.Equal(t, "", store.GetString("nothing"))
	assert.Equal(t, 0, store.GetInt("nothing"))
	assert.Equal(t, 0.0, store.GetFloat("nothing"))
	assert.False(t, store.GetBool("nothing"))
}

func TestConfigStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("chunking.size", 600))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 600, reopened.GetInt("chunking.size"))
}

func TestConfigStore_LoadsNestedTables(t *testing.T) {
	dir := t.TempDir()
	content := "[embedding]\nmodel = \"bge-m3\"\nbatch_size = 8\n\n[rerank]\ntop_k = 5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "bge-m3", store.GetString("embedding.model"))
	assert.Equal(t, 8, store.GetInt("embedding.batch_size"))
	assert.Equal(t, 5, store.GetInt("rerank.top_k"))
}

func TestConfigStore_GetFloatWidensIntegers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("rrf_k = 60\n"), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 60.0, store.GetFloat("rrf_k"))
}

func TestConfigStore_TypeMismatch(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("key", "a string"))

	assert.Equal(t, 0, store.GetInt("key"))
	assert.Equal(t, 0.0, store.GetFloat("key"))
	assert.False(t, store.GetBool("key"))
}

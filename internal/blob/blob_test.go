package blob

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, src Source, key string) string {
	t.Helper()
	_, rc, err := src.Get(context.Background(), key)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func TestFilesystem(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "site"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "site", "house.yaml"), []byte("name: house\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".hidden"), []byte("x"), 0o644))

	src, err := NewFilesystem(root)
	require.NoError(t, err)
	assert.Equal(t, DriverFilesystem, src.Driver())

	assert.Equal(t, "name: house\n", readAll(t, src, "site/house.yaml"))

	info, err := src.Head(context.Background(), "site/house.yaml")
	require.NoError(t, err)
	assert.Equal(t, int64(12), info.Size)
	assert.Equal(t, "application/yaml", info.ContentType)
	assert.NotEmpty(t, info.ETag)

	list, err := src.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "site/house.yaml", list[0].Key)

	_, err = src.Head(context.Background(), "missing.yaml")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = src.Get(context.Background(), "../etc/passwd")
	assert.Error(t, err)
	_, err = src.Head(context.Background(), "/abs")
	assert.Error(t, err)

	key, ok := src.Key(filepath.Join(root, "site", "house.yaml"))
	assert.True(t, ok)
	assert.Equal(t, "site/house.yaml", key)
	_, ok = src.Key(filepath.Join(filepath.Dir(root), "elsewhere"))
	assert.False(t, ok)
}

func TestFilesystemRootMustExist(t *testing.T) {
	_, err := NewFilesystem(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	m.Put("a.yaml", []byte("one"))
	m.Put("b/c.yaml", []byte("two"))

	assert.Equal(t, "one", readAll(t, m, "a.yaml"))
	list, err := m.List(context.Background(), "b/")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b/c.yaml", list[0].Key)

	_, _, err = m.Get(context.Background(), "zzz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpen(t *testing.T) {
	src, err := Open(context.Background(), Config{Driver: "memory"})
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, src.Driver())

	src, err = Open(context.Background(), Config{Root: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, DriverFilesystem, src.Driver())

	_, err = Open(context.Background(), Config{Driver: "ftp"})
	assert.Error(t, err)
	_, err = Open(context.Background(), Config{Driver: "s3"})
	assert.Error(t, err, "bucket required")
}

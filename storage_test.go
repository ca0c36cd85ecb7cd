package tryon

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveToStorage_DirStorage(t *testing.T) {
	dir := t.TempDir()
	result := &Result{Image: DataURL("image/jpeg", "aGVsbG8="), Text: "nice"}

	saved, err := SaveToStorage(context.Background(), DirStorage{Root: dir}, result, "looks/first")
	require.NoError(t, err)

	assert.Equal(t, "looks/first.jpg", saved.Path)
	assert.Equal(t, 5, saved.Size)
	assert.Equal(t, filepath.Join(dir, "looks", "first.jpg"), saved.Location)

	data, err := os.ReadFile(saved.Location)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
}

func TestSaveToStorage_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := SaveToStorage(ctx, nil, &Result{Image: DataURL("image/png", "AAAA")}, "x")
	assert.ErrorIs(t, err, ErrStorageNotConfigured)

	_, err = SaveToStorage(ctx, DirStorage{Root: t.TempDir()}, &Result{}, "x")
	assert.Error(t, err)
}

func TestDirStorage_RejectsEscapingPaths(t *testing.T) {
	store := DirStorage{Root: t.TempDir()}

	_, err := store.SaveFile(context.Background(), []byte("x"), "../outside.png", "image/png")
	assert.Error(t, err)
}

func TestGetMIMEType(t *testing.T) {
	assert.Equal(t, "image/jpeg", GetMIMEType("photo.JPG"))
	assert.Equal(t, "image/png", GetMIMEType("/tmp/a.png"))
	assert.Equal(t, "image/webp", GetMIMEType("b.webp"))
	assert.Equal(t, "", GetMIMEType("notes.txt"))
}

package normalizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()

	jpegPath := filepath.Join(dir, "person.jpg")
	require.NoError(t, imaging.Save(gradient(4, 4), jpegPath))
	f, err := OpenFile(jpegPath)
	require.NoError(t, err)
	assert.Equal(t, "person.jpg", f.Name)
	assert.Equal(t, "image/jpeg", f.MediaType)
	assert.NotEmpty(t, f.Data)

	// No extension: the content decides.
	pngNoExt := filepath.Join(dir, "outfit")
	require.NoError(t, imaging.Save(gradient(4, 4), pngNoExt+".png"))
	require.NoError(t, os.Rename(pngNoExt+".png", pngNoExt))
	f, err = OpenFile(pngNoExt)
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.MediaType)

	textPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("abcd"), 0o644))
	f, err = OpenFile(textPath)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", f.MediaType)

	_, err = OpenFile(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}

package uploads

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/uploads", 1024)
	require.NoError(t, err)

	url, err := store.SaveImage(bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	saved, err := os.ReadFile(filepath.Join(dir, filepath.Base(url)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, saved)
}

func TestSaveImageRejectsOtherFormats(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads", 1024)
	require.NoError(t, err)
	_, err = store.SaveImage(strings.NewReader("plain text, not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSaveImageTooLarge(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads", 4)
	require.NoError(t, err)
	_, err = store.SaveImage(bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestRemoveImage(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/uploads", 1024)
	require.NoError(t, err)
	url, err := store.SaveImage(bytes.NewReader(pngHeader))
	require.NoError(t, err)

	require.NoError(t, store.RemoveImage(url))
	_, err = os.Stat(filepath.Join(dir, filepath.Base(url)))
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.NoError(t, store.RemoveImage(url), "already removed")
	assert.NoError(t, store.RemoveImage(""))

	outside := filepath.Join(t.TempDir(), "keep.png")
	require.NoError(t, os.WriteFile(outside, pngHeader, 0o644))
	require.NoError(t, store.RemoveImage("/uploads/../../"+filepath.Base(filepath.Dir(outside))+"/keep.png"))
	_, err = os.Stat(outside)
	assert.NoError(t, err, "only files inside the upload dir are removed")
}

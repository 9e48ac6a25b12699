package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-detect/images"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte{0}, 0o600))
}

func TestListImageFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.JPG", "c.bmp", "notes.txt", "d.jpeg"} {
		touch(t, filepath.Join(dir, name))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))

	files, err := ListImageFiles(dir)
	require.NoError(t, err)

	assert.Equal(t, []ImageFile{
		{Path: filepath.Join(dir, "a.JPG"), Format: images.FormatJPEG},
		{Path: filepath.Join(dir, "b.png"), Format: images.FormatPNG},
		{Path: filepath.Join(dir, "d.jpeg"), Format: images.FormatJPEG},
	}, files)

	_, err = ListImageFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestResolveInputs(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "one.png"))
	single := filepath.Join(t.TempDir(), "two.jpg")
	touch(t, single)

	files, err := ResolveInputs([]string{dir, single})
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, images.FormatPNG, files[0].Format)
	assert.Equal(t, single, files[1].Path)

	bmp := filepath.Join(dir, "three.bmp")
	touch(t, bmp)
	_, err = ResolveInputs([]string{bmp})
	assert.ErrorIs(t, err, images.ErrUnsupportedFormat)

	_, err = ResolveInputs([]string{filepath.Join(dir, "missing.png")})
	assert.Error(t, err)
}

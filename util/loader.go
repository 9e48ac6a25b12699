// Package util - Input discovery for batch runs.
package util

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/images"
)

// ImageFile represents an image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Format is the format declared by the file extension.
	Format images.Format
}

// ListImageFiles returns the JPEG and PNG files in a directory, sorted by name.
// Files with other extensions and subdirectories are skipped.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: The image files.
// - error: Error if the directory cannot be read.
func ListImageFiles(dir string) ([]ImageFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read dir %s", dir)
	}

	var files []ImageFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		f, err := images.FormatFromPath(entry.Name())
		if err != nil {
			continue
		}
		files = append(files, ImageFile{Path: filepath.Join(dir, entry.Name()), Format: f})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	return files, nil
}

// ResolveInputs expands each argument into image files: directories are listed,
// files are passed through with their format resolved from the extension.
func ResolveInputs(paths []string) ([]ImageFile, error) {
	var out []ImageFile
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, errors.Wrapf(err, "stat %s", p)
		}
		if info.IsDir() {
			files, err := ListImageFiles(p)
			if err != nil {
				return nil, err
			}
			out = append(out, files...)
			continue
		}
		f, err := images.FormatFromPath(p)
		if err != nil {
			return nil, err
		}
		out = append(out, ImageFile{Path: p, Format: f})
	}
	return out, nil
}

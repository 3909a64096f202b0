// Package storage keeps uploaded images on local disk under the directory
// that the HTTP layer serves read-only at /static.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const imagesSubdir = "images"

// ImageStore writes uploads under <dir>/images and maps them to public URLs
// of the form <baseURL>/static/images/<name>.
type ImageStore struct {
	dir     string
	baseURL string
}

// NewImageStore ensures the images directory exists.
func NewImageStore(dir, baseURL string) (*ImageStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, imagesSubdir), 0o755); err != nil {
		return nil, fmt.Errorf("create images dir: %w", err)
	}
	return &ImageStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Save stores data under a generated unique name, keeping the original
// file extension, and returns the public URL.
func (s *ImageStore) Save(filename string, data []byte) (string, error) {
	name := uuid.NewString() + filepath.Ext(filename)
	path := filepath.Join(s.dir, imagesSubdir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write image %q: %w", name, err)
	}
	return s.baseURL + "/static/" + imagesSubdir + "/" + name, nil
}

// Remove deletes the file behind a public URL previously returned by Save.
// A URL that does not point into this store, or a file already gone, is
// not an error.
func (s *ImageStore) Remove(url string) error {
	rel, ok := strings.CutPrefix(url, s.baseURL+"/static/")
	if !ok || strings.Contains(rel, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove image %q: %w", rel, err)
	}
	return nil
}

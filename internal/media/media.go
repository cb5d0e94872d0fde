// Package media keeps product images on local disk and hands out the URL
// path they are served from.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const URLPrefix = "/uploads/"

var (
	ErrInvalidDataURL  = errors.New("invalid image data url")
	ErrUnsupportedType = errors.New("unsupported image type")
)

var extensions = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/jpg":     ".jpg",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

func IsDataURL(v string) bool {
	return strings.HasPrefix(v, "data:")
}

// Save decodes a base64 data URL, writes it under a fresh uuid name and
// returns the served path, e.g. /uploads/<uuid>.png.
func (s *Store) Save(dataURL string) (string, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(dataURL, "data:"), ",")
	if !ok || !IsDataURL(dataURL) {
		return "", ErrInvalidDataURL
	}
	mime, encoding, _ := strings.Cut(meta, ";")
	if encoding != "base64" {
		return "", ErrInvalidDataURL
	}
	ext, ok := extensions[strings.ToLower(mime)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mime)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}

	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return URLPrefix + name, nil
}

// Owns reports whether ref points at a file this store wrote.
func (s *Store) Owns(ref string) bool {
	_, ok := fileName(ref)
	return ok
}

// Delete removes the file behind ref. References this store did not issue
// (external URLs, legacy inline data) are ignored, as is a missing file.
func (s *Store) Delete(ref string) error {
	name, ok := fileName(ref)
	if !ok {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

func fileName(ref string) (string, bool) {
	if !strings.HasPrefix(ref, URLPrefix) {
		return "", false
	}
	name := strings.TrimPrefix(ref, URLPrefix)
	if name != filepath.Base(name) {
		return "", false
	}
	id := strings.TrimSuffix(name, filepath.Ext(name))
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return name, true
}

package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	// MaxFileSize limits uploaded images to 5 MB.
	MaxFileSize = 5 * 1024 * 1024
	// PublicPrefix is the URL path uploads are served under.
	PublicPrefix = "/uploads"
)

var (
	// ErrFileTooLarge rejects uploads over MaxFileSize.
	ErrFileTooLarge = errors.New("file exceeds the 5 MB limit")
	// ErrUnsupportedType rejects anything but jpeg/jpg/png.
	ErrUnsupportedType = errors.New("images only (jpeg, jpg, png)")
)

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
}

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Store saves validated image uploads to a local directory.
type Store struct {
	dir string
}

// NewStore creates the upload directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// SaveImage validates and persists a multipart image upload, returning the
// public reference path. Type and size checks run before any bytes are
// written.
func (s *Store) SaveImage(fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxFileSize {
		return "", ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedType
	}
	if ct := fh.Header.Get("Content-Type"); ct != "" && !allowedContentTypes[ct] {
		return "", ErrUnsupportedType
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	// Copy is capped so a lying Content-Length cannot blow past the limit.
	n, err := io.Copy(dst, io.LimitReader(src, MaxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if n > MaxFileSize {
		os.Remove(dst.Name())
		return "", ErrFileTooLarge
	}

	return PublicPrefix + "/" + name, nil
}

// Remove deletes a previously saved upload given its public path. A path
// outside the store or an already-removed file is not an error.
func (s *Store) Remove(publicPath string) error {
	name := strings.TrimPrefix(publicPath, PublicPrefix+"/")
	if name == "" || name == publicPath || strings.Contains(name, "/") {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove upload file: %w", err)
	}
	return nil
}

// Dir returns the filesystem directory backing the store.
func (s *Store) Dir() string { return s.dir }

// Package uploads stores movie posters on the local disk and hands back the
// public URL they are served from.
package uploads

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrUnsupportedFormat = errors.New("image must be a jpeg, png or webp file")
	ErrTooLarge          = errors.New("image is too large")
)

var allowedFormats = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type LocalStore struct {
	Dir       string
	URLPrefix string
	MaxSize   int64
}

func NewLocalStore(dir, urlPrefix string, maxSize int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{Dir: dir, URLPrefix: urlPrefix, MaxSize: maxSize}, nil
}

// SaveImage sniffs the content type, writes the file under a random name and
// returns its public URL.
func (s *LocalStore) SaveImage(src io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(src, s.MaxSize+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > s.MaxSize {
		return "", ErrTooLarge
	}
	mtype := mimetype.Detect(data)
	ext, ok := allowedFormats[mtype.String()]
	if !ok {
		return "", ErrUnsupportedFormat
	}
	name := uuid.NewString() + ext
	fullPath := filepath.Join(s.Dir, name)
	dst, err := os.OpenFile(fullPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	_, err = io.Copy(dst, bytes.NewReader(data))
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path.Join(s.URLPrefix, name), nil
}

// RemoveImage deletes a file previously returned by SaveImage. Only the base
// name of the URL is used, so it never reaches outside Dir. A missing file is
// not an error.
func (s *LocalStore) RemoveImage(url string) error {
	name := path.Base(url)
	if name == "." || name == "/" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.Dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

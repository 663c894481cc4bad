package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage writes media under a directory on disk and serves it through
// the media route.
type LocalStorage struct {
	Dir     string
	BaseURL string
}

func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStorage{Dir: dir, BaseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *LocalStorage) Save(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	// Keys contain a reports/<id>/ prefix; flatten to a single file name so
	// nothing escapes the upload dir.
	name := flatten(key)
	path := filepath.Join(s.Dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", err
	}
	return fmt.Sprintf("%s/%s", s.BaseURL, name), nil
}

func (s *LocalStorage) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(s.Dir, flatten(key)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Path resolves a stored file name for serving, rejecting traversal.
func (s *LocalStorage) Path(name string) string {
	return filepath.Join(s.Dir, filepath.Base(name))
}

func flatten(key string) string {
	return strings.ReplaceAll(key, "/", "_")
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/samudrayan/backend/pkg/crypto"
)

// LocalStore writes uploads to a directory on disk. It is the default backend
// for development and single-node deployments.
type LocalStore struct {
	baseDir string
	baseURL string
}

// NewLocalStore creates the base directory if needed. baseURL is the public
// prefix served for the directory, e.g. "/uploads".
func NewLocalStore(baseDir, baseURL string) (*LocalStore, error) {
	if baseDir == "" {
		return nil, errors.New("storage: base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create base directory: %w", err)
	}
	if baseURL == "" {
		baseURL = "/uploads"
	}
	return &LocalStore{baseDir: baseDir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Upload writes the content under a random key, keeping the original
// extension so the file is served with a sensible content type.
func (s *LocalStore) Upload(ctx context.Context, folder, filename string, content io.Reader) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	folder = sanitizeFolder(folder)
	token, err := crypto.GenerateToken(16)
	if err != nil {
		return nil, fmt.Errorf("storage: generate object key: %w", err)
	}
	key := path.Join(folder, token+sanitizeExt(filename))

	dst := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, fmt.Errorf("storage: create folder: %w", err)
	}

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("storage: create object: %w", err)
	}
	size, err := io.Copy(f, content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return nil, fmt.Errorf("storage: write object: %w", err)
	}

	return &Object{Key: key, URL: s.baseURL + "/" + key, Size: size}, nil
}

// Delete removes a stored object. Keys outside the base directory are
// rejected.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	clean := path.Clean("/" + key)
	target := filepath.Join(s.baseDir, filepath.FromSlash(clean))

	err := os.Remove(target)
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

// BaseDir exposes the storage root so the router can serve it statically.
func (s *LocalStore) BaseDir() string {
	return s.baseDir
}

func sanitizeFolder(folder string) string {
	folder = path.Clean("/" + folder)
	folder = strings.TrimPrefix(folder, "/")
	if folder == "" || folder == "." {
		return "misc"
	}
	return folder
}

func sanitizeExt(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}

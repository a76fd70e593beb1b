// Package storage persists uploaded files in a local content directory.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"catalog-service/internal/domain"

	"github.com/google/uuid"
)

// maxNameAttempts bounds how many fresh names are tried when a generated one already exists.
const maxNameAttempts = 5

// AssetStore persists uploaded bytes and returns the public relative path to them
type AssetStore interface {
	Store(ctx context.Context, r io.Reader, originalName string) (string, error)
}

// LocalAssetStore writes assets below Root and exposes them under PublicPrefix
type LocalAssetStore struct {
	root         string
	publicPrefix string
	now          func() time.Time
	newName      func(now time.Time, ext string) string
}

// NewLocalAssetStore creates a store rooted at dir. The directory is created on first write.
func NewLocalAssetStore(dir, publicPrefix string) *LocalAssetStore {
	return &LocalAssetStore{
		root:         dir,
		publicPrefix: "/" + strings.Trim(publicPrefix, "/"),
		now:          time.Now,
		newName:      generateName,
	}
}

// Root returns the content directory on disk
func (s *LocalAssetStore) Root() string {
	return s.root
}

// Store writes r under a collision-free generated name and returns "<prefix>/<name>".
// A partially written file is removed before the error is returned.
func (s *LocalAssetStore) Store(ctx context.Context, r io.Reader, originalName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", &domain.StorageError{Op: "mkdir", Path: s.root, Err: err}
	}

	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))

	var (
		f    *os.File
		name string
		err  error
	)
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name = s.newName(s.now(), ext)
		f, err = os.OpenFile(filepath.Join(s.root, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", &domain.StorageError{Op: "create", Path: name, Err: err}
		}
	}
	if err != nil {
		return "", &domain.StorageError{Op: "create", Path: name, Err: fmt.Errorf("no free name after %d attempts: %w", maxNameAttempts, err)}
	}

	fullPath := f.Name()
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(fullPath)
		return "", &domain.StorageError{Op: "write", Path: name, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(fullPath)
		return "", &domain.StorageError{Op: "close", Path: name, Err: err}
	}

	return path.Join(s.publicPrefix, name), nil
}

func generateName(now time.Time, ext string) string {
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), uuid.NewString(), ext)
}

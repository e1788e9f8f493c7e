// Package artifact keeps generated images outside of the database. Callers
// persist only the reference URL returned by Put.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/hyperengineering/carelog/internal/config"
)

// ErrUnknownReference is returned when a reference was not produced by the
// storage asked to delete it.
var ErrUnknownReference = errors.New("unknown artifact reference")

// Storage persists binary artifacts and returns a URL that refers to them.
type Storage interface {
	// Put stores data under a new unique name ending in ext.
	Put(ctx context.Context, data []byte, contentType, ext string) (ref string, err error)

	// Delete removes a previously stored artifact. Deleting a missing
	// artifact is not an error.
	Delete(ctx context.Context, ref string) error
}

// New creates the Storage selected by configuration.
func New(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Backend {
	case config.StorageS3:
		return NewS3Storage(cfg)
	case config.StorageLocal, "":
		return NewLocalStorage(cfg.LocalDir, cfg.PublicPrefix)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// objectName returns a fresh sortable file name.
func objectName(ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.ToLower(ulid.Make().String()) + ext
}

// LocalStorage writes artifacts to a directory served over HTTP under a
// public prefix.
type LocalStorage struct {
	dir    string
	prefix string
}

// NewLocalStorage creates dir if needed.
func NewLocalStorage(dir, publicPrefix string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	return &LocalStorage{dir: dir, prefix: "/" + strings.Trim(publicPrefix, "/")}, nil
}

// Dir returns the directory artifacts are written to.
func (l *LocalStorage) Dir() string {
	return l.dir
}

// Prefix returns the URL path prefix artifacts are served under.
func (l *LocalStorage) Prefix() string {
	return l.prefix
}

// Put writes data to a new file and returns its public path.
func (l *LocalStorage) Put(ctx context.Context, data []byte, contentType, ext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := objectName(ext)
	if err := os.WriteFile(filepath.Join(l.dir, name), data, 0644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path.Join(l.prefix, name), nil
}

// Delete removes the file behind ref.
func (l *LocalStorage) Delete(ctx context.Context, ref string) error {
	name, ok := strings.CutPrefix(ref, l.prefix+"/")
	if !ok || name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("%w: %s", ErrUnknownReference, ref)
	}
	if err := os.Remove(filepath.Join(l.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove artifact: %w", err)
	}
	return nil
}

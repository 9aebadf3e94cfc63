package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
)

var keyPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// FileGateway stores one JSON file per key inside a directory.
type FileGateway struct {
	dir string
}

// NewFileGateway creates the directory if needed and returns a gateway rooted at it.
func NewFileGateway(dir string) (*FileGateway, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	return &FileGateway{dir: dir}, nil
}

// Read implements Gateway.
func (g *FileGateway) Read(_ context.Context, key string) ([]byte, bool, error) {
	path, err := g.path(key)
	if err != nil {
		return nil, false, err
	}
	payload, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

// Write implements Gateway. The file is replaced atomically via rename.
func (g *FileGateway) Write(_ context.Context, key string, payload []byte) error {
	path, err := g.path(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(g.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (g *FileGateway) path(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("invalid snapshot key %q", key)
	}
	return filepath.Join(g.dir, key+".json"), nil
}

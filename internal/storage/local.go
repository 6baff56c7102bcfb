package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalStorage serves files below Root. With an empty Root paths are used as
// given; otherwise paths that leave Root are rejected with ErrInvalidPath.
type LocalStorage struct {
	Root string
}

// NewLocalStorage creates a local storage rooted at root
func NewLocalStorage(root string) *LocalStorage {
	return &LocalStorage{Root: root}
}

func (l *LocalStorage) resolve(p string) (string, error) {
	p = filepath.FromSlash(p)
	if l.Root == "" {
		return p, nil
	}
	full := p
	if !filepath.IsAbs(p) {
		full = filepath.Join(l.Root, p)
	}
	full = filepath.Clean(full)
	rel, err := filepath.Rel(filepath.Clean(l.Root), full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is outside the storage root", ErrInvalidPath, filepath.ToSlash(p))
	}
	return full, nil
}

// List returns the regular files in dir
func (l *LocalStorage) List(ctx context.Context, dir string) ([]string, error) {
	full, err := l.resolve(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to list %s: %w", dir, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		paths = append(paths, Join(filepath.ToSlash(dir), e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Get reads the file at p
func (l *LocalStorage) Get(ctx context.Context, p string) ([]byte, error) {
	full, err := l.resolve(p)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", p, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return data, nil
}

// Put writes data to p, creating parent directories
func (l *LocalStorage) Put(ctx context.Context, p string, data []byte) error {
	full, err := l.resolve(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", p, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	return nil
}

// Exists reports whether p is present
func (l *LocalStorage) Exists(ctx context.Context, p string) (bool, error) {
	full, err := l.resolve(p)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", p, err)
}

// Package storage abstracts where study files live: a local directory tree
// or an S3 bucket.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

var (
	// ErrNotFound is returned when a path does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidPath is returned for paths that escape the storage root
	ErrInvalidPath = errors.New("invalid path")
)

// Storage reads and writes whole files addressed by slash-separated paths
type Storage interface {
	// List returns the paths of the files directly inside dir, sorted
	List(ctx context.Context, dir string) ([]string, error)
	Get(ctx context.Context, p string) ([]byte, error)
	Put(ctx context.Context, p string, data []byte) error
	Exists(ctx context.Context, p string) (bool, error)
}

// Join joins path elements with forward slashes
func Join(elem ...string) string {
	return path.Join(elem...)
}

// Base returns the last element of p
func Base(p string) string {
	return path.Base(strings.ReplaceAll(p, "\\", "/"))
}

// Dir returns all but the last element of p
func Dir(p string) string {
	return path.Dir(strings.ReplaceAll(p, "\\", "/"))
}

package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// SidecarVersion is the first line of every series description file
	SidecarVersion = "KentDbver1.1.0.12"

	// SidecarSuffix is appended to the series file stem
	SidecarSuffix = "_seriesdesc.txt"
)

// SidecarPath returns the description file for a series stem in dir
func SidecarPath(dir, seriesFileName string) string {
	return filepath.Join(dir, seriesFileName+SidecarSuffix)
}

// ParseSidecar extracts the description from the contents of a description
// file. The version line is checked first; an empty file or a bare version
// line describes nothing.
func ParseSidecar(data []byte) (string, error) {
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return "", nil
	}
	if lines[0] != SidecarVersion {
		return "", fmt.Errorf("%w: %q", ErrSidecarVersion, lines[0])
	}
	if len(lines) < 2 {
		return "", nil
	}
	return lines[1], nil
}

// FormatSidecar renders a description file
func FormatSidecar(description string) []byte {
	var b bytes.Buffer
	b.WriteString(SidecarVersion)
	b.WriteByte('\n')
	b.WriteString(description)
	b.WriteByte('\n')
	return b.Bytes()
}

// ReadSidecar reads the description file at path. A missing file yields an
// empty description.
func ReadSidecar(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read series description: %w", err)
	}
	return ParseSidecar(data)
}

// WriteSidecar writes description to the file at path
func WriteSidecar(path, description string) error {
	if err := os.WriteFile(path, FormatSidecar(description), 0o644); err != nil {
		return fmt.Errorf("failed to write series description: %w", err)
	}
	return nil
}

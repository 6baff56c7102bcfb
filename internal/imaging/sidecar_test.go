package imaging

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestParseSidecar(t *testing.T) {
	testCases := []struct {
		name    string
		data    string
		want    string
		wantErr error
	}{
		{"valid", "KentDbver1.1.0.12\nLeft heel\n", "Left heel", nil},
		{"windows line endings", "KentDbver1.1.0.12\r\nLeft heel\r\n", "Left heel", nil},
		{"empty description", "KentDbver1.1.0.12\n\n", "", nil},
		{"version line only", "KentDbver1.1.0.12\n", "", nil},
		{"empty file", "", "", nil},
		{"other version", "KentDbver1.0.0.1\nOld\n", "", ErrSidecarVersion},
		{"version with suffix", "KentDbver1.1.0.12-beta\nNew\n", "", ErrSidecarVersion},
		{"other version line only", "KentDbver1.0.0.1\n", "", ErrSidecarVersion},
		{"single unterminated line", "Left heel", "", ErrSidecarVersion},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseSidecar([]byte(tc.data))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ParseSidecar() => %v, want %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ParseSidecar() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSidecarFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := SidecarPath(dir, "patient_0042_")
	if filepath.Base(path) != "patient_0042__seriesdesc.txt" {
		t.Errorf("SidecarPath() = %q", path)
	}

	if desc, err := ReadSidecar(path); err != nil || desc != "" {
		t.Fatalf("ReadSidecar() missing file = %q, %v", desc, err)
	}
	if err := WriteSidecar(path, "Right forearm"); err != nil {
		t.Fatalf("WriteSidecar() => %v", err)
	}
	desc, err := ReadSidecar(path)
	if err != nil || desc != "Right forearm" {
		t.Errorf("ReadSidecar() = %q, %v", desc, err)
	}
}

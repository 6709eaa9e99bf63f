package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// PNGHeader is the eight-byte PNG signature. Fake OCR servers never decode the
// image, so the signature alone is a usable fixture.
var PNGHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// WriteImage writes a tiny image fixture under the test temp dir and returns
// its path.
func WriteImage(t testing.TB, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	WriteFile(t, path, PNGHeader)
	return path
}

// WriteFile creates parent directories and writes data to path.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// PNGHeader is the 8-byte PNG signature used as fake screenshot content
var PNGHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// CreateImageFixture writes a fake screenshot and returns its path
func CreateImageFixture(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}
	data := append(append([]byte{}, PNGHeader...), []byte(name)...)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write image fixture %s: %v", path, err)
	}
	return path
}

// CreateConfigFixture writes a YAML config file and returns its path
func CreateConfigFixture(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config fixture: %v", err)
	}
	return path
}

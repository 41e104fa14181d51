package harness

import (
	"os"
	"path/filepath"
	"testing"
)

// writeFile writes a file under dir or fails the test.
func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) failed: %v", name, err)
	}
}

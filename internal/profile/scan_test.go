package profile

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.toml"), sampleProfile)
	writeFile(t, filepath.Join(dir, "nested", "a.TOML"), sampleProfile)
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignore me")
	writeFile(t, filepath.Join(dir, ".git", "config.toml"), "hidden")

	paths, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	want := []string{filepath.Join(dir, "b.toml"), filepath.Join(dir, "nested", "a.TOML")}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestScanDir_Missing(t *testing.T) {
	paths, err := ScanDir(filepath.Join(t.TempDir(), "absent"))
	if err != nil || paths != nil {
		t.Fatalf("ScanDir(missing) = %v, %v; want nil, nil", paths, err)
	}
}

func TestLoadDir_ReportsBadFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "good.toml"), sampleProfile)
	writeFile(t, filepath.Join(dir, "bad.toml"), "name = ")

	results, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len = %d, want 2", len(results))
	}
	// Sorted: bad.toml first.
	if results[0].Err == nil {
		t.Error("bad.toml loaded without error")
	}
	if results[1].Err != nil || results[1].Profile.Name != "alex" {
		t.Errorf("good.toml = %+v", results[1])
	}
}

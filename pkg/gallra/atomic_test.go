package gallra

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileReplaces(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "doc.json")

	if err := os.WriteFile(p, []byte("old contents that are longer"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := WriteFile(p, []byte("new"), 0o644); err != nil {
		t.Fatalf("WriteFile() = %v", err)
	}

	got, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "new" {
		t.Errorf("content = %q, want %q", got, "new")
	}

	des, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(des) != 1 {
		t.Errorf("found %d entries after write, want only the target", len(des))
	}
}

func TestWriteFileMissingDirLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "missing", "doc.json")

	if err := WriteFile(p, []byte("x"), 0o644); err == nil {
		t.Fatalf("WriteFile() into a missing directory succeeded")
	}
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Errorf("target exists after failed write: %v", err)
	}
}

func TestWriteFileTargetIsDirectory(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "target")
	if err := os.Mkdir(p, 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := WriteFile(p, []byte("x"), 0o644); err == nil {
		t.Fatalf("WriteFile() over a directory succeeded")
	}

	des, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(des) != 1 {
		t.Errorf("temp file left behind: %d entries", len(des))
	}
}

func TestIsTempFor(t *testing.T) {
	target := ".photo_meta.json"
	tests := []struct {
		name string
		want bool
	}{
		{filepath.Base(tempPath(target)), true},
		{target + ".123e4567-e89b-12d3-a456-426614174000.tmp", true},
		{target, false},
		{target + ".bak", false},
		{target + ".notauuid.tmp", false},
		{"other.json.123e4567-e89b-12d3-a456-426614174000.tmp", false},
	}
	for _, tc := range tests {
		if got := isTempFor(tc.name, target); got != tc.want {
			t.Errorf("isTempFor(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

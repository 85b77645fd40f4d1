package project

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRootFindsMarker(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "src", "deep", "nested")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}

	if got := Root(sub); got != dir {
		t.Errorf("Root(%q) = %q, want %q", sub, got, dir)
	}
}

func TestRootWithoutMarkerReturnsDir(t *testing.T) {
	dir := t.TempDir()
	if got := Root(dir); got != dir {
		t.Errorf("Root(%q) = %q, want the directory itself", dir, got)
	}
}

func TestHashStableAcrossSubdirs(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "cmd", "tool")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	rootHash := Hash(dir)
	subHash := Hash(sub)
	if rootHash == "" || len(rootHash) != 12 {
		t.Errorf("Hash = %q, want 12 hex chars", rootHash)
	}
	if rootHash != subHash {
		t.Errorf("hash differs inside project: %q vs %q", rootHash, subHash)
	}

	if Hash("") != "" {
		t.Error("empty dir should yield empty hash")
	}
}

func TestSegment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/home/dev/webapp", "webapp"},
		{"/home/dev/webapp/", "webapp"},
		{"/", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Segment(tt.in); got != tt.want {
			t.Errorf("Segment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

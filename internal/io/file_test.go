package ioutils

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestMove(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in", "song.mp3")
	dst := filepath.Join(dir, "out", "Artist", "song.mp3")
	writeFile(t, src, "audio")

	if err := Move(context.Background(), src, dst, false); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if got := readFile(t, dst); got != "audio" {
		t.Errorf("destination content = %q", got)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source should be gone after Move")
	}
}

func TestMove_ExistingDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.mp3")
	dst := filepath.Join(dir, "b.mp3")
	writeFile(t, src, "new")
	writeFile(t, dst, "old")

	err := Move(context.Background(), src, dst, false)
	if !errors.Is(err, ErrExists) {
		t.Fatalf("Move() error = %v, want ErrExists", err)
	}
	if got := readFile(t, dst); got != "old" {
		t.Errorf("destination overwritten: %q", got)
	}

	if err := Move(context.Background(), src, dst, true); err != nil {
		t.Fatalf("Move(overwrite) error = %v", err)
	}
	if got := readFile(t, dst); got != "new" {
		t.Errorf("destination content = %q, want new", got)
	}
}

func TestMove_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Move(ctx, "a", "b", false); !errors.Is(err, context.Canceled) {
		t.Errorf("Move() error = %v, want context.Canceled", err)
	}
}

func TestCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.flac")
	dst := filepath.Join(dir, "x", "y", "a.flac")
	writeFile(t, src, "lossless")

	if err := Copy(context.Background(), src, dst, false); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	if readFile(t, src) != "lossless" || readFile(t, dst) != "lossless" {
		t.Error("Copy should leave source and write destination")
	}
}

func TestCopyTreeAndTreeSize(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeFile(t, filepath.Join(src, "a.mp3"), "12345")
	writeFile(t, filepath.Join(src, "disc 2", "b.mp3"), "123")
	if err := os.MkdirAll(filepath.Join(src, "empty"), 0755); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(dir, "dst")
	if err := CopyTree(context.Background(), src, dst); err != nil {
		t.Fatalf("CopyTree() error = %v", err)
	}

	size, err := TreeSize(dst)
	if err != nil {
		t.Fatalf("TreeSize() error = %v", err)
	}
	if size != 8 {
		t.Errorf("TreeSize() = %d, want 8", size)
	}
	if info, err := os.Stat(filepath.Join(dst, "empty")); err != nil || !info.IsDir() {
		t.Error("empty directory should be copied")
	}

	if err := CopyTree(context.Background(), src, dst); !errors.Is(err, ErrExists) {
		t.Errorf("second CopyTree() error = %v, want ErrExists", err)
	}
}

func TestRemoveTree(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "gone")
	writeFile(t, filepath.Join(root, "a", "b", "c.txt"), "x")

	if err := RemoveTree(root); err != nil {
		t.Fatalf("RemoveTree() error = %v", err)
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Error("tree should be removed")
	}
	if err := RemoveTree(root); err != nil {
		t.Errorf("RemoveTree() on missing path error = %v", err)
	}
}

func TestAttributes(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "song.mp3")
	hidden := filepath.Join(dir, ".hidden")
	link := filepath.Join(dir, "link.mp3")
	writeFile(t, file, "x")
	writeFile(t, hidden, "x")
	if err := os.Symlink(file, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	tests := []struct {
		path    string
		want    []string
		notWant []string
	}{
		{file, []string{"E", "F", "R", "W"}, []string{"D", "H", "L", "X"}},
		{dir, []string{"E", "D", "R"}, []string{"F", "L"}},
		{hidden, []string{"E", "F", "H"}, []string{"D"}},
		{link, []string{"E", "F", "L"}, []string{"D"}},
	}

	for _, tt := range tests {
		t.Run(filepath.Base(tt.path), func(t *testing.T) {
			got := Attributes(tt.path)
			for _, flag := range tt.want {
				if !strings.Contains(got, flag) {
					t.Errorf("Attributes(%q) = %q, missing %s", tt.path, got, flag)
				}
			}
			for _, flag := range tt.notWant {
				if strings.Contains(got, flag) {
					t.Errorf("Attributes(%q) = %q, unexpected %s", tt.path, got, flag)
				}
			}
		})
	}

	if got := Attributes(filepath.Join(dir, "missing")); got != "" {
		t.Errorf("Attributes(missing) = %q, want empty", got)
	}
}

func TestPruneEmptyDirs(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "in")
	if err := os.MkdirAll(filepath.Join(root, "Artist", "Album"), 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "Keep", "notes.txt"), "")

	removed, err := PruneEmptyDirs(root)
	if err != nil {
		t.Fatalf("PruneEmptyDirs() error = %v", err)
	}

	want := []string{filepath.Join(root, "Artist", "Album"), filepath.Join(root, "Artist")}
	if !slices.Equal(removed, want) {
		t.Errorf("removed = %v, want %v", removed, want)
	}
	if _, err := os.Stat(filepath.Join(root, "Keep", "notes.txt")); err != nil {
		t.Error("directory with an empty file should be kept")
	}
}

package journal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	ioutils "github.com/handiism/metarenamer/internal/io"
)

func openTest(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "db", "journal.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_RunsAndEntries(t *testing.T) {
	ctx := context.Background()
	j := openTest(t)

	older := Run{ID: "run-1", StartedAt: time.Now().Add(-time.Hour), Source: "/in", Library: "/lib", Mode: "move"}
	newer := Run{ID: "run-2", Source: "/in2", Library: "/lib", Mode: "copy"}
	for _, r := range []Run{older, newer} {
		if err := j.BeginRun(ctx, r); err != nil {
			t.Fatalf("BeginRun() error = %v", err)
		}
	}
	for _, src := range []string{"/in/a.mp3", "/in/b.mp3"} {
		if err := j.Record(ctx, Entry{RunID: "run-1", Source: src, Destination: "/lib/" + filepath.Base(src), Mode: "move"}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	runs, err := j.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs() error = %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-2" || runs[1].Entries != 2 {
		t.Errorf("Runs() = %+v", runs)
	}

	entries, err := j.Entries(ctx, "run-1")
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 2 || entries[0].Source != "/in/a.mp3" {
		t.Errorf("Entries() = %+v", entries)
	}

	if _, err := j.Entries(ctx, "nope"); !errors.Is(err, ErrUnknownRun) {
		t.Errorf("Entries(unknown) error = %v, want ErrUnknownRun", err)
	}
}

func TestJournal_Undo(t *testing.T) {
	ctx := context.Background()
	j := openTest(t)
	dir := t.TempDir()

	src := filepath.Join(dir, "in", "a.mp3")
	dst := filepath.Join(dir, "lib", "Artist", "a.mp3")
	copySrc := filepath.Join(dir, "in", "b.mp3")
	copyDst := filepath.Join(dir, "lib", "Artist", "b.mp3")

	if err := os.MkdirAll(filepath.Dir(src), 0755); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{src, copySrc} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := ioutils.Move(ctx, src, dst, false); err != nil {
		t.Fatal(err)
	}
	if err := ioutils.Copy(ctx, copySrc, copyDst, false); err != nil {
		t.Fatal(err)
	}

	if err := j.BeginRun(ctx, Run{ID: "r", Source: dir, Library: dir, Mode: "move"}); err != nil {
		t.Fatal(err)
	}
	if err := j.Record(ctx, Entry{RunID: "r", Source: src, Destination: dst, Mode: "move"}); err != nil {
		t.Fatal(err)
	}
	if err := j.Record(ctx, Entry{RunID: "r", Source: copySrc, Destination: copyDst, Mode: "copy"}); err != nil {
		t.Fatal(err)
	}

	n, err := j.Undo(ctx, "r")
	if err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Undo() = %d, want 2", n)
	}
	if _, err := os.Stat(src); err != nil {
		t.Error("moved file should be back at its source")
	}
	if _, err := os.Stat(copyDst); !os.IsNotExist(err) {
		t.Error("copy should be removed")
	}
	if _, err := os.Stat(copySrc); err != nil {
		t.Error("copy source should be untouched")
	}

	n, err = j.Undo(ctx, "r")
	if err != nil || n != 0 {
		t.Errorf("second Undo() = %d, %v, want 0, nil", n, err)
	}
}

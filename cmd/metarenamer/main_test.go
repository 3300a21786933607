package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/bogem/id3v2"
)

type cliTestEnv struct {
	configPath string
	source     string
	library    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	env := &cliTestEnv{
		configPath: filepath.Join(base, "config.toml"),
		source:     filepath.Join(base, "incoming"),
		library:    filepath.Join(base, "library"),
	}
	content := fmt.Sprintf("library_path = %q\njournal_path = %q\nmode = \"move\"\nmax_concurrent_items = 2\nlog_level = \"error\"\nlog_format = \"text\"\npattern = %q\n",
		env.library, filepath.Join(base, "journal.db"), "albumArtist/album/trackNumber - title.extension")
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	writeMP3(t, filepath.Join(env.source, "x", "a.mp3"), map[string]string{
		"TPE1": "Queen", "TALB": "Jazz", "TIT2": "Mustapha", "TRCK": "1/13",
	})
	writeMP3(t, filepath.Join(env.source, "x", "b.mp3"), map[string]string{
		"TPE1": "Queen", "TALB": "Jazz", "TIT2": "Fat Bottomed Girls", "TRCK": "2/13",
	})
	return env
}

func writeMP3(t *testing.T, path string, frames map[string]string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not really audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer tag.Close()
	for id, text := range frames {
		tag.AddTextFrame(id, id3v2.EncodingUTF8, text)
	}
	if err := tag.Save(); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.yaml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote default configuration")

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("config init should refuse to overwrite")
	}

	out, _, err = runCLI(t, []string{"config", "show"}, target)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "pattern = ")
}

func TestRenameDryRun(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"rename", "--dry-run", env.source}, env.configPath)
	if err != nil {
		t.Fatalf("rename --dry-run: %v", err)
	}
	requireContains(t, out, filepath.Join("Queen", "Jazz", "01 - Mustapha.mp3"))
	requireContains(t, out, "Dry run: 2 to relocate")

	if _, err := os.Stat(filepath.Join(env.source, "x", "a.mp3")); err != nil {
		t.Fatalf("dry run moved a file: %v", err)
	}
}

func TestRenameRunsAndUndo(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"rename", env.source}, env.configPath)
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	requireContains(t, out, "2 relocated")

	moved := filepath.Join(env.library, "Queen", "Jazz", "02 - Fat Bottomed Girls.mp3")
	if _, err := os.Stat(moved); err != nil {
		t.Fatalf("expected %s: %v", moved, err)
	}

	runID := regexp.MustCompile(`Run ([0-9a-f-]{36})`).FindStringSubmatch(out)
	if runID == nil {
		t.Fatalf("no run id in %q", out)
	}

	out, _, err = runCLI(t, []string{"runs"}, env.configPath)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	requireContains(t, out, runID[1])

	out, _, err = runCLI(t, []string{"undo", runID[1]}, env.configPath)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	requireContains(t, out, "Reverted 2 file(s)")

	if _, err := os.Stat(filepath.Join(env.source, "x", "b.mp3")); err != nil {
		t.Fatalf("undo did not restore the source: %v", err)
	}
}

func TestList(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"list", filepath.Join(env.source, "x", "a.mp3")}, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "Mustapha")
	requireContains(t, out, "-> Queen/Jazz/01 - Mustapha.mp3")
}

func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"mode": "shuffle"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, []string{"runs"}, path); err == nil {
		t.Fatal("expected an invalid mode error")
	}
}

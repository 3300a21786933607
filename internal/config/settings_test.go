package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/handiism/metarenamer/internal/naming"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.Pattern != naming.DefaultPattern {
		t.Errorf("Pattern = %q, want default pattern", s.Pattern)
	}
	if s.Mode != ModeMove {
		t.Errorf("Mode = %q, want %q", s.Mode, ModeMove)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.MaxConcurrentItems != DefaultSettings().MaxConcurrentItems {
		t.Errorf("MaxConcurrentItems = %d, want default", s.MaxConcurrentItems)
	}
}

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"config.json", `{"pattern": "artist/title.extension", "mode": "copy", "max_concurrent_items": 3}`},
		{"config.toml", "pattern = \"artist/title.extension\"\nmode = \"copy\"\nmax_concurrent_items = 3\n"},
		{"config.yaml", "pattern: artist/title.extension\nmode: copy\nmax_concurrent_items: 3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.name)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			s, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if s.Pattern != "artist/title.extension" || s.Mode != ModeCopy || s.MaxConcurrentItems != 3 {
				t.Errorf("loaded %+v", s)
			}
			if s.PlaylistFormat != "m3u" {
				t.Errorf("PlaylistFormat = %q, want default m3u", s.PlaylistFormat)
			}
		})
	}
}

func TestLoad_UnknownExtension(t *testing.T) {
	if _, err := Load("config.ini"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Load() error = %v, want ErrUnknownFormat", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, name := range []string{"c.json", "c.toml", "c.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			s := DefaultSettings()
			s.Pattern = "albumArtist/album/trackNumber title.extension"
			s.CreatePlaylist = true

			if err := s.Save(path); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got.Pattern != s.Pattern || !got.CreatePlaylist {
				t.Errorf("round trip lost values: %+v", got)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "METARENAMER_MODE=dry-run\nMETARENAMER_PATTERN=from-file\n"
	if err := os.WriteFile(envFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("METARENAMER_PATTERN", "artist/title.extension")
	t.Setenv("METARENAMER_WRITE_TAGS", "true")
	t.Setenv("METARENAMER_MAX_CONCURRENT_ITEMS", "4")
	t.Setenv("METARENAMER_MODE", "")
	os.Unsetenv("METARENAMER_MODE")

	s := DefaultSettings()
	if err := s.ApplyEnv(envFile, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if s.Mode != ModeDryRun {
		t.Errorf("Mode = %q, want value from .env", s.Mode)
	}
	if s.Pattern != "artist/title.extension" {
		t.Errorf("Pattern = %q, environment should win over .env", s.Pattern)
	}
	if !s.WriteTags || s.MaxConcurrentItems != 4 {
		t.Errorf("WriteTags = %v, MaxConcurrentItems = %d", s.WriteTags, s.MaxConcurrentItems)
	}
}

func TestApplyEnv_BadBool(t *testing.T) {
	t.Setenv("METARENAMER_OVERWRITE", "maybe")
	if err := DefaultSettings().ApplyEnv(); err == nil {
		t.Error("ApplyEnv() should reject a non-boolean value")
	}
}

func TestValidate(t *testing.T) {
	s := DefaultSettings()
	s.Pattern = "///"
	s.Mode = "shuffle"
	s.MaxConcurrentItems = 0
	s.LogLevel = "loud"
	s.LogFormat = "xml"

	err := s.Validate()
	for _, want := range []error{ErrEmptyPattern, ErrInvalidMode, ErrInvalidConcurrency, ErrInvalidLogLevel, ErrInvalidLogFormat} {
		if !errors.Is(err, want) {
			t.Errorf("Validate() error = %v, want %v", err, want)
		}
	}
}

func TestConverters(t *testing.T) {
	s := DefaultSettings()
	s.AccumulateYears = true
	s.PlaylistFormat = "pls"

	if !s.ToNormalizerOptions().AccumulateYears {
		t.Error("ToNormalizerOptions should carry AccumulateYears")
	}
	if s.ToPattern().Depth() != 3 {
		t.Errorf("ToPattern().Depth() = %d, want 3", s.ToPattern().Depth())
	}
	if got := s.ToPlaylistCreator().Format().Extension(); got != ".pls" {
		t.Errorf("playlist extension = %q, want .pls", got)
	}
}

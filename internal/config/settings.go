package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/handiism/metarenamer/internal/audio"
	"github.com/handiism/metarenamer/internal/metadata"
	"github.com/handiism/metarenamer/internal/naming"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Relocation modes.
const (
	ModeMove   = "move"
	ModeCopy   = "copy"
	ModeDryRun = "dry-run"
)

// EnvPrefix prefixes the environment variables that override settings.
const EnvPrefix = "METARENAMER_"

// Validation errors.
var (
	ErrEmptyPattern       = errors.New("pattern must not be empty")
	ErrInvalidMode        = errors.New("mode must be one of: move, copy, dry-run")
	ErrInvalidConcurrency = errors.New("max_concurrent_items must be at least 1")
	ErrInvalidLogLevel    = errors.New("log_level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat   = errors.New("log_format must be one of: text, json")
	ErrUnknownFormat      = errors.New("config file extension must be .json, .toml, .yaml or .yml")
)

// Settings holds all configuration options.
type Settings struct {
	// Library settings
	LibraryPath        string `json:"library_path" toml:"library_path" yaml:"library_path"`
	Pattern            string `json:"pattern" toml:"pattern" yaml:"pattern"`
	Mode               string `json:"mode" toml:"mode" yaml:"mode"` // move, copy, dry-run
	Overwrite          bool   `json:"overwrite" toml:"overwrite" yaml:"overwrite"`
	MaxConcurrentItems int    `json:"max_concurrent_items" toml:"max_concurrent_items" yaml:"max_concurrent_items"`

	// Metadata settings
	AccumulateYears bool `json:"accumulate_years" toml:"accumulate_years" yaml:"accumulate_years"`
	WriteTags       bool `json:"write_tags" toml:"write_tags" yaml:"write_tags"`

	// Playlist settings
	CreatePlaylist bool   `json:"create_playlist" toml:"create_playlist" yaml:"create_playlist"`
	PlaylistFormat string `json:"playlist_format" toml:"playlist_format" yaml:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `json:"m3u_extended" toml:"m3u_extended" yaml:"m3u_extended"`

	// Cover art settings
	CarryCoverArt        bool `json:"carry_cover_art" toml:"carry_cover_art" yaml:"carry_cover_art"`
	CoverArtResize       bool `json:"cover_art_resize" toml:"cover_art_resize" yaml:"cover_art_resize"`
	CoverArtMaxSize      int  `json:"cover_art_max_size" toml:"cover_art_max_size" yaml:"cover_art_max_size"`
	ConvertCoverArtToJPG bool `json:"convert_cover_art_to_jpg" toml:"convert_cover_art_to_jpg" yaml:"convert_cover_art_to_jpg"`

	// Safety settings
	BackupPath       string `json:"backup_path" toml:"backup_path" yaml:"backup_path"`
	PruneEmptySource bool   `json:"prune_empty_source" toml:"prune_empty_source" yaml:"prune_empty_source"`
	JournalPath      string `json:"journal_path" toml:"journal_path" yaml:"journal_path"`
	LockLibrary      bool   `json:"lock_library" toml:"lock_library" yaml:"lock_library"`

	// Logging
	LogLevel  string `json:"log_level" toml:"log_level" yaml:"log_level"`
	LogFormat string `json:"log_format" toml:"log_format" yaml:"log_format"` // text, json
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		LibraryPath:        filepath.Join(homeDir, "Music", "Library"),
		Pattern:            naming.DefaultPattern,
		Mode:               ModeMove,
		Overwrite:          false,
		MaxConcurrentItems: 10,

		AccumulateYears: false,
		WriteTags:       false,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,

		CarryCoverArt:        true,
		CoverArtResize:       false,
		CoverArtMaxSize:      1000,
		ConvertCoverArtToJPG: false,

		PruneEmptySource: true,
		JournalPath:      filepath.Join(DefaultDir(), "journal.db"),
		LockLibrary:      true,

		LogLevel:  "info",
		LogFormat: "text",
	}
}

// DefaultDir returns the directory holding metarenamer's own files.
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "metarenamer")
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".metarenamer")
}

// DefaultPath returns the default location of the settings file.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.toml")
}

type codec struct {
	unmarshal func([]byte, any) error
	marshal   func(any) ([]byte, error)
}

func codecFor(path string) (codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return codec{
			unmarshal: json.Unmarshal,
			marshal:   func(v any) ([]byte, error) { return json.MarshalIndent(v, "", "  ") },
		}, nil
	case ".toml":
		return codec{unmarshal: toml.Unmarshal, marshal: toml.Marshal}, nil
	case ".yaml", ".yml":
		return codec{unmarshal: yaml.Unmarshal, marshal: yaml.Marshal}, nil
	default:
		return codec{}, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
}

// Load reads settings from a JSON, TOML or YAML file. Fields missing from
// the file keep their defaults; a missing file yields DefaultSettings.
func Load(path string) (*Settings, error) {
	c, err := codecFor(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := c.unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a file, in the format given by its extension.
func (s *Settings) Save(path string) error {
	c, err := codecFor(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := c.marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides settings from METARENAMER_* environment variables.
// envFiles are loaded first with godotenv; variables already set in the
// environment win over the files, and missing files are skipped.
func (s *Settings) ApplyEnv(envFiles ...string) error {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}

	strs := map[string]*string{
		"LIBRARY_PATH":    &s.LibraryPath,
		"PATTERN":         &s.Pattern,
		"MODE":            &s.Mode,
		"PLAYLIST_FORMAT": &s.PlaylistFormat,
		"BACKUP_PATH":     &s.BackupPath,
		"JOURNAL_PATH":    &s.JournalPath,
		"LOG_LEVEL":       &s.LogLevel,
		"LOG_FORMAT":      &s.LogFormat,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"OVERWRITE":        &s.Overwrite,
		"WRITE_TAGS":       &s.WriteTags,
		"CREATE_PLAYLIST":  &s.CreatePlaylist,
		"CARRY_COVER_ART":  &s.CarryCoverArt,
		"ACCUMULATE_YEARS": &s.AccumulateYears,
		"LOCK_LIBRARY":     &s.LockLibrary,
	}
	for name, dst := range bools {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = b
	}

	if v, ok := os.LookupEnv(EnvPrefix + "MAX_CONCURRENT_ITEMS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMAX_CONCURRENT_ITEMS: %w", EnvPrefix, err)
		}
		s.MaxConcurrentItems = n
	}
	return nil
}

// Validate checks the settings for values the rename run cannot use.
func (s *Settings) Validate() error {
	var errs []error
	if strings.TrimSpace(s.Pattern) == "" || naming.ParsePattern(s.Pattern).Depth() == 0 {
		errs = append(errs, ErrEmptyPattern)
	}
	switch s.Mode {
	case ModeMove, ModeCopy, ModeDryRun:
	default:
		errs = append(errs, ErrInvalidMode)
	}
	if s.MaxConcurrentItems < 1 {
		errs = append(errs, ErrInvalidConcurrency)
	}
	switch strings.ToLower(s.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ErrInvalidLogLevel)
	}
	switch strings.ToLower(s.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, ErrInvalidLogFormat)
	}
	return errors.Join(errs...)
}

// DryRun reports whether the settings describe a dry run.
func (s *Settings) DryRun() bool {
	return s.Mode == ModeDryRun
}

// ToNormalizerOptions converts settings to metadata.Options.
func (s *Settings) ToNormalizerOptions() metadata.Options {
	return metadata.Options{AccumulateYears: s.AccumulateYears}
}

// ToPattern parses the configured naming pattern.
func (s *Settings) ToPattern() naming.Pattern {
	return naming.ParsePattern(s.Pattern)
}

// ToPlaylistCreator builds the playlist creator for the configured format.
func (s *Settings) ToPlaylistCreator() *audio.PlaylistCreator {
	return audio.NewPlaylistCreator(audio.ParsePlaylistFormat(s.PlaylistFormat), s.M3UExtended)
}

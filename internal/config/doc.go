// Package config provides configuration management for metarenamer.
//
// This package handles:
//   - Loading and saving settings from JSON, TOML or YAML files
//   - Default configuration values
//   - Environment overrides (METARENAMER_*), optionally from a .env file
//   - Validation
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Files into ~/Music/Library using the default pattern
//	// Moves files, ten at a time
//
// # Loading from File
//
// The format follows the file extension (.json, .toml, .yaml, .yml):
//
//	settings, err := config.Load("/path/to/config.toml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Saving Settings
//
//	settings.Pattern = "artist/album/trackNumber - title.extension"
//	err := settings.Save("/path/to/config.json")
//
// # Configuration Options
//
// Settings includes options for:
//   - Library location and naming pattern
//   - Move, copy or dry-run mode
//   - Concurrency
//   - Tag write-back, playlists and cover art
//   - Backups, source pruning, journal and library locking
//   - Logging
package config

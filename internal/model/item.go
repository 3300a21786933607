package model

import (
	"path/filepath"
	"strings"
)

// ItemStatus describes where an Item stands in a rename run.
type ItemStatus int

const (
	// StatusPending means the item has been planned but not relocated.
	StatusPending ItemStatus = iota

	// StatusDone means the item was moved or copied to its destination.
	StatusDone

	// StatusSkipped means the item already sits at its destination.
	StatusSkipped

	// StatusFailed means relocation failed; see Item.Err.
	StatusFailed
)

// String returns a lowercase name for the status.
func (s ItemStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusDone:
		return "done"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Item represents one media file moving through a rename run.
//
// Item carries:
//   - the source path and its extension
//   - the raw record read from the file
//   - the normalized record and its diagnostics
//   - the rendered relative path and the resolved destination
//
// Example:
//
//	item := NewItem("/in/01 song.mp3", raw)
//	// item.Extension = "mp3"
type Item struct {
	// SourcePath is the absolute path of the media file.
	SourcePath string

	// Extension is the source file's extension without the leading dot.
	Extension string

	// Size is the file size in bytes.
	Size int64

	// Raw is the metadata as read from the file.
	Raw Record

	// Record is the normalized metadata. Raw is never modified.
	Record Record

	// Diagnostics lists advisories raised while normalizing Raw.
	Diagnostics []Diagnostic

	// RelPath is the rendered, escaped relative path using '/' separators.
	RelPath string

	// Destination is the absolute target path after collision resolution.
	Destination string

	// Status is the relocation outcome.
	Status ItemStatus

	// Err holds the relocation error when Status is StatusFailed.
	Err error
}

// NewItem creates an Item for the file at path with its raw metadata.
func NewItem(path string, raw Record) *Item {
	return &Item{
		SourcePath: path,
		Extension:  Extension(path),
		Raw:        raw,
	}
}

// Extension returns the extension of path without the leading dot.
func Extension(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

// Moved reports whether the item ends up somewhere other than its source.
func (i *Item) Moved() bool {
	return i.Destination != "" && filepath.Clean(i.Destination) != filepath.Clean(i.SourcePath)
}

package model

import (
	"maps"
	"slices"
)

// Well-known metadata keys.
const (
	KeyAlbum       = "album"
	KeyArtist      = "artist"
	KeyAlbumArtist = "albumArtist"
	KeyTitle       = "title"
	KeyTrackNumber = "trackNumber"
	KeyDiscNumber  = "discNumber"
	KeyReleaseDate = "releaseDate"
	KeyReleaseYear = "releaseYear"
	KeyGenre       = "genre"
	KeyComposer    = "composer"
)

// KnownKeys lists the well-known metadata keys in a stable order.
var KnownKeys = []string{
	KeyAlbumArtist,
	KeyArtist,
	KeyAlbum,
	KeyTitle,
	KeyTrackNumber,
	KeyDiscNumber,
	KeyReleaseDate,
	KeyReleaseYear,
	KeyGenre,
	KeyComposer,
}

// IsKnownKey reports whether key is one of KnownKeys.
func IsKnownKey(key string) bool {
	return slices.Contains(KnownKeys, key)
}

// Record maps a metadata field name to its values.
//
// Most keys hold exactly one value. A key may accumulate more values over
// its lifetime (releaseYear when years are appended); consumers that need a
// single value use Get, which always returns the first one.
//
// A nil Record is valid for reading.
type Record map[string][]string

// Get returns the first value for key, or "" if the key is absent.
func (r Record) Get(key string) string {
	v, _ := r.Lookup(key)
	return v
}

// Lookup returns the first value for key and whether the key is present.
func (r Record) Lookup(key string) (string, bool) {
	vs, ok := r[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// Has reports whether key is present, even with an empty value.
func (r Record) Has(key string) bool {
	_, ok := r.Lookup(key)
	return ok
}

// Values returns all values stored for key in the order they were added.
func (r Record) Values(key string) []string {
	return r[key]
}

// Set replaces all values of key with value.
func (r Record) Set(key, value string) {
	r[key] = []string{value}
}

// Add appends value to the values of key.
func (r Record) Add(key, value string) {
	r[key] = append(r[key], value)
}

// Keys returns the present keys in sorted order.
func (r Record) Keys() []string {
	return slices.Sorted(maps.Keys(r))
}

// Clone returns a deep copy of the record. Cloning a nil Record returns an
// empty, writable Record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, vs := range r {
		out[k] = slices.Clone(vs)
	}
	return out
}

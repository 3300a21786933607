package metadata

import (
	"strings"
	"unicode/utf8"

	"github.com/handiism/metarenamer/internal/model"
)

// variousArtists maps known "various artists" spellings to their canonical
// album artist. Matching is case-sensitive.
var variousArtists = map[string]string{
	"Various Artists": "Various",
	"Various artists": "Various",
}

// Options tunes Normalize.
type Options struct {
	// AccumulateYears appends the derived release year to any existing
	// releaseYear values instead of replacing them. Normalizing the same
	// record repeatedly then accumulates duplicate years.
	AccumulateYears bool
}

// Normalizer applies the normalization steps with fixed Options.
type Normalizer struct {
	opts Options
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

// Normalize normalizes rec with default Options.
func Normalize(rec model.Record) (model.Record, []model.Diagnostic) {
	return NewNormalizer(Options{}).Normalize(rec)
}

// Normalize returns a normalized copy of rec and the diagnostics raised.
//
// With default Options the result is idempotent: normalizing an already
// normalized record yields an equal record.
func (n *Normalizer) Normalize(rec model.Record) (model.Record, []model.Diagnostic) {
	out := rec.Clone()

	n.addYear(out)
	cleanTrack(out)
	fillAlbumArtist(out)
	diags := canonicalAlbumArtist(out)

	return out, diags
}

// addYear derives releaseYear from releaseDate.
func (n *Normalizer) addYear(rec model.Record) {
	date, ok := rec.Lookup(model.KeyReleaseDate)
	if !ok {
		return
	}
	year := ReleaseYear(date)
	if n.opts.AccumulateYears {
		rec.Add(model.KeyReleaseYear, year)
		return
	}
	rec.Set(model.KeyReleaseYear, year)
}

// ReleaseYear returns the leading part of a release date: the text before
// the first '-', else before the first '/', else the whole date.
//
//	ReleaseYear("2001-05-01") // "2001"
//	ReleaseYear("05/2001")    // "05"
//	ReleaseYear("1999")       // "1999"
func ReleaseYear(date string) string {
	if i := strings.IndexByte(date, '-'); i >= 0 {
		return date[:i]
	}
	if i := strings.IndexByte(date, '/'); i >= 0 {
		return date[:i]
	}
	return date
}

// cleanTrack rewrites trackNumber in place, if present and non-empty.
func cleanTrack(rec model.Record) {
	track, ok := rec.Lookup(model.KeyTrackNumber)
	if !ok || track == "" {
		return
	}
	rec.Set(model.KeyTrackNumber, TrackNumber(track))
}

// TrackNumber drops a "/total" suffix and pads single characters to two.
//
//	TrackNumber("1/6")  // "01"
//	TrackNumber("12/6") // "12"
//	TrackNumber("A")    // "0A"
func TrackNumber(track string) string {
	if i := strings.IndexByte(track, '/'); i >= 0 {
		track = track[:i]
	}
	if utf8.RuneCountInString(track) == 1 {
		track = "0" + track
	}
	return track
}

// fillAlbumArtist copies artist into an absent or empty albumArtist.
func fillAlbumArtist(rec model.Record) {
	if rec.Get(model.KeyAlbumArtist) != "" {
		return
	}
	artist, ok := rec.Lookup(model.KeyArtist)
	if !ok {
		return
	}
	rec.Set(model.KeyAlbumArtist, artist)
}

func canonicalAlbumArtist(rec model.Record) []model.Diagnostic {
	albumArtist, ok := rec.Lookup(model.KeyAlbumArtist)
	if !ok {
		return nil
	}
	if canonical, ok := variousArtists[albumArtist]; ok {
		rec.Set(model.KeyAlbumArtist, canonical)
		return nil
	}
	if strings.Contains(albumArtist, "rtist") {
		return []model.Diagnostic{{
			Kind:    model.KindSuspiciousAlbumArtist,
			Key:     model.KeyAlbumArtist,
			Value:   albumArtist,
			Message: "album artist looks like a placeholder; left unchanged",
		}}
	}
	return nil
}

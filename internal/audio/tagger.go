package audio

import (
	"fmt"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/handiism/metarenamer/internal/model"
)

// TagEditAction defines how to handle individual ID3 tags.
//
// Each tag field can be configured independently to determine whether
// it should be modified, cleared, or left unchanged.
type TagEditAction int

const (
	// TagDoNotModify leaves the existing tag value unchanged.
	TagDoNotModify TagEditAction = iota

	// TagModify updates the tag with the normalized value.
	TagModify

	// TagEmpty removes the tag.
	TagEmpty
)

// TagConfig holds tagging configuration for each ID3 field written back
// after normalization.
//
// Example:
//
//	cfg := &TagConfig{
//	    AlbumArtist: TagModify,      // store the album artist fallback
//	    TrackNumber: TagModify,      // store "01" instead of "1/9"
//	    Year:        TagDoNotModify, // keep the full release date
//	}
type TagConfig struct {
	// AlbumArtist controls the TPE2 (Album artist) frame.
	AlbumArtist TagEditAction

	// TrackNumber controls the TRCK (Track number) frame.
	TrackNumber TagEditAction

	// Year controls the TYER (Year) frame.
	Year TagEditAction
}

// DefaultTagConfig returns the default tag configuration.
//
// The album artist and track number are written back; the year frame is
// left alone so that the full release date survives.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		AlbumArtist: TagModify,
		TrackNumber: TagModify,
		Year:        TagDoNotModify,
	}
}

// Tagger writes normalized metadata back into MP3 files.
//
// Example:
//
//	tagger := NewTagger(DefaultTagConfig())
//	rec, _ := metadata.Normalize(raw)
//	if err := tagger.SaveTags(path, rec); err != nil {
//	    log.Printf("Failed to tag %s: %v", path, err)
//	}
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// CanTag reports whether SaveTags can write to path.
func (t *Tagger) CanTag(path string) bool {
	return strings.EqualFold(model.Extension(path), "mp3")
}

// SaveTags writes the configured fields of rec to the MP3 file at path.
// Keys absent from rec leave their frames untouched.
func (t *Tagger) SaveTags(path string, rec model.Record) error {
	if !t.CanTag(path) {
		return fmt.Errorf("tag %s: %w", path, ErrUnsupported)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	applyText(tag, "TPE2", t.config.AlbumArtist, rec, model.KeyAlbumArtist)
	applyText(tag, "TRCK", t.config.TrackNumber, rec, model.KeyTrackNumber)
	applyText(tag, "TYER", t.config.Year, rec, model.KeyReleaseYear)

	return tag.Save()
}

// applyText updates one text frame based on action.
func applyText(tag *id3v2.Tag, frame string, action TagEditAction, rec model.Record, key string) {
	switch action {
	case TagEmpty:
		tag.DeleteFrames(frame)
	case TagModify:
		if v, ok := rec.Lookup(key); ok {
			tag.DeleteFrames(frame)
			tag.AddTextFrame(frame, id3v2.EncodingUTF8, v)
		}
	}
}

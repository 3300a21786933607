package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/dhowden/tag"
	"github.com/handiism/metarenamer/internal/model"
)

var (
	// ErrUnsupported is returned for files whose extension is not a
	// supported media format.
	ErrUnsupported = errors.New("unsupported media format")

	// ErrNoTags is returned for media files carrying no usable tags.
	ErrNoTags = errors.New("no tags found")
)

// SupportedExtensions lists the media file extensions Reader understands,
// lowercase and without the dot.
var SupportedExtensions = []string{"mp3", "flac", "m4a", "m4b", "m4p", "ogg", "dsf"}

// IsSupported reports whether path has a supported media extension.
func IsSupported(path string) bool {
	return slices.Contains(SupportedExtensions, strings.ToLower(model.Extension(path)))
}

// id3Fields maps ID3v2 text frames to record keys. Year frames are handled
// separately.
var id3Fields = []struct {
	frame string
	key   string
}{
	{"TPE1", model.KeyArtist},
	{"TPE2", model.KeyAlbumArtist},
	{"TALB", model.KeyAlbum},
	{"TIT2", model.KeyTitle},
	{"TRCK", model.KeyTrackNumber},
	{"TPOS", model.KeyDiscNumber},
	{"TCON", model.KeyGenre},
	{"TCOM", model.KeyComposer},
}

// rawDateKeys are the raw tag keys holding a full release date, in order
// of preference: Vorbis comments, MP4 atoms, ID3v2.4, ID3v2.3.
var rawDateKeys = []string{"date", "DATE", "\xa9day", "TDRC", "TYER"}

// Reader extracts metadata records from media files.
//
// Reader keeps no state; one Reader may be shared by concurrent callers.
type Reader struct{}

// NewReader creates a new Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Read extracts the metadata of the media file at path.
//
// Only tags present in the file become keys of the record; an empty frame
// is kept as an empty value.
//
// Returns ErrUnsupported for unknown extensions and ErrNoTags when the file
// carries none of the fields Reader maps.
func (r *Reader) Read(path string) (model.Record, error) {
	if !IsSupported(path) {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
	}

	var (
		rec model.Record
		err error
	)
	if strings.EqualFold(model.Extension(path), "mp3") {
		rec, err = readID3(path)
	} else {
		rec, err = readGeneric(path)
	}
	if err != nil {
		return nil, err
	}
	if len(rec) == 0 {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrNoTags)
	}
	return rec, nil
}

func readID3(path string) (model.Record, error) {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("read id3 tags: %w", err)
	}
	defer t.Close()

	rec := model.Record{}
	for _, f := range id3Fields {
		if len(t.GetFrames(f.frame)) == 0 {
			continue
		}
		rec.Set(f.key, strings.TrimSpace(t.GetTextFrame(f.frame).Text))
	}

	for _, frame := range []string{"TDRC", "TYER"} {
		if len(t.GetFrames(frame)) > 0 {
			rec.Set(model.KeyReleaseDate, strings.TrimSpace(t.GetTextFrame(frame).Text))
			break
		}
	}
	return rec, nil
}

func readGeneric(path string) (model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if errors.Is(err, tag.ErrNoTagsFound) {
		return model.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tags: %w", err)
	}

	rec := model.Record{}
	setIf(rec, model.KeyArtist, m.Artist())
	setIf(rec, model.KeyAlbumArtist, m.AlbumArtist())
	setIf(rec, model.KeyAlbum, m.Album())
	setIf(rec, model.KeyTitle, m.Title())
	setIf(rec, model.KeyGenre, m.Genre())
	setIf(rec, model.KeyComposer, m.Composer())

	if n, total := m.Track(); n > 0 {
		rec.Set(model.KeyTrackNumber, fraction(n, total))
	}
	if n, total := m.Disc(); n > 0 {
		rec.Set(model.KeyDiscNumber, fraction(n, total))
	}

	if date := rawDate(m.Raw()); date != "" {
		rec.Set(model.KeyReleaseDate, date)
	} else if year := m.Year(); year > 0 {
		rec.Set(model.KeyReleaseDate, strconv.Itoa(year))
	}
	return rec, nil
}

func setIf(rec model.Record, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		rec.Set(key, value)
	}
}

// fraction formats a position as "n/total", or "n" when total is unknown.
func fraction(n, total int) string {
	if total > 0 {
		return fmt.Sprintf("%d/%d", n, total)
	}
	return strconv.Itoa(n)
}

func rawDate(raw map[string]interface{}) string {
	for _, key := range rawDateKeys {
		if s, ok := raw[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// Dump returns every raw tag of the file at path, values formatted as
// text. It is meant for inspecting files whose names come out wrong.
func (r *Reader) Dump(path string) (model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	rec := model.Record{}
	for k, v := range m.Raw() {
		rec.Set(k, dumpValue(v))
	}
	return rec, nil
}

func dumpValue(v interface{}) string {
	switch v := v.(type) {
	case []byte:
		return fmt.Sprintf("<%d bytes>", len(v))
	case *tag.Picture:
		return fmt.Sprintf("<%s picture, %d bytes>", v.MIMEType, len(v.Data))
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

package audio

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/handiism/metarenamer/internal/model"
)

// PlaylistFormat represents supported playlist file formats.
//
// Each format has different features and compatibility:
//   - M3U: Simple text format, widely supported
//   - PLS: INI-style format, used by Winamp
//   - WPL: XML format, Windows Media Player
//   - ZPL: XML format, Zune/Groove Music
type PlaylistFormat int

const (
	// FormatM3U creates .m3u files (most compatible).
	// Can be extended with EXTINF lines for title info.
	FormatM3U PlaylistFormat = iota

	// FormatPLS creates .pls files (Winamp/SHOUTcast format).
	FormatPLS

	// FormatWPL creates .wpl files (Windows Media Player).
	FormatWPL

	// FormatZPL creates .zpl files (Zune/Groove Music).
	FormatZPL
)

// ParsePlaylistFormat maps "m3u", "pls", "wpl" or "zpl" to a format.
// Unknown names yield FormatM3U.
func ParsePlaylistFormat(name string) PlaylistFormat {
	switch strings.ToLower(name) {
	case "pls":
		return FormatPLS
	case "wpl":
		return FormatWPL
	case "zpl":
		return FormatZPL
	default:
		return FormatM3U
	}
}

// Extension returns the file extension for the playlist format, including the dot.
func (pf PlaylistFormat) Extension() string {
	switch pf {
	case FormatPLS:
		return ".pls"
	case FormatWPL:
		return ".wpl"
	case FormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

// PlaylistCreator generates playlist files for the tracks relocated into
// one folder.
//
// Track paths in the playlist are relative (just the file name), so the
// playlist is meant to be written next to the tracks.
//
// Example:
//
//	creator := NewPlaylistCreator(FormatM3U, true)
//	content := creator.CreatePlaylist("A Night at the Opera", items)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:-1,Queen - Death on Two Legs
//	// Queen - 1975 - A Night at the Opera - 01 - Death on Two Legs.mp3
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool // For M3U: include EXTINF lines with artist/title
}

// NewPlaylistCreator creates a new PlaylistCreator.
//
// extended only affects M3U, adding #EXTINF lines.
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// Format returns the playlist format the creator writes.
func (p *PlaylistCreator) Format() PlaylistFormat {
	return p.format
}

// CreatePlaylist generates playlist content titled title for items.
// Items are listed by disc number, then track number, then file name.
func (p *PlaylistCreator) CreatePlaylist(title string, items []*model.Item) string {
	items = sortedTracks(items)

	switch p.format {
	case FormatPLS:
		return p.createPLS(items)
	case FormatWPL:
		return p.createWPL(title, items)
	case FormatZPL:
		return p.createZPL(title, items)
	default:
		return p.createM3U(items)
	}
}

func sortedTracks(items []*model.Item) []*model.Item {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b *model.Item) int {
		return cmp.Or(
			comparePosition(a.Record.Get(model.KeyDiscNumber), b.Record.Get(model.KeyDiscNumber)),
			comparePosition(a.Record.Get(model.KeyTrackNumber), b.Record.Get(model.KeyTrackNumber)),
			cmp.Compare(fileName(a), fileName(b)),
		)
	})
	return out
}

// comparePosition orders "n" or "n/total" values numerically. Values that
// do not parse sort after those that do, and among themselves as text.
func comparePosition(a, b string) int {
	na, okA := position(a)
	nb, okB := position(b)
	switch {
	case okA && okB:
		return cmp.Compare(na, nb)
	case okA:
		return -1
	case okB:
		return 1
	default:
		return cmp.Compare(a, b)
	}
}

func position(s string) (int, bool) {
	n, _, _ := strings.Cut(s, "/")
	v, err := strconv.Atoi(strings.TrimSpace(n))
	return v, err == nil
}

// fileName is the name the item ends up with.
func fileName(item *model.Item) string {
	if item.Destination != "" {
		return filepath.Base(item.Destination)
	}
	return filepath.Base(item.SourcePath)
}

// createM3U generates an M3U playlist.
//
// Extended M3U format (when extended=true):
//
//	#EXTM3U
//	#EXTINF:-1,Artist - Title
//	filename1.mp3
func (p *PlaylistCreator) createM3U(items []*model.Item) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, item := range items {
		if p.extended {
			sb.WriteString(fmt.Sprintf("#EXTINF:-1,%s - %s\n", item.Record.Get(model.KeyArtist), item.Record.Get(model.KeyTitle)))
		}
		sb.WriteString(fileName(item) + "\n")
	}

	return sb.String()
}

// createPLS generates a PLS playlist.
//
// PLS format is an INI-style text file:
//
//	[playlist]
//	File1=filename1.mp3
//	Title1=Song Title
//	Length1=-1
//	NumberOfEntries=1
//	Version=2
func (p *PlaylistCreator) createPLS(items []*model.Item) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	for i, item := range items {
		idx := i + 1
		sb.WriteString(fmt.Sprintf("File%d=%s\n", idx, fileName(item)))
		sb.WriteString(fmt.Sprintf("Title%d=%s\n", idx, item.Record.Get(model.KeyTitle)))
		sb.WriteString(fmt.Sprintf("Length%d=-1\n", idx))
	}

	sb.WriteString(fmt.Sprintf("NumberOfEntries=%d\n", len(items)))
	sb.WriteString("Version=2\n")

	return sb.String()
}

// createWPL generates a Windows Media Player playlist.
func (p *PlaylistCreator) createWPL(title string, items []*model.Item) string {
	var sb strings.Builder

	sb.WriteString("<?wpl version=\"1.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(title)))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, item := range items {
		sb.WriteString(fmt.Sprintf("      <media src=\"%s\"/>\n", escapeXML(fileName(item))))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// createZPL generates a Zune/Groove Music playlist.
//
// ZPL is similar to WPL but includes album and artist attributes per track.
func (p *PlaylistCreator) createZPL(title string, items []*model.Item) string {
	var sb strings.Builder

	sb.WriteString("<?zpl version=\"2.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(title)))
	sb.WriteString("    <meta name=\"Generator\" content=\"metarenamer\"/>\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(items)))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, item := range items {
		rec := item.Record
		sb.WriteString(fmt.Sprintf("      <media src=\"%s\" albumTitle=\"%s\" albumArtist=\"%s\" trackTitle=\"%s\" trackArtist=\"%s\"/>\n",
			escapeXML(fileName(item)),
			escapeXML(rec.Get(model.KeyAlbum)),
			escapeXML(rec.Get(model.KeyAlbumArtist)),
			escapeXML(rec.Get(model.KeyTitle)),
			escapeXML(rec.Get(model.KeyArtist))))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// escapeXML escapes special XML characters in a string.
//
// Replaces: & < > " '
// With:     &amp; &lt; &gt; &quot; &apos;
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}

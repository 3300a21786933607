package naming

import (
	"strings"
	"unicode"
)

const (
	// Delimiter separates path components in a pattern.
	Delimiter = "/"

	// ExtensionToken, as the final token of a pattern, renders to the
	// source file's extension.
	ExtensionToken = "extension"

	// DefaultPattern files tracks as
	// "Album Artist/Year - Album/Artist - Year - Album - NN - Title.ext".
	DefaultPattern = "albumArtist/releaseYear - album/artist - releaseYear - album - trackNumber - title.extension"

	quote = '\''
)

type partKind int

const (
	partLiteral partKind = iota
	partField
	partExtension
)

type part struct {
	kind partKind
	text string
}

// Pattern is a parsed naming pattern. The zero value renders to "".
// A Pattern is immutable and safe for concurrent use.
type Pattern struct {
	raw      string
	segments [][]part
}

// ParsePattern parses s. Runs of delimiters collapse, so leading, trailing
// and doubled '/' produce no empty components. Parsing never fails: text
// that is not a field token is literal.
func ParsePattern(s string) Pattern {
	p := Pattern{raw: s}
	for _, seg := range strings.FieldsFunc(s, func(r rune) bool { return r == '/' }) {
		p.segments = append(p.segments, parseSegment(seg))
	}

	if n := len(p.segments); n > 0 {
		last := p.segments[n-1]
		if m := len(last); m > 0 && last[m-1].kind == partField && last[m-1].text == ExtensionToken {
			last[m-1].kind = partExtension
		}
	}
	return p
}

func isFieldRune(r rune) bool {
	return r == '_' || r == ':' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// parseSegment splits one component into field tokens and literal runs.
func parseSegment(seg string) []part {
	var parts []part
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, part{kind: partLiteral, text: lit.String()})
			lit.Reset()
		}
	}

	runes := []rune(seg)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == quote:
			// '' is an apostrophe, otherwise read up to the closing quote.
			if i+1 < len(runes) && runes[i+1] == quote {
				lit.WriteRune(quote)
				i += 2
				continue
			}
			j := i + 1
			for j < len(runes) && runes[j] != quote {
				j++
			}
			lit.WriteString(string(runes[i+1 : j]))
			i = j + 1
		case isFieldRune(r):
			j := i
			for j < len(runes) && isFieldRune(runes[j]) {
				j++
			}
			flush()
			parts = append(parts, part{kind: partField, text: string(runes[i:j])})
			i = j
		default:
			lit.WriteRune(r)
			i++
		}
	}
	flush()
	return parts
}

// String returns the pattern text as given to ParsePattern.
func (p Pattern) String() string {
	return p.raw
}

// Depth returns the number of path components the pattern renders.
func (p Pattern) Depth() int {
	return len(p.segments)
}

// Fields returns the field tokens of the pattern in order of appearance,
// without duplicates and without the extension marker.
func (p Pattern) Fields() []string {
	var out []string
	seen := make(map[string]bool)
	for _, seg := range p.segments {
		for _, pt := range seg {
			if pt.kind != partField || seen[pt.text] {
				continue
			}
			seen[pt.text] = true
			out = append(out, pt.text)
		}
	}
	return out
}

// HasExtension reports whether the pattern ends with the extension marker.
func (p Pattern) HasExtension() bool {
	if len(p.segments) == 0 {
		return false
	}
	last := p.segments[len(p.segments)-1]
	return len(last) > 0 && last[len(last)-1].kind == partExtension
}

package naming

import (
	"strings"

	"github.com/handiism/metarenamer/internal/model"
)

// legacyPrefix is the namespace older patterns put in front of field names,
// as in "xmpDM:albumArtist".
const legacyPrefix = "xmpDM:"

// Render renders pattern for rec. See Pattern.Render.
func Render(pattern string, rec model.Record, ext string) string {
	return ParsePattern(pattern).Render(rec, ext)
}

// Render substitutes the pattern's field tokens with values from rec and
// returns an escaped relative path using '/' between components.
//
// rec is expected to be normalized already; Render does no cleanup. A key
// holding several values renders its first value. ext is the source file's
// extension, with or without its leading dot; when it is empty the literal
// '.' in front of the extension marker is dropped too.
//
// The result may still collide with other files and is not checked against
// path length limits.
func (p Pattern) Render(rec model.Record, ext string) string {
	ext = strings.TrimPrefix(ext, ".")

	components := make([]string, 0, len(p.segments))
	for _, seg := range p.segments {
		pieces := make([]string, 0, len(seg))
		for _, pt := range seg {
			switch pt.kind {
			case partLiteral:
				pieces = append(pieces, pt.text)
			case partField:
				pieces = append(pieces, resolve(rec, pt.text))
			case partExtension:
				if ext == "" {
					if n := len(pieces); n > 0 && seg[n-1].kind == partLiteral {
						pieces[n-1] = strings.TrimSuffix(pieces[n-1], ".")
					}
					continue
				}
				pieces = append(pieces, ext)
			}
		}
		components = append(components, Escape(strings.Join(pieces, "")))
	}

	return strings.Join(components, Delimiter)
}

// resolve returns the value for a field token. Known keys that are absent
// render empty; tokens naming no key at all are literal text.
func resolve(rec model.Record, token string) string {
	if v, ok := rec.Lookup(token); ok {
		return v
	}
	if model.IsKnownKey(token) {
		return ""
	}
	if name, ok := strings.CutPrefix(token, legacyPrefix); ok {
		if v, ok := rec.Lookup(name); ok {
			return v
		}
		if model.IsKnownKey(name) {
			return ""
		}
	}
	return token
}

// UnknownFields returns the field tokens of p that name no well-known key
// and will therefore render literally unless a record happens to carry them.
func (p Pattern) UnknownFields() []string {
	var out []string
	for _, f := range p.Fields() {
		name := strings.TrimPrefix(f, legacyPrefix)
		if !model.IsKnownKey(name) {
			out = append(out, f)
		}
	}
	return out
}

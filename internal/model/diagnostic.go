package model

import "fmt"

// DiagnosticKind classifies a Diagnostic.
type DiagnosticKind int

const (
	// KindSuspiciousAlbumArtist flags an album artist that looks like a
	// "various artists" spelling without matching a known canonical form.
	KindSuspiciousAlbumArtist DiagnosticKind = iota
)

// String returns a short name for the kind.
func (k DiagnosticKind) String() string {
	switch k {
	case KindSuspiciousAlbumArtist:
		return "suspicious-album-artist"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Diagnostic is an advisory about a metadata value. It never changes the
// value it reports on.
type Diagnostic struct {
	Kind    DiagnosticKind
	Key     string
	Value   string
	Message string
}

// String renders the diagnostic for humans.
func (d Diagnostic) String() string {
	if d.Message == "" {
		return fmt.Sprintf("%s: %s=%q", d.Kind, d.Key, d.Value)
	}
	return fmt.Sprintf("%s: %s=%q: %s", d.Kind, d.Key, d.Value, d.Message)
}

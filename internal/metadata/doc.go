// Package metadata derives and cleans metadata fields before they are
// rendered into file names.
//
// Normalize never modifies its input. It returns a new record together with
// any diagnostics raised along the way:
//
//	rec, diags := metadata.Normalize(raw)
//	for _, d := range diags {
//	    log.Printf("check tags: %s", d)
//	}
//
// Steps run in a fixed order: year derivation, track cleanup, album-artist
// fallback and album-artist canonicalization.
package metadata

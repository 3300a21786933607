// Package model defines the core data structures used throughout
// metarenamer.
//
// # Record
//
// Record holds the metadata of one media file as a mapping from field
// name to an ordered list of values:
//
//	rec := model.Record{}
//	rec.Set(model.KeyArtist, "Queen")
//	rec.Add(model.KeyReleaseYear, "1975")
//	fmt.Println(rec.Get(model.KeyArtist)) // "Queen"
//
// Absent keys are distinct from empty values; use Lookup to tell them
// apart. Get always returns the first value of a key.
//
// # Item
//
// Item represents one media file moving through a rename run:
//
//	item := model.NewItem("/in/track.mp3", raw)
//	fmt.Println(item.Extension) // "mp3"
//
// # Diagnostic
//
// Diagnostic is a non-fatal advisory produced while normalizing a
// record. Diagnostics never stop processing.
package model

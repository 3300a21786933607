// Package naming renders normalized metadata into filesystem-safe relative
// paths.
//
// A pattern is a '/'-delimited template of metadata field names and literal
// text. Each segment becomes one path component:
//
//	p := naming.ParsePattern(naming.DefaultPattern)
//	rel := p.Render(rec, "mp3")
//	// "Queen/1975 - A Night at the Opera/Queen - 1975 - A Night at the Opera - 01 - Death on Two Legs.mp3"
//
// Within a segment, runs of identifier characters ([A-Za-z0-9_:]) are field
// tokens; everything else is literal. A field token naming a known key
// renders to the record's first value for that key, or to nothing when the
// key is absent. Tokens that name no known key are kept as literal text.
// Text in single quotes is always literal ('' inside a pattern is an
// apostrophe). The last token of the pattern may be "extension", which
// renders to the source file's extension.
//
// Every component is escaped with Escape once it is assembled, so metadata
// values cannot introduce extra directories.
//
// CollisionResolver keeps two files of one run from claiming the same
// destination.
package naming

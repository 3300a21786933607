// Package audio reads and writes media tags and generates playlists.
//
// # Reading Tags
//
// Use the Reader to turn a media file's tags into a metadata record:
//
//	reader := audio.NewReader()
//	rec, err := reader.Read("/music/song.flac")
//	fmt.Println(rec.Get(model.KeyArtist))
//
// MP3 files are read with id3v2; FLAC, M4A, OGG and DSF files with the
// format-agnostic tag reader. The raw track number keeps its "n/total"
// shape so that normalization can clean it.
//
// # Writing Tags
//
// The Tagger writes a normalized record back into an MP3 file:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags(path, rec)
//
// # Playlist Generation
//
// Generate playlists for the tracks relocated into one folder:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist("A Night at the Opera", items)
//	os.WriteFile("playlist.m3u", []byte(content), 0644)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio

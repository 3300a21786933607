// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Moving and copying files, falling back to copy+remove across devices
//   - Copying, removing and measuring whole directory trees
//   - Probing file attributes
//   - Resizing and converting cover art
//
// # File Operations
//
//	// Move a file, creating parent directories
//	err := ioutils.Move(ctx, "/in/song.mp3", "/out/Artist/song.mp3")
//
//	// Copy a directory tree
//	err := ioutils.CopyTree(ctx, "/in/album", "/backup/album")
//
//	// Total size of the regular files below a directory
//	size, err := ioutils.TreeSize("/in/album")
//
// # Attributes
//
//	ioutils.Attributes("/in/song.mp3") // "EFRW"
//
// # Image Processing
//
// The ImageService handles cover art manipulation:
//
//	svc := ioutils.NewImageService()
//
//	// Resize image to fit within 500x500
//	resized, _ := svc.ResizeImage(ctx, imageData, 500, 500)
//
//	// Convert to JPEG
//	jpeg, _ := svc.ConvertToJPEG(ctx, pngData)
package ioutils

package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/image/draw"
)

// coverArtNames are the base names, without extension, that media players
// look for when showing folder artwork. Matching ignores case.
var coverArtNames = []string{"cover", "folder", "front", "albumart"}

// coverArtExts are the image extensions considered cover art.
var coverArtExts = []string{".jpg", ".jpeg", ".png"}

// FindCoverArt returns the first cover art image found directly in dir.
func FindCoverArt(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := strings.ToLower(e.Name())
		ext := filepath.Ext(name)
		if !slices.Contains(coverArtExts, ext) {
			continue
		}
		if slices.Contains(coverArtNames, strings.TrimSuffix(name, ext)) {
			return filepath.Join(dir, e.Name()), true
		}
	}
	return "", false
}

// ImageService provides image processing operations for cover art carried
// along with relocated albums.
//
// Example usage:
//
//	svc := NewImageService()
//	data, _ := os.ReadFile(coverPath)
//
//	// Resize to max 500x500 and convert to JPEG
//	resized, _ := svc.ResizeImage(ctx, data, 500, 500)
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// ResizeImage resizes an image to fit within the specified maximum dimensions.
//
// The aspect ratio is preserved. Images already within the bounds keep
// their size but are still re-encoded as JPEG. The Catmull-Rom kernel is
// used for scaling.
//
// Example:
//
//	// A 1500x1000 image becomes 1000x666
//	resized, err := svc.ResizeImage(ctx, imageData, 1000, 1000)
func (s *ImageService) ResizeImage(ctx context.Context, data []byte, maxWidth, maxHeight int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	return encodeJPEG(dst)
}

// fitWithin scales width x height down to fit maxWidth x maxHeight,
// keeping the aspect ratio. Sizes already within bounds are returned as is.
func fitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}
	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		// Height is the limiting factor
		return max(int(float64(maxHeight)*ratio), 1), maxHeight
	}
	return maxWidth, max(int(float64(maxWidth)/ratio), 1)
}

// ConvertToJPEG converts an image to JPEG format with 90% quality.
// JPEG input is re-encoded as well.
func (s *ImageService) ConvertToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return encodeJPEG(img)
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

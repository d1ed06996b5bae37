package ioutils

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // GIF decoder registration
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// ImageService provides image processing for downloaded post images.
//
// ImageService is used to:
//   - Re-encode downloaded images into the configured format (png/jpg)
//   - Resize images to fit maximum dimensions
//
// Example usage:
//
//	svc := NewImageService()
//
//	data, _ := os.ReadFile("image_abc_1.webp")
//	converted, err := svc.Convert(data, "png")
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// Convert re-encodes image data into the given format ("png", "jpg"/"jpeg").
//
// The input may be any registered format (PNG, JPEG, GIF, WebP). JPEG output
// uses quality 90. An unsupported target format is an error.
func (s *ImageService) Convert(data []byte, format string) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpg", "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	default:
		return nil, fmt.Errorf("unsupported image format: %q", format)
	}
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Resize resizes an image to fit within the specified maximum dimensions,
// preserving aspect ratio. Images already within bounds are re-encoded
// unchanged in size.
//
// The Catmull-Rom algorithm is used for high-quality scaling; output is PNG.
func (s *ImageService) Resize(data []byte, maxWidth, maxHeight int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > maxWidth || height > maxHeight {
		ratio := float64(width) / float64(height)
		if float64(maxWidth)/float64(maxHeight) > ratio {
			width = int(float64(maxHeight) * ratio)
			height = maxHeight
		} else {
			height = int(float64(maxWidth) / ratio)
			width = maxWidth
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

package slidedotnet

import (
	"bytes"
	"fmt"
	"image"
	"path"
	"strings"

	// Decoders registered for Image.Config.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image is a media part referenced by a picture, a picture fill or a slide
// background.
type Image struct {
	part *Part
}

func newImage(src *Part, rid string) (*Image, error) {
	if rid == "" {
		return nil, missingElement(src.Name(), "a:blip@r:embed")
	}
	part, err := src.RelatedByID(rid)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", rid, err)
	}
	return &Image{part: part}, nil
}

// Name returns the package path of the image part.
func (img *Image) Name() string { return img.part.Name() }

// Bytes returns the encoded image.
func (img *Image) Bytes() []byte { return img.part.Bytes() }

// SetBytes replaces the encoded image. The part name, and with it the
// content type, stays the same.
func (img *Image) SetBytes(data []byte) { img.part.SetBytes(data) }

// MIME returns the declared content type of the part, or a type guessed
// from its extension.
func (img *Image) MIME() string {
	if ct := img.part.ContentType(); ct != "" {
		return ct
	}
	return guessMimeType(img.part.Name())
}

// Config decodes the image header and returns its dimensions and format
// name. PNG, JPEG, GIF, BMP, TIFF and WebP are understood.
func (img *Image) Config() (image.Config, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(img.Bytes()))
	if err != nil {
		return image.Config{}, "", fmt.Errorf("failed to decode image %s: %w", img.part.Name(), err)
	}
	return cfg, format, nil
}

// guessMimeType maps an image file extension to its MIME type.
func guessMimeType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".svg":
		return "image/svg+xml"
	case ".wmf":
		return "image/x-wmf"
	case ".emf":
		return "image/x-emf"
	case ".tiff", ".tif":
		return "image/tiff"
	case ".webp":
		return "image/webp"
	case ".wdp":
		return "image/vnd.ms-photo"
	default:
		return "application/octet-stream"
	}
}

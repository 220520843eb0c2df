package ingest

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
)

// previewMaxDimension bounds the longer edge of generated image previews.
const previewMaxDimension = 512

// Preview is a locally displayable handle for uploaded media. For JPEG/PNG
// it points at a downscaled temp file this package owns; for everything else
// it points back at the source file.
type Preview struct {
	Path     string
	ownsFile bool
}

// Release frees the preview's backing file if this package created it.
// Call when a new upload supersedes the payload.
func (p *Preview) Release() {
	if p == nil || !p.ownsFile {
		return
	}
	if err := os.Remove(p.Path); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", p.Path).Msg("Failed to remove preview file")
	}
}

// makePreview allocates the preview handle for a payload. JPEG/PNG get a
// pure-Go downscale; other formats reuse the source path, and byte-only
// uploads without a source path get no preview.
func makePreview(data []byte, mimeType, sourcePath string) (*Preview, error) {
	switch mimeType {
	case "image/jpeg", "image/png":
		path, err := writeScaledPreview(data, mimeType)
		if err != nil {
			return nil, err
		}
		return &Preview{Path: path, ownsFile: true}, nil
	default:
		if sourcePath == "" {
			return nil, fmt.Errorf("no preview available for %s uploads without a source file", mimeType)
		}
		return &Preview{Path: sourcePath}, nil
	}
}

// writeScaledPreview decodes, downscales, and writes the preview JPEG,
// returning the temp file path.
func writeScaledPreview(data []byte, mimeType string) (string, error) {
	var img image.Image
	var err error
	if strings.HasSuffix(mimeType, "png") {
		img, err = png.Decode(bytes.NewReader(data))
	} else {
		img, err = jpeg.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return "", fmt.Errorf("failed to decode image for preview: %w", err)
	}

	scaled := scaleDown(img, previewMaxDimension)

	tmp, err := os.CreateTemp("", "forge-preview-*.jpg")
	if err != nil {
		return "", fmt.Errorf("failed to create preview file: %w", err)
	}
	defer tmp.Close()

	if err := jpeg.Encode(tmp, scaled, &jpeg.Options{Quality: 85}); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to encode preview: %w", err)
	}

	log.Debug().Str("path", tmp.Name()).Msg("Preview generated")
	return tmp.Name(), nil
}

// scaleDown resizes img so its longer edge is at most maxDim, preserving
// aspect ratio. Images already within bounds are returned unchanged.
func scaleDown(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	var newW, newH int
	if w >= h {
		newW = maxDim
		newH = h * maxDim / w
	} else {
		newH = maxDim
		newW = w * maxDim / h
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

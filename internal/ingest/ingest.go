// Package ingest turns a user-supplied media file into a transport-ready
// encoded payload plus a locally displayable preview handle. Supported
// formats and MIME resolution follow the extension tables below; anything
// else is rejected before a pipeline run starts.
package ingest

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Kind distinguishes the two media classes the pipeline accepts.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// SupportedImageExtensions maps image file extensions to MIME types.
var SupportedImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",
	".heif": "image/heif",
}

// SupportedVideoExtensions maps video file extensions to MIME types.
var SupportedVideoExtensions = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
}

// MediaPayload is the transport-ready form of an uploaded file. Immutable;
// a new upload replaces it wholesale.
type MediaPayload struct {
	// Encoded is the base64 text encoding of the raw bytes, with any
	// data-URI prefix stripped.
	Encoded string

	// MIMEType is the declared MIME type of the media.
	MIMEType string

	// Kind is derived from the MIME type prefix: video/* is video,
	// everything else is image.
	Kind Kind

	// Preview is the locally displayable handle for the media. The caller
	// releases it when a new upload supersedes this payload.
	Preview *Preview

	// Meta holds EXIF context when the media is an image and carries any.
	Meta *ImageMeta
}

// KindFromMIME derives the media kind from the MIME type prefix.
func KindFromMIME(mimeType string) Kind {
	if strings.HasPrefix(mimeType, "video/") {
		return KindVideo
	}
	return KindImage
}

// MIMEFromExtension resolves a file extension to its MIME type, or fails for
// unsupported formats.
func MIMEFromExtension(ext string) (string, error) {
	ext = strings.ToLower(ext)
	if mime, ok := SupportedImageExtensions[ext]; ok {
		return mime, nil
	}
	if mime, ok := SupportedVideoExtensions[ext]; ok {
		return mime, nil
	}
	return "", fmt.Errorf("unsupported media format: %s", ext)
}

// IsImage reports whether the extension belongs to a supported image format.
func IsImage(ext string) bool {
	_, ok := SupportedImageExtensions[strings.ToLower(ext)]
	return ok
}

// IsVideo reports whether the extension belongs to a supported video format.
func IsVideo(ext string) bool {
	_, ok := SupportedVideoExtensions[strings.ToLower(ext)]
	return ok
}

// StripDataURI removes a "data:<mime>;base64," prefix from encoded text.
// Input without the prefix is returned unchanged.
func StripDataURI(encoded string) string {
	if !strings.HasPrefix(encoded, "data:") {
		return encoded
	}
	if idx := strings.Index(encoded, ","); idx != -1 {
		return encoded[idx+1:]
	}
	return encoded
}

// LoadMedia reads a media file from disk and produces its transport payload.
// A read failure aborts the caller's operation; no pipeline run starts.
func LoadMedia(filePath string) (*MediaPayload, error) {
	log.Debug().Str("path", filePath).Msg("Loading media file")

	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", filePath)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	mimeType, err := MIMEFromExtension(ext)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return FromBytes(data, mimeType, filePath)
}

// FromBytes builds a MediaPayload from raw bytes, used by both LoadMedia and
// the web upload path.
func FromBytes(data []byte, mimeType, sourcePath string) (*MediaPayload, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("media is empty")
	}

	kind := KindFromMIME(mimeType)
	payload := &MediaPayload{
		Encoded:  base64.StdEncoding.EncodeToString(data),
		MIMEType: mimeType,
		Kind:     kind,
	}

	preview, err := makePreview(data, mimeType, sourcePath)
	if err != nil {
		// A failed preview does not block the pipeline; the payload is
		// still transport-ready.
		log.Warn().Err(err).Str("mime_type", mimeType).Msg("Preview generation failed, continuing without it")
	} else {
		payload.Preview = preview
	}

	if kind == KindImage {
		if meta, err := ExtractImageMeta(data); err != nil {
			log.Debug().Err(err).Msg("No EXIF metadata extracted")
		} else {
			payload.Meta = meta
		}
	}

	log.Info().
		Str("mime_type", mimeType).
		Str("kind", string(kind)).
		Int("size_bytes", len(data)).
		Msg("Media payload encoded")

	return payload, nil
}

package ingest

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
)

// ImageMeta holds the EXIF context extracted from an uploaded image. Used
// for presentation and diagnostics; absence of metadata never blocks a run.
type ImageMeta struct {
	CameraMake  string
	CameraModel string
	DateTaken   time.Time
	HasDate     bool
	Latitude    float64
	Longitude   float64
	HasGPS      bool
}

// ExtractImageMeta decodes EXIF metadata from raw image bytes using the
// imagemeta library (pure Go, supports JPEG/HEIC/TIFF).
func ExtractImageMeta(data []byte) (*ImageMeta, error) {
	exifData, err := imagemeta.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode EXIF metadata: %w", err)
	}

	meta := &ImageMeta{
		CameraMake:  strings.TrimSpace(exifData.Make),
		CameraModel: strings.TrimSpace(exifData.Model),
	}

	gps := exifData.GPS
	if gps.Latitude() != 0 || gps.Longitude() != 0 {
		meta.Latitude = gps.Latitude()
		meta.Longitude = gps.Longitude()
		meta.HasGPS = true
	}

	// Date fallback chain: DateTimeOriginal > CreateDate > ModifyDate.
	switch {
	case !exifData.DateTimeOriginal().IsZero():
		meta.DateTaken = exifData.DateTimeOriginal()
		meta.HasDate = true
	case !exifData.CreateDate().IsZero():
		meta.DateTaken = exifData.CreateDate()
		meta.HasDate = true
	case !exifData.ModifyDate().IsZero():
		meta.DateTaken = exifData.ModifyDate()
		meta.HasDate = true
	}

	log.Debug().
		Str("camera", strings.TrimSpace(meta.CameraMake+" "+meta.CameraModel)).
		Bool("has_gps", meta.HasGPS).
		Bool("has_date", meta.HasDate).
		Msg("EXIF metadata extracted")

	return meta, nil
}

// Describe renders the metadata as a short display string for the CLI and
// web snapshot, or "" when nothing useful was extracted.
func (m *ImageMeta) Describe() string {
	if m == nil {
		return ""
	}
	var parts []string
	if m.CameraMake != "" || m.CameraModel != "" {
		parts = append(parts, strings.TrimSpace(m.CameraMake+" "+m.CameraModel))
	}
	if m.HasDate {
		parts = append(parts, m.DateTaken.Format("Jan 2, 2006"))
	}
	if m.HasGPS {
		parts = append(parts, fmt.Sprintf("%.5f, %.5f", m.Latitude, m.Longitude))
	}
	return strings.Join(parts, " · ")
}

package gateway

import "os"

// Gemini model IDs used by the gateway.
const (
	// ModelGemini3FlashPreview is best for speed + intelligence.
	ModelGemini3FlashPreview = "gemini-3-flash-preview"

	// ModelGemini3ProPreview is for high-reasoning tasks.
	ModelGemini3ProPreview = "gemini-3-pro-preview"

	// ModelGemini25Flash is stable, balanced performance.
	ModelGemini25Flash = "gemini-2.5-flash"

	// ModelGemini3ProImage is for image generation (thumbnail rendering).
	ModelGemini3ProImage = "gemini-3-pro-image-preview"
)

// DefaultModelName is the default Gemini model for the text-generation stages.
// Can be overridden via the GEMINI_MODEL environment variable.
const DefaultModelName = ModelGemini3FlashPreview

// DefaultImageModelName is the default model for thumbnail rendering.
// Can be overridden via the GEMINI_IMAGE_MODEL environment variable.
const DefaultImageModelName = ModelGemini3ProImage

// GetModelName returns the text-generation model, resolved from GEMINI_MODEL
// or the default.
func GetModelName() string {
	if env := os.Getenv("GEMINI_MODEL"); env != "" {
		return env
	}
	return DefaultModelName
}

// GetImageModelName returns the rendering model, resolved from
// GEMINI_IMAGE_MODEL or the default.
func GetImageModelName() string {
	if env := os.Getenv("GEMINI_IMAGE_MODEL"); env != "" {
		return env
	}
	return DefaultImageModelName
}

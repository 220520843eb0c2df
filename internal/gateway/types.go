package gateway

// types.go defines the response contracts for the four Gemini capability
// calls. Every struct carries validate tags; responses are checked against
// them after JSON decoding so a schema-incomplete reply surfaces as a
// distinguishable failure instead of a half-empty value.

// Controversy flags a potentially sensitive topic detected in the media.
type Controversy struct {
	Topic       string `json:"topic" validate:"required"`
	Explanation string `json:"explanation" validate:"required"`
}

// AnalysisResult is the structured output of the media analysis stage.
// It is produced exactly once per pipeline run and feeds both the SEO and
// thumbnail-concept stages.
type AnalysisResult struct {
	Summary       string        `json:"summary" validate:"required"`
	Category      string        `json:"category" validate:"required"`
	Mood          string        `json:"mood" validate:"required"`
	Sentiment     string        `json:"sentiment" validate:"required"`
	Controversies []Controversy `json:"controversies" validate:"omitempty,dive"`
	KeyScenes     []string      `json:"keyScenes" validate:"min=1,dive,required"`
}

// Hook is one opening line proposal with the psychological trigger it leans on.
type Hook struct {
	Text        string `json:"text" validate:"required"`
	Explanation string `json:"explanation" validate:"required"`
}

// SEOPackage is the structured output of the SEO generation stage.
// Regenerated wholesale whenever the target platform changes.
type SEOPackage struct {
	Hooks       []Hook   `json:"hooks" validate:"len=3,dive"`
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Keywords    []string `json:"keywords" validate:"required,dive,required"`
	Hashtags    []string `json:"hashtags" validate:"required,dive,required"`
}

// ThumbnailConcept is a single proposed thumbnail prompt/style pair,
// independently renderable via RenderImage.
type ThumbnailConcept struct {
	Prompt string `json:"prompt" validate:"required"`
	Style  string `json:"style" validate:"required"`
}

// RenderedThumbnail is a generated thumbnail image paired with the prompt
// that produced it. Transient: rendered thumbnails are never persisted to
// run history.
type RenderedThumbnail struct {
	Prompt    string `json:"prompt"`
	ImageData []byte `json:"imageData"`
	MIMEType  string `json:"mimeType"`
}

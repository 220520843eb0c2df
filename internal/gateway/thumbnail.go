package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fpang/content-forge/internal/jsonutil"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// ThumbnailStyles is the fixed aesthetic palette every concept batch must
// cover. One concept per style, ten concepts per run.
var ThumbnailStyles = []string{
	"hyperrealistic CGI",
	"cinematic lighting",
	"retro VHS",
	"minimalist flat",
	"surreal dreamscape",
	"documentary photo",
	"glitch art",
	"cyberpunk neon",
	"pastel goth",
	"lo-fi anime",
}

// conceptBatchSize is the number of thumbnail concepts requested per run,
// matching the length of ThumbnailStyles.
const conceptBatchSize = 10

// thumbnailSystemPrompt frames the model as an art director pinned to bare JSON.
const thumbnailSystemPrompt = `You are a thumbnail art director writing prompts for an image-generation model.
You respond with ONLY a single valid JSON array, no markdown fences, no prose before or after.`

// GenerateThumbnailConcepts asks Gemini for one renderable thumbnail prompt
// per aesthetic style. Each concept is independently consumable by
// RenderImage. Missing style coverage is logged but not rejected; count and
// shape are enforced.
func (c *Client) GenerateThumbnailConcepts(ctx context.Context, analysis *AnalysisResult) ([]ThumbnailConcept, error) {
	prompt := BuildThumbnailPrompt(analysis)

	log.Debug().
		Str("model", c.model).
		Int("prompt_length", len(prompt)).
		Msg("Starting thumbnail-concept generation")

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: thumbnailSystemPrompt}},
		},
	}
	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}}

	callStart := time.Now()
	resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, config)
	duration := time.Since(callStart)
	if err != nil {
		log.Error().Err(err).Dur("duration", duration).Msg("Thumbnail-concept call failed")
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("received empty response from Gemini API")
	}

	responseText := resp.Text()
	log.Debug().
		Int("response_length", len(responseText)).
		Dur("duration", duration).
		Msg("Thumbnail-concept response received")

	concepts, err := jsonutil.Decode[[]ThumbnailConcept](responseText)
	if err != nil {
		log.Error().Err(err).Str("response", truncate(responseText, 500)).Msg("Failed to parse thumbnail-concept response")
		return nil, fmt.Errorf("thumbnail-concept response: %w", err)
	}
	if err := jsonutil.ValidSlice(concepts); err != nil {
		return nil, fmt.Errorf("thumbnail-concept response: %w", err)
	}
	if len(concepts) != conceptBatchSize {
		return nil, fmt.Errorf("thumbnail-concept response: expected %d concepts, got %d", conceptBatchSize, len(concepts))
	}

	if missing := MissingStyles(concepts); len(missing) > 0 {
		log.Warn().
			Strs("missing_styles", missing).
			Msg("Thumbnail-concept batch does not cover every style")
	}

	log.Info().Int("concepts", len(concepts)).Msg("Thumbnail-concept generation complete")
	return concepts, nil
}

// BuildThumbnailPrompt embeds the summary and key scenes and mandates one
// concept per fixed style.
func BuildThumbnailPrompt(analysis *AnalysisResult) string {
	var sb strings.Builder

	sb.WriteString("## Thumbnail Concept Request\n\n")
	sb.WriteString(fmt.Sprintf("Content summary: %s\n\n", analysis.Summary))
	if len(analysis.KeyScenes) > 0 {
		sb.WriteString("Key scenes:\n")
		for _, scene := range analysis.KeyScenes {
			sb.WriteString(fmt.Sprintf("- %s\n", scene))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Propose exactly %d thumbnail concepts, one per style below, in order:\n", conceptBatchSize))
	for i, style := range ThumbnailStyles {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, style))
	}
	sb.WriteString("\n")

	sb.WriteString("### Required Output\n\n")
	sb.WriteString("Respond with a JSON array of exactly 10 entries: {\"prompt\": ..., \"style\": ...}.\n")
	sb.WriteString("Each \"prompt\" is a complete, self-contained image-generation prompt grounded in the content above.\n")
	sb.WriteString("Each \"style\" is the exact style name from the list.\n")

	return sb.String()
}

// MissingStyles returns the fixed styles not covered by the batch.
// Style matching is case-insensitive.
func MissingStyles(concepts []ThumbnailConcept) []string {
	var missing []string
	for _, style := range ThumbnailStyles {
		found := false
		for _, concept := range concepts {
			if strings.EqualFold(concept.Style, style) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, style)
		}
	}
	return missing
}

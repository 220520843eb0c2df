package gateway

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/fpang/content-forge/internal/jsonutil"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// analysisSystemPrompt frames the model as a content analyst and pins the
// response to bare JSON.
const analysisSystemPrompt = `You are a content strategist analyzing media for social publishing.
You respond with ONLY a single valid JSON object, no markdown fences, no prose before or after.`

// AnalyzeMedia sends the encoded media to Gemini and returns the structured
// analysis. This is the first pipeline stage; its output feeds both the SEO
// and thumbnail-concept stages.
func (c *Client) AnalyzeMedia(ctx context.Context, encodedPayload, mimeType string) (*AnalysisResult, error) {
	data, err := base64.StdEncoding.DecodeString(encodedPayload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode media payload: %w", err)
	}

	prompt := BuildAnalysisPrompt(mimeType)

	log.Debug().
		Str("mime_type", mimeType).
		Int("media_bytes", len(data)).
		Str("model", c.model).
		Msg("Starting media analysis")

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: analysisSystemPrompt}},
		},
	}

	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
		{Text: prompt},
	}
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	callStart := time.Now()
	resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, config)
	duration := time.Since(callStart)
	if err != nil {
		log.Error().Err(err).Dur("duration", duration).Msg("Media analysis call failed")
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("received empty response from Gemini API")
	}

	responseText := resp.Text()
	log.Debug().
		Int("response_length", len(responseText)).
		Dur("duration", duration).
		Msg("Media analysis response received")

	result, err := jsonutil.DecodeValid[AnalysisResult](responseText)
	if err != nil {
		log.Error().Err(err).Str("response", truncate(responseText, 500)).Msg("Failed to parse analysis response")
		return nil, fmt.Errorf("analysis response: %w", err)
	}

	log.Info().
		Str("category", result.Category).
		Str("mood", result.Mood).
		Int("key_scenes", len(result.KeyScenes)).
		Int("controversies", len(result.Controversies)).
		Msg("Media analysis complete")

	return &result, nil
}

// BuildAnalysisPrompt creates the analysis instruction. Scene phrasing
// differs between images and videos: a video has key scenes, a still image
// has visual highlights.
func BuildAnalysisPrompt(mimeType string) string {
	isVideo := strings.HasPrefix(mimeType, "video/")

	var sb strings.Builder
	sb.WriteString("## Media Analysis Task\n\n")
	if isVideo {
		sb.WriteString("Analyze the attached video for social media publishing.\n\n")
	} else {
		sb.WriteString("Analyze the attached image for social media publishing.\n\n")
	}

	sb.WriteString("### Required Output\n\n")
	sb.WriteString("Respond with a JSON object containing exactly these fields:\n")
	sb.WriteString("- \"summary\": a one-sentence summary of the content\n")
	sb.WriteString("- \"category\": the content category (e.g., travel, tech, food, fitness)\n")
	sb.WriteString("- \"mood\": the overall mood\n")
	sb.WriteString("- \"sentiment\": the overall sentiment (positive, negative, neutral, or mixed)\n")
	sb.WriteString("- \"controversies\": an array, possibly empty, of {\"topic\": ..., \"explanation\": ...} for anything potentially sensitive or controversial\n")
	if isVideo {
		sb.WriteString("- \"keyScenes\": an array of 3-5 short strings, one per key scene in the video\n")
	} else {
		sb.WriteString("- \"keyScenes\": an array of 3-5 short strings describing the strongest visual highlights of the image\n")
	}

	return sb.String()
}

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

// seoSystemPrompt frames the model as an SEO copywriter pinned to bare JSON.
const seoSystemPrompt = `You are an expert social media SEO copywriter.
You respond with ONLY a single valid JSON object, no markdown fences, no prose before or after.`

// GenerateSEO produces the platform-tailored copy package for an analyzed
// piece of media. Re-run on every platform change; the analysis input is
// never modified.
func (c *Client) GenerateSEO(ctx context.Context, analysis *AnalysisResult, platform Platform) (*SEOPackage, error) {
	strategy, ok := platformStrategies[platform]
	if !ok {
		return nil, fmt.Errorf("unknown platform %q", platform)
	}

	prompt := BuildSEOPrompt(analysis, platform, strategy)

	log.Debug().
		Str("platform", string(platform)).
		Str("model", c.model).
		Int("prompt_length", len(prompt)).
		Msg("Starting SEO generation")

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: seoSystemPrompt}},
		},
	}
	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}}

	callStart := time.Now()
	resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, config)
	duration := time.Since(callStart)
	if err != nil {
		log.Error().Err(err).Dur("duration", duration).Msg("SEO generation call failed")
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("received empty response from Gemini API")
	}

	responseText := resp.Text()
	log.Debug().
		Int("response_length", len(responseText)).
		Dur("duration", duration).
		Msg("SEO response received")

	result, err := jsonutil.DecodeValid[SEOPackage](responseText)
	if err != nil {
		log.Error().Err(err).Str("response", truncate(responseText, 500)).Msg("Failed to parse SEO response")
		return nil, fmt.Errorf("SEO response: %w", err)
	}

	log.Info().
		Str("platform", string(platform)).
		Str("title", truncate(result.Title, 80)).
		Int("keywords", len(result.Keywords)).
		Int("hashtags", len(result.Hashtags)).
		Msg("SEO generation complete")

	return &result, nil
}

// BuildSEOPrompt interpolates the analysis into a platform-directed copy
// request. Controversies are included only when the analysis flagged any, so
// a clean analysis never plants controversy topics in the request context.
func BuildSEOPrompt(analysis *AnalysisResult, platform Platform, strategy platformStrategy) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## SEO Copy Request for %s\n\n", platform))

	sb.WriteString("### Content Analysis\n\n")
	sb.WriteString(fmt.Sprintf("- Summary: %s\n", analysis.Summary))
	sb.WriteString(fmt.Sprintf("- Category: %s\n", analysis.Category))
	sb.WriteString(fmt.Sprintf("- Mood: %s\n", analysis.Mood))
	sb.WriteString(fmt.Sprintf("- Sentiment: %s\n", analysis.Sentiment))
	if len(analysis.KeyScenes) > 0 {
		sb.WriteString("- Key scenes:\n")
		for _, scene := range analysis.KeyScenes {
			sb.WriteString(fmt.Sprintf("  - %s\n", scene))
		}
	}
	if len(analysis.Controversies) > 0 {
		sb.WriteString("- Sensitive topics to handle carefully:\n")
		for _, c := range analysis.Controversies {
			sb.WriteString(fmt.Sprintf("  - %s: %s\n", c.Topic, c.Explanation))
		}
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("### %s Strategy\n\n", platform))
	sb.WriteString(fmt.Sprintf("- Tone: %s\n", strategy.Tone))
	sb.WriteString(fmt.Sprintf("- Hooks: %s\n", strategy.HookStyle))
	sb.WriteString(fmt.Sprintf("- Description: %s\n\n", strategy.Description))

	sb.WriteString("### Required Output\n\n")
	sb.WriteString("Respond with a JSON object containing exactly these fields:\n")
	sb.WriteString("- \"hooks\": exactly 3 entries of {\"text\": ..., \"explanation\": ...}; each explanation names the distinct psychological trigger the hook uses (e.g., curiosity, FOMO, social proof)\n")
	sb.WriteString(fmt.Sprintf("- \"title\": an SEO-optimized title for %s\n", platform))
	sb.WriteString("- \"description\": the description, following the strategy above\n")
	sb.WriteString("- \"keywords\": an array of 10 search keywords\n")
	sb.WriteString("- \"hashtags\": an array of 10 hashtags, each starting with #\n")

	return sb.String()
}

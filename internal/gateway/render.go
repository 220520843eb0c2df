package gateway

// render.go is a REST client for Gemini image generation, used to forge a
// thumbnail concept into an actual image. It uses direct HTTP calls instead
// of the Go SDK because image-output generation config is not fully exposed
// there.

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// geminiBaseURL is the Gemini REST API base URL.
const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// renderAspectRatio is the fixed output shape for thumbnails.
const renderAspectRatio = "16:9"

// ErrNoImage reports a well-formed response that contains no inline image
// payload. This is a content failure, distinct from network and schema
// failures; the call is not retried.
var ErrNoImage = errors.New("no image returned in response")

// RenderClient calls a Gemini image model via REST for thumbnail rendering.
type RenderClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewRenderClient creates a rendering client. An empty model selects the
// default image model.
func NewRenderClient(apiKey, model string) *RenderClient {
	if model == "" {
		model = GetImageModelName()
	}
	return &RenderClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: geminiBaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // image generation can take 10-30s
		},
	}
}

// --- REST request/response types ---

type renderRequest struct {
	Contents         []renderContent         `json:"contents"`
	GenerationConfig *renderGenerationConfig `json:"generationConfig,omitempty"`
}

type renderContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []renderPart `json:"parts"`
}

type renderPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *renderBlob `json:"inlineData,omitempty"`
}

type renderGenerationConfig struct {
	ResponseModalities []string           `json:"responseModalities,omitempty"`
	ImageConfig        *renderImageConfig `json:"imageConfig,omitempty"`
}

type renderImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type renderBlob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"` // base64 encoded
}

type renderResponse struct {
	Candidates []renderCandidate `json:"candidates"`
	Error      *renderError      `json:"error,omitempty"`
}

type renderCandidate struct {
	Content renderContent `json:"content"`
}

type renderError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// RenderImage sends a free-text prompt to the image model and returns the
// rendered thumbnail. A response with no inline image payload fails with
// ErrNoImage.
func (c *Client) RenderImage(ctx context.Context, prompt string) (*RenderedThumbnail, error) {
	return c.render.Render(ctx, prompt)
}

// Render performs the image-generation round trip.
func (r *RenderClient) Render(ctx context.Context, prompt string) (*RenderedThumbnail, error) {
	startTime := time.Now()
	log.Info().
		Str("model", r.model).
		Str("prompt", truncate(prompt, 100)).
		Msg("Rendering thumbnail")

	req := renderRequest{
		Contents: []renderContent{
			{Role: "user", Parts: []renderPart{{Text: prompt}}},
		},
		GenerationConfig: &renderGenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
			ImageConfig:        &renderImageConfig{AspectRatio: renderAspectRatio},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", r.baseURL, r.model, r.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error().
			Int("status", resp.StatusCode).
			Str("body", truncate(string(respBody), 500)).
			Msg("Gemini rendering API returned error")
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var rendered renderResponse
	if err := json.Unmarshal(respBody, &rendered); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if rendered.Error != nil {
		return nil, fmt.Errorf("API error: %s (code: %d)", rendered.Error.Message, rendered.Error.Code)
	}

	result := &RenderedThumbnail{Prompt: prompt}
	var text string
	for _, candidate := range rendered.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil {
				decoded, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err != nil {
					return nil, fmt.Errorf("failed to decode image data: %w", err)
				}
				result.ImageData = decoded
				result.MIMEType = part.InlineData.MIMEType
			}
			if part.Text != "" {
				text += part.Text
			}
		}
	}

	if result.ImageData == nil {
		return nil, fmt.Errorf("%w (text: %s)", ErrNoImage, truncate(text, 200))
	}

	log.Info().
		Int("output_bytes", len(result.ImageData)).
		Str("output_mime", result.MIMEType).
		Dur("duration", time.Since(startTime)).
		Msg("Thumbnail rendering complete")

	return result, nil
}

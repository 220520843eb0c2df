// Package gateway is a thin typed client over the Gemini generative backend.
// It exposes the four capability calls the pipeline needs (media analysis,
// SEO generation, thumbnail-concept generation, and image rendering) and
// owns the request/response schema contracts for each. Calls are single
// request/response round trips; nothing is streamed and nothing is retried
// at this layer.
package gateway

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Client wraps a Gemini SDK client plus the REST rendering client.
type Client struct {
	genai  *genai.Client
	render *RenderClient
	model  string
}

// NewClient creates a gateway client for the Gemini API. model selects the
// text-generation model; imageModel selects the rendering model.
func NewClient(ctx context.Context, apiKey, model, imageModel string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = GetModelName()
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		genai:  gc,
		render: NewRenderClient(apiKey, imageModel),
		model:  model,
	}, nil
}

// Model returns the text-generation model this client uses.
func (c *Client) Model() string {
	return c.model
}

// truncate shortens s to maxLen for log/error output, appending "..." if cut.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

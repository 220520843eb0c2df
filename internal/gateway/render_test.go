package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// stubRenderServer returns an httptest server that responds to any
// generateContent call with the given body and status.
func stubRenderServer(t *testing.T, status int, body any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
}

func TestRenderSuccess(t *testing.T) {
	imageBytes := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02}
	server := stubRenderServer(t, http.StatusOK, renderResponse{
		Candidates: []renderCandidate{{
			Content: renderContent{Parts: []renderPart{
				{Text: "Here is your thumbnail."},
				{InlineData: &renderBlob{
					MIMEType: "image/jpeg",
					Data:     base64.StdEncoding.EncodeToString(imageBytes),
				}},
			}},
		}},
	})
	defer server.Close()

	rc := NewRenderClient("test-key", "test-model")
	rc.baseURL = server.URL

	result, err := rc.Render(context.Background(), "a mountain sunrise, cinematic lighting")
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if result.MIMEType != "image/jpeg" {
		t.Errorf("MIMEType = %q, want image/jpeg", result.MIMEType)
	}
	if len(result.ImageData) != len(imageBytes) {
		t.Errorf("ImageData length = %d, want %d", len(result.ImageData), len(imageBytes))
	}
	if result.Prompt != "a mountain sunrise, cinematic lighting" {
		t.Errorf("Prompt = %q, want the triggering prompt", result.Prompt)
	}
}

func TestRenderNoImagePayload(t *testing.T) {
	server := stubRenderServer(t, http.StatusOK, renderResponse{
		Candidates: []renderCandidate{{
			Content: renderContent{Parts: []renderPart{
				{Text: "I cannot generate that image."},
			}},
		}},
	})
	defer server.Close()

	rc := NewRenderClient("test-key", "test-model")
	rc.baseURL = server.URL

	_, err := rc.Render(context.Background(), "prompt")
	if !errors.Is(err, ErrNoImage) {
		t.Errorf("Render error = %v, want ErrNoImage", err)
	}
}

func TestRenderHTTPError(t *testing.T) {
	server := stubRenderServer(t, http.StatusTooManyRequests, map[string]string{"error": "quota"})
	defer server.Close()

	rc := NewRenderClient("test-key", "test-model")
	rc.baseURL = server.URL

	_, err := rc.Render(context.Background(), "prompt")
	if err == nil {
		t.Fatal("Render succeeded on a 429 response")
	}
	if errors.Is(err, ErrNoImage) {
		t.Error("HTTP failure misreported as a missing image payload")
	}
}

func TestRenderAPIErrorBody(t *testing.T) {
	server := stubRenderServer(t, http.StatusOK, renderResponse{
		Error: &renderError{Code: 400, Message: "invalid prompt", Status: "INVALID_ARGUMENT"},
	})
	defer server.Close()

	rc := NewRenderClient("test-key", "test-model")
	rc.baseURL = server.URL

	_, err := rc.Render(context.Background(), "prompt")
	if err == nil {
		t.Fatal("Render succeeded on an API error body")
	}
	if errors.Is(err, ErrNoImage) {
		t.Error("API error misreported as a missing image payload")
	}
}

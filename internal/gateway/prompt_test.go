package gateway

import (
	"strings"
	"testing"
)

func testAnalysis() *AnalysisResult {
	return &AnalysisResult{
		Summary:   "A timelapse of a mountain sunrise over a foggy valley.",
		Category:  "travel",
		Mood:      "serene",
		Sentiment: "positive",
		KeyScenes: []string{"fog rolling through the valley", "first light on the peak", "hikers silhouetted on the ridge"},
	}
}

func TestBuildAnalysisPromptPhrasing(t *testing.T) {
	videoPrompt := BuildAnalysisPrompt("video/mp4")
	if !strings.Contains(videoPrompt, "attached video") {
		t.Error("video prompt does not mention the attached video")
	}
	if !strings.Contains(videoPrompt, "key scene in the video") {
		t.Error("video prompt does not ask for key scenes")
	}

	imagePrompt := BuildAnalysisPrompt("image/jpeg")
	if !strings.Contains(imagePrompt, "attached image") {
		t.Error("image prompt does not mention the attached image")
	}
	if !strings.Contains(imagePrompt, "visual highlights") {
		t.Error("image prompt does not ask for visual highlights")
	}
}

func TestBuildSEOPromptOmitsEmptyControversies(t *testing.T) {
	analysis := testAnalysis()
	analysis.Controversies = nil

	prompt := BuildSEOPrompt(analysis, PlatformYouTube, platformStrategies[PlatformYouTube])
	if strings.Contains(prompt, "Sensitive topics") {
		t.Error("SEO prompt references controversies despite an empty analysis")
	}
}

func TestBuildSEOPromptIncludesControversies(t *testing.T) {
	analysis := testAnalysis()
	analysis.Controversies = []Controversy{
		{Topic: "drone use", Explanation: "drone flight restrictions apply in national parks"},
	}

	prompt := BuildSEOPrompt(analysis, PlatformInstagram, platformStrategies[PlatformInstagram])
	if !strings.Contains(prompt, "drone use") {
		t.Error("SEO prompt does not surface the flagged controversy")
	}
}

func TestBuildSEOPromptPerPlatformStrategy(t *testing.T) {
	analysis := testAnalysis()
	seen := make(map[string]bool)
	for _, platform := range Platforms {
		prompt := BuildSEOPrompt(analysis, platform, platformStrategies[platform])
		if !strings.Contains(prompt, string(platform)) {
			t.Errorf("prompt for %s does not name the platform", platform)
		}
		if seen[prompt] {
			t.Errorf("prompt for %s is identical to another platform's", platform)
		}
		seen[prompt] = true
	}
}

func TestBuildThumbnailPromptCoversStyles(t *testing.T) {
	prompt := BuildThumbnailPrompt(testAnalysis())
	for _, style := range ThumbnailStyles {
		if !strings.Contains(prompt, style) {
			t.Errorf("thumbnail prompt missing style %q", style)
		}
	}
	if !strings.Contains(prompt, "fog rolling through the valley") {
		t.Error("thumbnail prompt does not embed key scenes")
	}
}

func TestMissingStyles(t *testing.T) {
	var concepts []ThumbnailConcept
	for _, style := range ThumbnailStyles {
		concepts = append(concepts, ThumbnailConcept{Prompt: "p", Style: strings.ToUpper(style)})
	}
	if missing := MissingStyles(concepts); len(missing) != 0 {
		t.Errorf("full batch reported missing styles: %v", missing)
	}

	partial := concepts[:9]
	missing := MissingStyles(partial)
	if len(missing) != 1 || missing[0] != ThumbnailStyles[9] {
		t.Errorf("MissingStyles = %v, want [%q]", missing, ThumbnailStyles[9])
	}
}

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		input    string
		expected Platform
		wantErr  bool
	}{
		{"youtube", PlatformYouTube, false},
		{"YouTube", PlatformYouTube, false},
		{"INSTAGRAM", PlatformInstagram, false},
		{"twitter", PlatformTwitter, false},
		{"pinterest", PlatformPinterest, false},
		{"myspace", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePlatform(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParsePlatform(%q) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePlatform(%q) returned error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParsePlatform(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

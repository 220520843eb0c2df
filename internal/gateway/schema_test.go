package gateway

import (
	"errors"
	"testing"

	"github.com/fpang/content-forge/internal/jsonutil"
)

const validAnalysisJSON = `{
	"summary": "A sunrise timelapse over a foggy valley.",
	"category": "travel",
	"mood": "serene",
	"sentiment": "positive",
	"controversies": [],
	"keyScenes": ["fog in the valley", "first light", "ridge silhouette"]
}`

func TestAnalysisSchemaAcceptsEmptyControversies(t *testing.T) {
	result, err := jsonutil.DecodeValid[AnalysisResult](validAnalysisJSON)
	if err != nil {
		t.Fatalf("DecodeValid returned error: %v", err)
	}
	if len(result.Controversies) != 0 {
		t.Errorf("Controversies = %v, want empty", result.Controversies)
	}
	if len(result.KeyScenes) != 3 {
		t.Errorf("KeyScenes length = %d, want 3", len(result.KeyScenes))
	}
}

func TestAnalysisSchemaRejectsMissingFields(t *testing.T) {
	_, err := jsonutil.DecodeValid[AnalysisResult](`{"summary": "only a summary"}`)
	var de *jsonutil.DecodeError
	if !errors.As(err, &de) || de.Kind != jsonutil.KindSchema {
		t.Errorf("DecodeValid = %v, want KindSchema failure", err)
	}
}

func TestAnalysisSchemaRejectsMissingKeyScenes(t *testing.T) {
	raw := `{
		"summary": "s", "category": "c", "mood": "m", "sentiment": "positive",
		"controversies": []
	}`
	_, err := jsonutil.DecodeValid[AnalysisResult](raw)
	var de *jsonutil.DecodeError
	if !errors.As(err, &de) || de.Kind != jsonutil.KindSchema {
		t.Errorf("DecodeValid = %v, want KindSchema failure for absent keyScenes", err)
	}

	empty := `{
		"summary": "s", "category": "c", "mood": "m", "sentiment": "positive",
		"controversies": [], "keyScenes": []
	}`
	if _, err := jsonutil.DecodeValid[AnalysisResult](empty); !errors.As(err, &de) || de.Kind != jsonutil.KindSchema {
		t.Errorf("DecodeValid = %v, want KindSchema failure for empty keyScenes", err)
	}
}

func TestAnalysisSchemaRejectsMalformedControversy(t *testing.T) {
	raw := `{
		"summary": "s", "category": "c", "mood": "m", "sentiment": "positive",
		"controversies": [{"topic": "drone use"}],
		"keyScenes": ["a"]
	}`
	_, err := jsonutil.DecodeValid[AnalysisResult](raw)
	var de *jsonutil.DecodeError
	if !errors.As(err, &de) || de.Kind != jsonutil.KindSchema {
		t.Errorf("DecodeValid = %v, want KindSchema failure for controversy missing explanation", err)
	}
}

func TestSEOSchemaRequiresThreeHooks(t *testing.T) {
	raw := `{
		"hooks": [
			{"text": "h1", "explanation": "curiosity"},
			{"text": "h2", "explanation": "FOMO"}
		],
		"title": "t", "description": "d",
		"keywords": ["k"], "hashtags": ["#h"]
	}`
	_, err := jsonutil.DecodeValid[SEOPackage](raw)
	var de *jsonutil.DecodeError
	if !errors.As(err, &de) || de.Kind != jsonutil.KindSchema {
		t.Errorf("DecodeValid = %v, want KindSchema failure for two hooks", err)
	}
}

func TestSEOSchemaAcceptsCompletePackage(t *testing.T) {
	raw := `{
		"hooks": [
			{"text": "h1", "explanation": "curiosity"},
			{"text": "h2", "explanation": "FOMO"},
			{"text": "h3", "explanation": "social proof"}
		],
		"title": "Sunrise Over the Valley",
		"description": "A calm morning timelapse.",
		"keywords": ["sunrise", "timelapse"],
		"hashtags": ["#sunrise", "#timelapse"]
	}`
	pkg, err := jsonutil.DecodeValid[SEOPackage](raw)
	if err != nil {
		t.Fatalf("DecodeValid returned error: %v", err)
	}
	if len(pkg.Hooks) != 3 {
		t.Errorf("Hooks length = %d, want 3", len(pkg.Hooks))
	}
}

func TestThumbnailConceptShapeCheck(t *testing.T) {
	good := []ThumbnailConcept{{Prompt: "p", Style: "retro VHS"}}
	if err := jsonutil.ValidSlice(good); err != nil {
		t.Errorf("ValidSlice(good) = %v, want nil", err)
	}

	bad := []ThumbnailConcept{{Prompt: "p"}}
	err := jsonutil.ValidSlice(bad)
	var de *jsonutil.DecodeError
	if !errors.As(err, &de) || de.Kind != jsonutil.KindSchema {
		t.Errorf("ValidSlice(bad) = %v, want KindSchema failure", err)
	}
}

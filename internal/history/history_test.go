package history

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/fpang/content-forge/internal/gateway"
	"github.com/fpang/content-forge/internal/ingest"
)

func sampleRecord(id string) RunRecord {
	return RunRecord{
		ID:        id,
		Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		MediaKind: ingest.KindImage,
		Summary:   "A sunrise timelapse over a foggy valley.",
		Platform:  gateway.PlatformYouTube,
		Analysis: gateway.AnalysisResult{
			Summary:   "A sunrise timelapse over a foggy valley.",
			Category:  "travel",
			Mood:      "serene",
			Sentiment: "positive",
			KeyScenes: []string{"fog", "first light"},
		},
		SEO: gateway.SEOPackage{
			Hooks: []gateway.Hook{
				{Text: "h1", Explanation: "curiosity"},
				{Text: "h2", Explanation: "FOMO"},
				{Text: "h3", Explanation: "social proof"},
			},
			Title:       "Sunrise Over the Valley",
			Description: "A calm morning timelapse.",
			Keywords:    []string{"sunrise"},
			Hashtags:    []string{"#sunrise"},
		},
		Concepts: []gateway.ThumbnailConcept{{Prompt: "p", Style: "retro VHS"}},
	}
}

func TestInsertPrependsNewestFirst(t *testing.T) {
	s := NewStore(&MemoryBlobStore{})

	for i := 0; i < 3; i++ {
		if err := s.Insert(sampleRecord(fmt.Sprintf("run-%d", i))); err != nil {
			t.Fatalf("Insert returned error: %v", err)
		}
	}

	all := s.All()
	if len(all) != 3 {
		t.Fatalf("Len = %d, want 3", len(all))
	}
	if all[0].ID != "run-2" || all[2].ID != "run-0" {
		t.Errorf("order = [%s %s %s], want newest first", all[0].ID, all[1].ID, all[2].ID)
	}
}

func TestCapEvictsExactlyOldest(t *testing.T) {
	s := NewStore(&MemoryBlobStore{})

	for i := 0; i < MaxEntries+1; i++ {
		if err := s.Insert(sampleRecord(fmt.Sprintf("run-%d", i))); err != nil {
			t.Fatalf("Insert returned error: %v", err)
		}
	}

	if s.Len() != MaxEntries {
		t.Fatalf("Len = %d, want %d", s.Len(), MaxEntries)
	}
	if _, err := s.Recall("run-0"); !errors.Is(err, ErrNotFound) {
		t.Error("oldest record survived eviction")
	}
	if _, err := s.Recall("run-1"); err != nil {
		t.Error("second-oldest record was evicted, only the oldest should be")
	}
	if _, err := s.Recall(fmt.Sprintf("run-%d", MaxEntries)); err != nil {
		t.Error("newest record missing after eviction")
	}
}

func TestLenNeverExceedsCap(t *testing.T) {
	s := NewStore(&MemoryBlobStore{})
	for i := 0; i < MaxEntries*2; i++ {
		if err := s.Insert(sampleRecord(fmt.Sprintf("run-%d", i))); err != nil {
			t.Fatal(err)
		}
		if s.Len() > MaxEntries {
			t.Fatalf("Len exceeded cap after %d inserts", i+1)
		}
	}
}

func TestPersistLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.zst")
	blob := NewFileBlobStore(path)

	s := NewStore(blob)
	want := []RunRecord{sampleRecord("run-b"), sampleRecord("run-a")}
	if err := s.Insert(want[1]); err != nil {
		t.Fatal(err)
	}
	if err := s.Insert(want[0]); err != nil {
		t.Fatal(err)
	}

	reloaded := NewStore(NewFileBlobStore(path))
	got := reloaded.All()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestMissingBlobYieldsEmptyLog(t *testing.T) {
	s := NewStore(NewFileBlobStore(filepath.Join(t.TempDir(), "absent.zst")))
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0 for a missing blob", s.Len())
	}
}

func TestUnparsableBlobYieldsEmptyLog(t *testing.T) {
	blob := &MemoryBlobStore{}
	if err := blob.Set([]byte("not json at all")); err != nil {
		t.Fatal(err)
	}
	s := NewStore(blob)
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0 for an unparsable blob", s.Len())
	}
}

func TestRecallIsIdempotent(t *testing.T) {
	s := NewStore(&MemoryBlobStore{})
	if err := s.Insert(sampleRecord("run-x")); err != nil {
		t.Fatal(err)
	}

	first, err := s.Recall("run-x")
	if err != nil {
		t.Fatalf("Recall returned error: %v", err)
	}
	second, err := s.Recall("run-x")
	if err != nil {
		t.Fatalf("second Recall returned error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated Recall returned different records")
	}
	if s.Len() != 1 {
		t.Errorf("Recall mutated the log: Len = %d, want 1", s.Len())
	}
}

func TestRecallUnknownID(t *testing.T) {
	s := NewStore(&MemoryBlobStore{})
	if _, err := s.Recall("run-missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Recall = %v, want ErrNotFound", err)
	}
}

func TestFileBlobStoreCompresses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.zst")
	blob := NewFileBlobStore(path)

	payload := []byte(`[{"id":"run-1"},{"id":"run-2"}]`)
	if err := blob.Set(payload); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	got, ok, err := blob.Get()
	if err != nil || !ok {
		t.Fatalf("Get = (%v, %v), want stored blob", ok, err)
	}
	if !reflect.DeepEqual(got, payload) {
		t.Error("blob did not round-trip through compression")
	}
}

// Package history keeps the bounded, most-recent-first log of completed
// pipeline runs. Records are immutable once inserted; the log is persisted
// wholesale through an opaque BlobStore on every mutation. A blob that is
// missing or fails to parse is treated as no history.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fpang/content-forge/internal/gateway"
	"github.com/fpang/content-forge/internal/ingest"
	"github.com/rs/zerolog/log"
)

// MaxEntries caps the history log. Inserting beyond the cap silently drops
// the oldest records.
const MaxEntries = 20

// ErrNotFound reports a recall for an id not present in the log.
var ErrNotFound = errors.New("run record not found")

// RunRecord is one completed pipeline run. Created only after all three
// stages succeed; never mutated afterwards.
type RunRecord struct {
	ID        string                     `json:"id"`
	Timestamp time.Time                  `json:"timestamp"`
	MediaKind ingest.Kind                `json:"mediaKind"`
	Summary   string                     `json:"summary"`
	Platform  gateway.Platform           `json:"platform"`
	Analysis  gateway.AnalysisResult     `json:"analysis"`
	SEO       gateway.SEOPackage         `json:"seo"`
	Concepts  []gateway.ThumbnailConcept `json:"concepts"`
}

// Store is the history log plus its persistence. Safe for concurrent use.
type Store struct {
	blob BlobStore

	mu      sync.Mutex
	records []RunRecord // newest first
}

// NewStore creates a Store over the given blob and loads any persisted log.
// A missing or unparsable blob starts the log empty.
func NewStore(blob BlobStore) *Store {
	s := &Store{blob: blob}
	s.records = s.load()
	return s
}

// load reads the persisted log. Any failure degrades to an empty log.
func (s *Store) load() []RunRecord {
	data, ok, err := s.blob.Get()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load history blob, starting empty")
		return nil
	}
	if !ok {
		log.Debug().Msg("No history blob found, starting empty")
		return nil
	}

	var records []RunRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Warn().Err(err).Msg("History blob failed to parse, starting empty")
		return nil
	}
	if len(records) > MaxEntries {
		records = records[:MaxEntries]
	}

	log.Debug().Int("records", len(records)).Msg("History loaded")
	return records
}

// persist serializes the full log to the blob. Caller holds s.mu.
func (s *Store) persist() error {
	data, err := json.Marshal(s.records)
	if err != nil {
		return fmt.Errorf("failed to serialize history: %w", err)
	}
	if err := s.blob.Set(data); err != nil {
		return fmt.Errorf("failed to persist history: %w", err)
	}
	return nil
}

// Insert prepends a completed run and evicts anything beyond the cap, then
// persists the whole log.
func (s *Store) Insert(record RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append([]RunRecord{record}, s.records...)
	if len(s.records) > MaxEntries {
		evicted := len(s.records) - MaxEntries
		s.records = s.records[:MaxEntries]
		log.Debug().Int("evicted", evicted).Msg("History cap reached, oldest records dropped")
	}

	if err := s.persist(); err != nil {
		return err
	}

	log.Info().
		Str("id", record.ID).
		Str("platform", string(record.Platform)).
		Int("records", len(s.records)).
		Msg("Run committed to history")
	return nil
}

// Recall returns the record with the given id. Recall never mutates the log;
// recalling the same id twice yields the identical record.
func (s *Store) Recall(id string) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id {
			record := s.records[i]
			return &record, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// All returns a copy of the log, newest first.
func (s *Store) All() []RunRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RunRecord(nil), s.records...)
}

// Len returns the current log length.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

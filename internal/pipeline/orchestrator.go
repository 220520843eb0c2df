// Package pipeline sequences the three text-generation stages that turn an
// uploaded media file into a finished content package: analysis, SEO copy,
// thumbnail concepts. The orchestrator owns the phase state machine, the
// current results, and the commit of completed runs to history.
//
// Stages run strictly in order; stage 2 never starts before stage 1's
// response arrives. Each submit issues a new run token, and a stage
// completion carrying a stale token is discarded instead of overwriting the
// newer run's state.
package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fpang/content-forge/internal/gateway"
	"github.com/fpang/content-forge/internal/history"
	"github.com/fpang/content-forge/internal/ingest"
	"github.com/rs/zerolog/log"
)

// Phase is the orchestrator's pipeline state.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseAnalyzing   Phase = "analyzing"
	PhaseOptimizing  Phase = "optimizing"
	PhaseVisualizing Phase = "visualizing"
)

// ErrSuperseded reports a stage completion that arrived after a newer upload
// replaced the run it belonged to. The completion is discarded.
var ErrSuperseded = errors.New("run superseded by a newer upload")

// ErrNoAnalysis reports a platform change requested before any analysis is held.
var ErrNoAnalysis = errors.New("no analysis held; upload media first")

// Gateway is the capability surface the orchestrator drives. Satisfied by
// *gateway.Client; tests substitute stubs.
type Gateway interface {
	AnalyzeMedia(ctx context.Context, encodedPayload, mimeType string) (*gateway.AnalysisResult, error)
	GenerateSEO(ctx context.Context, analysis *gateway.AnalysisResult, platform gateway.Platform) (*gateway.SEOPackage, error)
	GenerateThumbnailConcepts(ctx context.Context, analysis *gateway.AnalysisResult) ([]gateway.ThumbnailConcept, error)
	RenderImage(ctx context.Context, prompt string) (*gateway.RenderedThumbnail, error)
}

// Orchestrator holds the pipeline state machine and current results. Safe
// for concurrent use; the thumbnail forge operation runs independently of
// the main phase state.
type Orchestrator struct {
	gw   Gateway
	hist *history.Store

	mu       sync.Mutex
	phase    Phase
	token    uint64 // run generation counter, bumped on every submit
	payload  *ingest.MediaPayload
	platform gateway.Platform
	analysis *gateway.AnalysisResult
	seo      *gateway.SEOPackage
	concepts []gateway.ThumbnailConcept
	rendered *gateway.RenderedThumbnail
	forging  bool
}

// New creates an orchestrator over the given gateway and history store.
func New(gw Gateway, hist *history.Store) *Orchestrator {
	return &Orchestrator{
		gw:    gw,
		hist:  hist,
		phase: PhaseIdle,
	}
}

// SubmitMedia runs the full pipeline for a new upload. All previously held
// results are cleared first; a new run invalidates everything from prior
// runs. On success, the completed run is committed to history and its record
// returned. Any stage failure resets the phase to idle, commits nothing, and
// is not retried.
func (o *Orchestrator) SubmitMedia(ctx context.Context, payload *ingest.MediaPayload, platform gateway.Platform) (*history.RunRecord, error) {
	o.mu.Lock()
	o.token++
	token := o.token
	if o.payload != nil && o.payload.Preview != nil {
		o.payload.Preview.Release()
	}
	o.payload = payload
	o.platform = platform
	o.analysis = nil
	o.seo = nil
	o.concepts = nil
	o.rendered = nil
	o.phase = PhaseAnalyzing
	o.mu.Unlock()

	log.Info().
		Uint64("run_token", token).
		Str("kind", string(payload.Kind)).
		Str("platform", string(platform)).
		Msg("Pipeline run started")

	// Stage 1: analysis.
	analysis, err := o.gw.AnalyzeMedia(ctx, payload.Encoded, payload.MIMEType)
	if err := o.advance(token, PhaseOptimizing, err, func() { o.analysis = analysis }); err != nil {
		return nil, fmt.Errorf("analysis stage: %w", err)
	}

	// Stage 2: SEO copy, fed by the analysis.
	seo, err := o.gw.GenerateSEO(ctx, analysis, platform)
	if err := o.advance(token, PhaseVisualizing, err, func() { o.seo = seo }); err != nil {
		return nil, fmt.Errorf("seo stage: %w", err)
	}

	// Stage 3: thumbnail concepts, fed by the same analysis.
	concepts, err := o.gw.GenerateThumbnailConcepts(ctx, analysis)
	if err := o.advance(token, PhaseIdle, err, func() { o.concepts = concepts }); err != nil {
		return nil, fmt.Errorf("thumbnail stage: %w", err)
	}

	record := history.RunRecord{
		ID:        newRunID(time.Now()),
		Timestamp: time.Now().UTC(),
		MediaKind: payload.Kind,
		Summary:   analysis.Summary,
		Platform:  platform,
		Analysis:  *analysis,
		SEO:       *seo,
		Concepts:  concepts,
	}
	if err := o.hist.Insert(record); err != nil {
		// The run itself completed; a persistence failure only costs recall.
		log.Warn().Err(err).Str("id", record.ID).Msg("Completed run could not be persisted to history")
	}

	log.Info().Uint64("run_token", token).Str("id", record.ID).Msg("Pipeline run complete")
	return &record, nil
}

// advance applies one stage's outcome under the lock. A stale token means a
// newer upload owns the state now: the completion is discarded. A stage
// error short-circuits the run back to idle.
func (o *Orchestrator) advance(token uint64, next Phase, stageErr error, apply func()) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.token != token {
		log.Debug().
			Uint64("stale_token", token).
			Uint64("current_token", o.token).
			Msg("Discarding stage completion from a superseded run")
		return ErrSuperseded
	}

	if stageErr != nil {
		o.phase = PhaseIdle
		log.Error().Err(stageErr).Uint64("run_token", token).Msg("Pipeline stage failed, run aborted")
		return stageErr
	}

	apply()
	o.phase = next
	return nil
}

// ChangePlatform regenerates the SEO package for a new target platform
// against the analysis already held. Analysis, thumbnail concepts, and
// history are untouched.
func (o *Orchestrator) ChangePlatform(ctx context.Context, platform gateway.Platform) (*gateway.SEOPackage, error) {
	o.mu.Lock()
	if o.analysis == nil {
		o.mu.Unlock()
		return nil, ErrNoAnalysis
	}
	token := o.token
	analysis := o.analysis
	o.phase = PhaseOptimizing
	o.mu.Unlock()

	log.Info().Str("platform", string(platform)).Msg("Regenerating SEO for platform change")

	seo, err := o.gw.GenerateSEO(ctx, analysis, platform)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.token != token {
		return nil, ErrSuperseded
	}
	o.phase = PhaseIdle
	if err != nil {
		log.Error().Err(err).Str("platform", string(platform)).Msg("Platform change failed")
		return nil, fmt.Errorf("seo stage: %w", err)
	}

	o.seo = seo
	o.platform = platform
	return seo, nil
}

// ForgeThumbnail renders one concept's prompt into an actual image. The
// operation is independent of the main pipeline: it has its own loading
// flag, never touches phase or history, and on failure the previously held
// rendered thumbnail is kept.
func (o *Orchestrator) ForgeThumbnail(ctx context.Context, prompt string) (*gateway.RenderedThumbnail, error) {
	o.mu.Lock()
	o.forging = true
	o.mu.Unlock()

	rendered, err := o.gw.RenderImage(ctx, prompt)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.forging = false
	if err != nil {
		log.Error().Err(err).Str("prompt", prompt).Msg("Thumbnail forge failed")
		return nil, err
	}

	o.rendered = rendered
	return rendered, nil
}

// RecallRun restores a past run's results as the current state. The history
// log is not mutated. The token is bumped so any still-in-flight stage
// completions from before the recall are discarded.
func (o *Orchestrator) RecallRun(id string) (*history.RunRecord, error) {
	record, err := o.hist.Recall(id)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.token++
	if o.payload != nil && o.payload.Preview != nil {
		o.payload.Preview.Release()
	}
	o.payload = nil
	o.platform = record.Platform
	analysis := record.Analysis
	o.analysis = &analysis
	seo := record.SEO
	o.seo = &seo
	o.concepts = append([]gateway.ThumbnailConcept(nil), record.Concepts...)
	o.rendered = nil
	o.phase = PhaseIdle

	log.Info().Str("id", id).Msg("Run recalled from history")
	return record, nil
}

// newRunID creates a time-derived run id with a short random suffix for
// uniqueness within the same millisecond.
func newRunID(ts time.Time) string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		log.Fatal().Err(err).Msg("Failed to generate run ID suffix")
	}
	return fmt.Sprintf("run-%d-%s", ts.UnixMilli(), hex.EncodeToString(b))
}

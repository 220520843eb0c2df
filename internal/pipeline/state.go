package pipeline

import (
	"github.com/fpang/content-forge/internal/gateway"
	"github.com/fpang/content-forge/internal/history"
	"github.com/fpang/content-forge/internal/ingest"
)

// Snapshot is a point-in-time copy of everything the presentation layer can
// observe. The presentation layer is a pure observer: it reads snapshots and
// dispatches commands, never reaching into orchestrator state directly.
type Snapshot struct {
	Phase       Phase                      `json:"phase"`
	Forging     bool                       `json:"forging"`
	Platform    gateway.Platform           `json:"platform,omitempty"`
	MediaKind   ingest.Kind                `json:"mediaKind,omitempty"`
	PreviewPath string                     `json:"previewPath,omitempty"`
	MediaMeta   string                     `json:"mediaMeta,omitempty"`
	Analysis    *gateway.AnalysisResult    `json:"analysis,omitempty"`
	SEO         *gateway.SEOPackage        `json:"seo,omitempty"`
	Concepts    []gateway.ThumbnailConcept `json:"concepts,omitempty"`
	Rendered    *gateway.RenderedThumbnail `json:"rendered,omitempty"`
	History     []history.RunRecord        `json:"history"`
}

// Snapshot returns a copy of the current observable state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := Snapshot{
		Phase:    o.phase,
		Forging:  o.forging,
		Platform: o.platform,
		Concepts: append([]gateway.ThumbnailConcept(nil), o.concepts...),
		History:  o.hist.All(),
	}
	if o.payload != nil {
		snap.MediaKind = o.payload.Kind
		if o.payload.Preview != nil {
			snap.PreviewPath = o.payload.Preview.Path
		}
		snap.MediaMeta = o.payload.Meta.Describe()
	}
	if o.analysis != nil {
		analysis := *o.analysis
		snap.Analysis = &analysis
	}
	if o.seo != nil {
		seo := *o.seo
		snap.SEO = &seo
	}
	if o.rendered != nil {
		rendered := *o.rendered
		snap.Rendered = &rendered
	}
	return snap
}

// Phase returns the current pipeline phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// Forging reports whether a thumbnail render is in flight.
func (o *Orchestrator) Forging() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.forging
}

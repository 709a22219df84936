package domain

import (
	"context"
	"time"
)

// LeadSource is one store backend turned into leads.
type LeadSource interface {
	Store() Store
	Search(ctx context.Context, keywords []string, th Thresholds) SearchResult
}

// Artifact is the CSV written by a run.
type Artifact struct {
	RunID       string
	Path        string
	GeneratedAt time.Time
}

// LeadSink consumes the final lead list after the CSV exists.
type LeadSink interface {
	Name() string
	Export(ctx context.Context, leads []Lead, a Artifact) error
}

type LeadRepository interface {
	// Write paths
	UpsertLeads(ctx context.Context, runID string, leads []Lead) error
	LogMisses(ctx context.Context, runID string, ws []Warning) error

	// Read paths
	GetLead(ctx context.Context, store Store, appID string) (Lead, error)
	ListLeads(ctx context.Context, q LeadsQuery) (LeadsPage, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

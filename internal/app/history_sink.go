package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"leadscout/internal/domain"
)

// HistorySink keeps every exported lead and every recovered failure in the
// lead repository, which is what the read API serves.
type HistorySink struct {
	repo  domain.LeadRepository
	cache domain.Cache
}

func NewHistorySink(r domain.LeadRepository, c domain.Cache) *HistorySink {
	return &HistorySink{repo: r, cache: c}
}

func (h *HistorySink) Name() string { return "history" }

func (h *HistorySink) Export(ctx context.Context, leads []domain.Lead, a domain.Artifact) error {
	if err := h.repo.UpsertLeads(ctx, a.RunID, leads); err != nil {
		return err
	}
	// new rows change every list page, so stale pages must go
	if err := InvalidateLists(ctx, h.cache); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("list cache invalidation failed")
	}
	for _, l := range leads {
		if h.cache != nil {
			_ = h.cache.Del(ctx, leadKey(l.SourceStore, l.AppIdentifier))
		}
	}
	return nil
}

func (h *HistorySink) RecordWarnings(ctx context.Context, runID string, ws []domain.Warning) error {
	return h.repo.LogMisses(ctx, runID, ws)
}

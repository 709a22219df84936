package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"leadscout/internal/adapters/observability"
	"leadscout/internal/domain"
	"leadscout/internal/export"
)

type ScoutConfig struct {
	Market           string
	Keywords         []string
	Thresholds       domain.Thresholds
	MaxUpdateAgeDays int
	OutputDir        string
}

// WarningSink is implemented by sinks that also keep the recovered failures.
type WarningSink interface {
	RecordWarnings(ctx context.Context, runID string, ws []domain.Warning) error
}

type Report struct {
	RunID       string
	Leads       []domain.Lead
	Warnings    []domain.Warning
	Stats       PipelineStats
	CSVPath     string
	GeneratedAt time.Time
}

type ScoutService struct {
	cfg      ScoutConfig
	sources  []domain.LeadSource
	sinks    []domain.LeadSink
	pipeline *Pipeline
	now      func() time.Time
}

// NewScoutService wires the run. Source order is concatenation order, so it
// decides which copy of a duplicate survives.
func NewScoutService(cfg ScoutConfig, sources []domain.LeadSource, sinks []domain.LeadSink) *ScoutService {
	return &ScoutService{
		cfg:      cfg,
		sources:  sources,
		sinks:    sinks,
		pipeline: NewPipeline(time.Now),
		now:      time.Now,
	}
}

// WithClock replaces the wall clock used for freshness and file names.
func (s *ScoutService) WithClock(now func() time.Time) *ScoutService {
	s.now = now
	s.pipeline = NewPipeline(now)
	return s
}

// Run searches every source, aggregates, writes the CSV and feeds the sinks.
// Only a failure to produce the CSV is returned.
func (s *ScoutService) Run(ctx context.Context) (Report, error) {
	rep := Report{RunID: uuid.NewString()}
	logger := log.Ctx(ctx).With().Str("run_id", rep.RunID).Logger()
	ctx = logger.WithContext(ctx)

	if len(s.cfg.Keywords) == 0 {
		logger.Warn().Msg("no keywords configured, nothing to search")
	}
	logger.Info().
		Strs("keywords", s.cfg.Keywords).
		Float64("min_rating", s.cfg.Thresholds.MinRating).
		Int64("min_reviews", s.cfg.Thresholds.MinReviews).
		Int("max_update_age_days", s.cfg.MaxUpdateAgeDays).
		Msg("lead search starting")

	combined, warnings := s.collect(ctx)
	rep.Warnings = warnings

	leads, st := s.pipeline.Aggregate(combined, s.cfg.MaxUpdateAgeDays)
	rep.Leads, rep.Stats = leads, st
	observability.PipelineDropped.WithLabelValues("stale").Add(float64(st.Stale))
	observability.PipelineDropped.WithLabelValues("duplicate").Add(float64(st.Duplicates))
	observability.LeadsExported.Set(float64(st.Output))
	logger.Info().
		Int("input", st.Input).
		Int("stale", st.Stale).
		Int("duplicates", st.Duplicates).
		Int("leads", st.Output).
		Int("warnings", len(warnings)).
		Msg("leads aggregated")

	rep.GeneratedAt = s.now()
	path, err := export.WriteFile(s.cfg.OutputDir, s.cfg.Market, rep.GeneratedAt, leads)
	observability.ObserveSink("csv", err)
	if err != nil {
		return rep, fmt.Errorf("export csv: %w", err)
	}
	rep.CSVPath = path
	logger.Info().Str("path", path).Msg("csv written")

	s.export(ctx, rep)
	logger.Info().Msg("done")
	return rep, nil
}

// collect runs all sources at once and waits for every one of them. Sources
// report failures as warnings, so nothing here cancels a sibling.
func (s *ScoutService) collect(ctx context.Context) ([]domain.Lead, []domain.Warning) {
	results := make([]domain.SearchResult, len(s.sources))

	var g errgroup.Group
	for i, src := range s.sources {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Ctx(ctx).Error().Str("store", string(src.Store())).Interface("panic", r).Msg("source crashed")
					results[i].Warnings = append(results[i].Warnings, domain.Warning{
						Store: src.Store(), Stage: domain.StageSearch, Message: fmt.Sprintf("panic: %v", r),
					})
				}
			}()
			results[i] = src.Search(ctx, s.cfg.Keywords, s.cfg.Thresholds)
			return nil
		})
	}
	_ = g.Wait()

	var leads []domain.Lead
	var warnings []domain.Warning
	for i, r := range results {
		log.Ctx(ctx).Info().
			Str("store", string(s.sources[i].Store())).
			Int("leads", len(r.Leads)).
			Int("warnings", len(r.Warnings)).
			Msg("source finished")
		leads = append(leads, r.Leads...)
		warnings = append(warnings, r.Warnings...)
	}
	return leads, warnings
}

// export hands the list to every sink. Sink errors are logged and counted only;
// the CSV already exists at this point.
func (s *ScoutService) export(ctx context.Context, rep Report) {
	art := domain.Artifact{RunID: rep.RunID, Path: rep.CSVPath, GeneratedAt: rep.GeneratedAt}
	for _, sink := range s.sinks {
		err := sink.Export(ctx, rep.Leads, art)
		if ws, ok := sink.(WarningSink); ok && err == nil && len(rep.Warnings) > 0 {
			err = ws.RecordWarnings(ctx, rep.RunID, rep.Warnings)
		}
		observability.ObserveSink(sink.Name(), err)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Str("sink", sink.Name()).Msg("sink failed")
			continue
		}
		log.Ctx(ctx).Info().Str("sink", sink.Name()).Int("leads", len(rep.Leads)).Msg("sink done")
	}
}

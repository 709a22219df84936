package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"leadscout/internal/adapters/itunes"
	"leadscout/internal/adapters/observability"
	"leadscout/internal/adapters/playstore"
	"leadscout/internal/domain"
)

type ITunesSearcher interface {
	Search(ctx context.Context, term, country string, limit int) ([]itunes.Result, error)
}

type PlayClient interface {
	Search(ctx context.Context, term, country, lang string, num int) ([]playstore.SearchHit, error)
	App(ctx context.Context, appID, country, lang string) (playstore.Detail, error)
}

/********** store A **********/

// IOSSource turns iTunes search hits into leads. The search payload already
// carries everything a lead needs, so there is no per-app call.
type IOSSource struct {
	client ITunesSearcher
	market string
	limit  int
	now    func() time.Time
}

func NewIOSSource(c ITunesSearcher, market string, limit int) *IOSSource {
	if limit <= 0 {
		limit = 200
	}
	return &IOSSource{client: c, market: market, limit: limit, now: time.Now}
}

func (s *IOSSource) Store() domain.Store { return domain.StoreIOS }

func (s *IOSSource) Search(ctx context.Context, keywords []string, th domain.Thresholds) domain.SearchResult {
	logger := log.Ctx(ctx).With().Str("store", string(domain.StoreIOS)).Logger()
	var out domain.SearchResult

	for _, kw := range keywords {
		if err := ctx.Err(); err != nil {
			out.Warnings = append(out.Warnings, s.warn(domain.StageSearch, kw, "", err))
			break
		}
		logger.Info().Str("keyword", kw).Msg("searching")

		results, err := s.client.Search(ctx, kw, s.market, s.limit)
		if err != nil {
			logger.Warn().Err(err).Str("keyword", kw).Msg("search failed, skipping keyword")
			out.Warnings = append(out.Warnings, s.warn(domain.StageSearch, kw, "", err))
			continue
		}

		for _, r := range results {
			if !th.Passes(iosRating(r)) {
				continue
			}
			out.Leads = append(out.Leads, mapITunesResult(r, s.market, s.now()))
		}
	}

	observability.LeadsCollected.WithLabelValues(string(domain.StoreIOS)).Add(float64(len(out.Leads)))
	return out
}

func (s *IOSSource) warn(stage, kw, appID string, err error) domain.Warning {
	observability.SourceWarnings.WithLabelValues(string(domain.StoreIOS), stage).Inc()
	return domain.Warning{Store: domain.StoreIOS, Stage: stage, Keyword: kw, AppID: appID, Message: err.Error()}
}

/********** store B **********/

// AndroidSource searches, then fetches each surviving hit's detail one at a
// time. The client enforces the pause between calls; cached details skip it.
type AndroidSource struct {
	client   PlayClient
	cache    domain.Cache
	cacheTTL time.Duration
	market   string
	lang     string
	num      int
	now      func() time.Time
}

func NewAndroidSource(c PlayClient, cache domain.Cache, cacheTTL time.Duration, market, lang string, num int) *AndroidSource {
	if num <= 0 {
		num = 100
	}
	return &AndroidSource{client: c, cache: cache, cacheTTL: cacheTTL, market: market, lang: lang, num: num, now: time.Now}
}

func (s *AndroidSource) Store() domain.Store { return domain.StoreAndroid }

func (s *AndroidSource) Search(ctx context.Context, keywords []string, th domain.Thresholds) domain.SearchResult {
	logger := log.Ctx(ctx).With().Str("store", string(domain.StoreAndroid)).Logger()
	var out domain.SearchResult

	for _, kw := range keywords {
		if err := ctx.Err(); err != nil {
			out.Warnings = append(out.Warnings, s.warn(domain.StageSearch, kw, "", err))
			break
		}
		logger.Info().Str("keyword", kw).Msg("searching")

		hits, err := s.client.Search(ctx, kw, s.market, s.lang, s.num)
		if err != nil {
			logger.Warn().Err(err).Str("keyword", kw).Msg("search failed, skipping keyword")
			out.Warnings = append(out.Warnings, s.warn(domain.StageSearch, kw, "", err))
			continue
		}

		for _, hit := range hits {
			// the search score is enough to rule an app out; the count needs the detail
			if hit.Score != nil && *hit.Score >= th.MinRating {
				continue
			}
			d, err := s.detail(ctx, hit.AppID)
			if err != nil {
				logger.Warn().Err(err).Str("keyword", kw).Str("app_id", hit.AppID).Msg("detail failed, skipping app")
				out.Warnings = append(out.Warnings, s.warn(domain.StageDetail, kw, hit.AppID, err))
				continue
			}
			if !th.Passes(playRating(d)) {
				continue
			}
			out.Leads = append(out.Leads, mapPlayDetail(d, s.market, s.lang, s.now()))
		}
	}

	observability.LeadsCollected.WithLabelValues(string(domain.StoreAndroid)).Add(float64(len(out.Leads)))
	return out
}

func (s *AndroidSource) detail(ctx context.Context, appID string) (playstore.Detail, error) {
	key := fmt.Sprintf("play:app:%s:%s:%s", s.market, s.lang, appID)
	if s.cache != nil {
		var d playstore.Detail
		if ok, err := s.cache.Get(ctx, key, &d); err == nil && ok {
			return d, nil
		}
	}

	d, err := s.client.App(ctx, appID, s.market, s.lang)
	if err != nil {
		return playstore.Detail{}, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, d, int(s.cacheTTL.Seconds())); err != nil {
			log.Ctx(ctx).Debug().Err(err).Str("key", key).Msg("detail cache set failed")
		}
	}
	return d, nil
}

func (s *AndroidSource) warn(stage, kw, appID string, err error) domain.Warning {
	observability.SourceWarnings.WithLabelValues(string(domain.StoreAndroid), stage).Inc()
	return domain.Warning{Store: domain.StoreAndroid, Stage: stage, Keyword: kw, AppID: appID, Message: err.Error()}
}

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"leadscout/internal/domain"
)

type LeadQueryService struct {
	repo     domain.LeadRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewLeadQueryService(r domain.LeadRepository, c domain.Cache, ttl time.Duration) *LeadQueryService {
	return &LeadQueryService{repo: r, cache: c, cacheTTL: ttl}
}

func leadKey(store domain.Store, appID string) string {
	return fmt.Sprintf("lead:%s:%s", store, appID)
}

// listGenKey holds the current list generation. Every list page key embeds
// it, so replacing it retires all pages at once, whatever their limit.
const listGenKey = "leads:gen"

func listGeneration(ctx context.Context, c domain.Cache) string {
	var gen string
	if ok, err := c.Get(ctx, listGenKey, &gen); err != nil || !ok || gen == "" {
		return "0"
	}
	return gen
}

func listKey(gen string, q domain.LeadsQuery) string {
	store := "all"
	if q.Store != nil {
		store = string(*q.Store)
	}
	return fmt.Sprintf("leads:%s:%s:%d", gen, store, q.Limit)
}

func (s *LeadQueryService) GetLead(ctx context.Context, store domain.Store, appID string) (domain.Lead, error) {
	key := leadKey(store, appID)
	var l domain.Lead
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &l); ok {
			return l, nil
		}
	}
	l, err := s.repo.GetLead(ctx, store, appID)
	if err != nil {
		return domain.Lead{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, l, int(s.cacheTTL.Seconds()))
	}
	return l, nil
}

func (s *LeadQueryService) ListLeads(ctx context.Context, q domain.LeadsQuery) (domain.LeadsPage, error) {
	var key string
	var out domain.LeadsPage
	if s.cache != nil {
		key = listKey(listGeneration(ctx, s.cache), q)
		if ok, _ := s.cache.Get(ctx, key, &out); ok {
			return out, nil
		}
	}

	page, err := s.repo.ListLeads(ctx, q)
	if err != nil {
		return domain.LeadsPage{}, err
	}

	// copy so callers can't mutate what sits in the cache
	cp := domain.LeadsPage{}
	if n := len(page.Items); n > 0 {
		cp.Items = make([]domain.Lead, n)
		copy(cp.Items, page.Items)
	}

	if s.cache != nil {
		if b, _ := json.Marshal(cp); len(b) < 1_000_000 {
			_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
		}
	}
	return cp, nil
}

// InvalidateLists starts a new list generation. Pages of the old one are
// never read again and age out with their TTL.
func InvalidateLists(ctx context.Context, c domain.Cache) error {
	if c == nil {
		return nil
	}
	// ttl 0: the generation itself must not expire before its pages
	return c.Set(ctx, listGenKey, uuid.NewString(), 0)
}

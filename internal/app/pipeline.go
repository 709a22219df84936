package app

import (
	"sort"
	"time"

	"leadscout/internal/domain"
)

type PipelineStats struct {
	Input      int `json:"input"`
	Stale      int `json:"stale"`
	Duplicates int `json:"duplicates"`
	Output     int `json:"output"`
}

// Pipeline filters, dedups and ranks the combined source output.
type Pipeline struct {
	now func() time.Time
}

func NewPipeline(now func() time.Time) *Pipeline {
	if now == nil {
		now = time.Now
	}
	return &Pipeline{now: now}
}

// Aggregate runs the pipeline with the wall clock.
func Aggregate(leads []domain.Lead, maxUpdateAgeDays int) []domain.Lead {
	out, _ := NewPipeline(nil).Aggregate(leads, maxUpdateAgeDays)
	return out
}

// Aggregate keeps fresh leads, drops later copies of a (store, id) pair and
// sorts by rating ascending, ratings count descending. The input is not
// modified.
func (p *Pipeline) Aggregate(leads []domain.Lead, maxUpdateAgeDays int) ([]domain.Lead, PipelineStats) {
	now := p.now()
	st := PipelineStats{Input: len(leads)}

	fresh := make([]domain.Lead, 0, len(leads))
	for _, l := range leads {
		if !IsFresh(l.LastUpdate, maxUpdateAgeDays, now) {
			st.Stale++
			continue
		}
		fresh = append(fresh, l)
	}

	out := dedupe(fresh)
	st.Duplicates = len(fresh) - len(out)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating < out[j].Rating
		}
		return out[i].RatingsCount > out[j].RatingsCount
	})

	st.Output = len(out)
	return out, st
}

// IsFresh is false for empty or unreadable dates; otherwise it compares whole
// days elapsed (truncated) against maxDays.
func IsFresh(lastUpdate string, maxDays int, now time.Time) bool {
	t, ok := ParseTimestamp(lastUpdate)
	if !ok {
		return false
	}
	days := int64(now.Sub(t) / (24 * time.Hour))
	return days <= int64(maxDays)
}

// dedupe keeps the first lead per Key.
func dedupe(in []domain.Lead) []domain.Lead {
	seen := make(map[string]struct{}, len(in))
	out := make([]domain.Lead, 0, len(in))
	for _, l := range in {
		k := l.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, l)
	}
	return out
}

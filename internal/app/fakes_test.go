package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"leadscout/internal/adapters/itunes"
	"leadscout/internal/adapters/playstore"
)

// ---- fakes ----

type fakeITunes struct {
	byTerm map[string][]itunes.Result
	fail   map[string]error
	terms  []string
}

func (f *fakeITunes) Search(ctx context.Context, term, country string, limit int) ([]itunes.Result, error) {
	f.terms = append(f.terms, term)
	if err := f.fail[term]; err != nil {
		return nil, err
	}
	return f.byTerm[term], nil
}

type fakePlay struct {
	hits      map[string][]playstore.SearchHit
	details   map[string]playstore.Detail
	failApp   map[string]error
	appCalls  []string
	searchErr map[string]error
}

func (f *fakePlay) Search(ctx context.Context, term, country, lang string, num int) ([]playstore.SearchHit, error) {
	if err := f.searchErr[term]; err != nil {
		return nil, err
	}
	return f.hits[term], nil
}

func (f *fakePlay) App(ctx context.Context, appID, country, lang string) (playstore.Detail, error) {
	f.appCalls = append(f.appCalls, appID)
	if err := f.failApp[appID]; err != nil {
		return playstore.Detail{}, err
	}
	d, ok := f.details[appID]
	if !ok {
		return playstore.Detail{}, playstore.ErrNotFound
	}
	return d, nil
}

// fakeCache round-trips through JSON like the redis adapter does.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

var errBoom = errors.New("boom")

func pf(f float64) *float64 { return &f }
func pi(i int64) *int64     { return &i }

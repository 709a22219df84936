//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	httpserver "leadscout/internal/adapters/http_server"
	redisad "leadscout/internal/adapters/redis"
	"leadscout/internal/app"
	"leadscout/internal/domain"
	mysqlrepo "leadscout/internal/storage/mysql"
)

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = filepath.Join("..", "..", "migrations")
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// a stand-in for a store backend so the run is deterministic
type staticSource struct {
	store domain.Store
	leads []domain.Lead
}

func (s staticSource) Store() domain.Store { return s.store }
func (s staticSource) Search(ctx context.Context, kw []string, th domain.Thresholds) domain.SearchResult {
	return domain.SearchResult{
		Leads:    s.leads,
		Warnings: []domain.Warning{{Store: s.store, Stage: domain.StageSearch, Keyword: "delivery", Message: "503"}},
	}
}

func TestHTTP_EndToEnd_ScoutThenRead(t *testing.T) {
	// Start isolated MySQL container
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env:        []string{"MYSQL_ROOT_PASSWORD=root", "MYSQL_DATABASE=leadscout"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/leadscout?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))
	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	applyMigrations(t, db)

	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	repo := mysqlrepo.New(db)
	ctx := context.Background()
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	// Run the scout with the history sink
	src := staticSource{store: domain.StoreIOS, leads: []domain.Lead{
		{SourceStore: domain.StoreIOS, AppIdentifier: "com.e2e", AppName: "Café E2E", Rating: 2.4, RatingsCount: 321,
			LastUpdate: "2026-10-01T00:00:00.000Z", Country: "DE"},
	}}
	svc := app.NewScoutService(app.ScoutConfig{
		Market:           "de",
		Keywords:         []string{"delivery"},
		Thresholds:       domain.Thresholds{MinRating: 3.5, MinReviews: 100},
		MaxUpdateAgeDays: 365,
		OutputDir:        t.TempDir(),
	}, []domain.LeadSource{src}, []domain.LeadSink{app.NewHistorySink(repo, cache)}).
		WithClock(func() time.Time { return now })
	if _, err := svc.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}

	var misses int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM search_misses").Scan(&misses); err != nil || misses != 1 {
		t.Fatalf("misses: %d %v", misses, err)
	}

	// Serve it
	srv := httpserver.New([]string{"*"})
	srv.MountHandlers(&httpserver.Handlers{Q: app.NewLeadQueryService(repo, cache, time.Minute)})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/v1/leads/ios/com.e2e")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	var body domain.Lead
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.AppName != "Café E2E" || body.RatingsCount != 321 || body.DateFound != "" {
		t.Fatalf("unexpected body: %+v", body)
	}

	res2, err := http.Get(ts.URL + "/v1/leads?store=ios")
	if err != nil {
		t.Fatalf("GET list: %v", err)
	}
	defer res2.Body.Close()
	var page domain.LeadsPage
	if err := json.NewDecoder(res2.Body).Decode(&page); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].AppIdentifier != "com.e2e" {
		t.Fatalf("unexpected page: %+v", page.Items)
	}
}

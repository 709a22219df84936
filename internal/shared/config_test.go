package shared_test

import (
	"testing"
	"time"

	"leadscout/internal/shared"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"KEYWORDS", "MIN_RATING", "MIN_REVIEWS", "MAX_UPDATE_AGE_DAYS", "MARKET", "MARKET_LANG", "EMAIL_TO", "PLAY_DETAIL_DELAY_MS", "GOOGLE_SHEETS_ENABLED", "GOOGLE_SHEETS_TAB_NAME"} {
		t.Setenv(k, "")
	}
	c := shared.Load()

	if c.MinRating != 3.5 || c.MinReviews != 100 || c.MaxUpdateAgeDays != 365 {
		t.Fatalf("unexpected thresholds: %+v", c)
	}
	if c.Market != "de" || c.Lang != "de" {
		t.Fatalf("unexpected market %q / %q", c.Market, c.Lang)
	}
	if c.PlayDetailDelay != 200*time.Millisecond {
		t.Fatalf("detail delay: %v", c.PlayDetailDelay)
	}
	if c.Sheets.TabName != "leads" || c.Sheets.Enabled {
		t.Fatalf("unexpected sheets config: %+v", c.Sheets)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("KEYWORDS", " fitness , ,shop ")
	t.Setenv("MIN_RATING", "4.2")
	t.Setenv("MIN_REVIEWS", "abc") // falls back
	t.Setenv("MARKET", "AT")
	t.Setenv("EMAIL_ENABLED", "1")
	t.Setenv("EMAIL_TO", "a@example.com,b@example.com")

	c := shared.Load()

	if len(c.Keywords) != 2 || c.Keywords[0] != "fitness" || c.Keywords[1] != "shop" {
		t.Fatalf("keywords: %#v", c.Keywords)
	}
	if c.MinRating != 4.2 || c.MinReviews != 100 {
		t.Fatalf("thresholds: %v %v", c.MinRating, c.MinReviews)
	}
	if c.Market != "at" || c.Email.Subject != "App leads AT" {
		t.Fatalf("market: %q", c.Market)
	}
	if !c.Email.Enabled || len(c.Email.To) != 2 {
		t.Fatalf("email: %+v", c.Email)
	}
}

package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"leadscout/internal/adapters/itunes"
	"leadscout/internal/adapters/playstore"
	"leadscout/internal/domain"
)

/********** store A: iTunes search hit **********/

func iosRating(r itunes.Result) (float64, int64) {
	return derefF(r.AverageUserRating), derefI(r.UserRatingCount)
}

func mapITunesResult(r itunes.Result, market string, now time.Time) domain.Lead {
	rating, count := iosRating(r)
	return domain.Lead{
		SourceStore:   domain.StoreIOS,
		AppName:       r.TrackName,
		AppIdentifier: r.BundleID,
		Developer:     r.SellerName,
		Rating:        rating,
		RatingsCount:  count,
		LastUpdate:    NormalizeTimestamp(iosTimestamp(r.CurrentVersionReleaseDate)),
		Country:       strings.ToUpper(market),
		Category:      r.PrimaryGenreName,
		AppURL:        r.TrackViewURL,
		ReviewsURL:    fmt.Sprintf("https://apps.apple.com/%s/app/id%d?see-all=reviews", strings.ToLower(market), r.TrackID),
		Website:       r.SellerURL,
		DateFound:     formatISO(now),
	}
}

// iosTimestamp: the API sends RFC 3339 almost always; anything else goes
// through the string rules.
func iosTimestamp(s string) domain.RawTimestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Absent{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return domain.NativeDate{Time: t}
	}
	return domain.DateString(s)
}

/********** store B: play detail payload **********/

func playRating(d playstore.Detail) (float64, int64) {
	return derefF(d.Score), derefI(d.Ratings)
}

func mapPlayDetail(d playstore.Detail, market, lang string, now time.Time) domain.Lead {
	rating, count := playRating(d)
	appURL := d.URL
	if appURL == "" {
		appURL = "https://play.google.com/store/apps/details?id=" + d.AppID
	}
	return domain.Lead{
		SourceStore:   domain.StoreAndroid,
		AppName:       d.Title,
		AppIdentifier: d.AppID,
		Developer:     d.Developer,
		Rating:        rating,
		RatingsCount:  count,
		LastUpdate:    NormalizeTimestamp(playTimestamp(d)),
		Country:       strings.ToUpper(market),
		Category:      d.Genre,
		AppURL:        appURL,
		ReviewsURL: fmt.Sprintf("https://play.google.com/store/apps/details?id=%s&hl=%s&gl=%s&showAllReviews=true",
			d.AppID, strings.ToLower(lang), strings.ToUpper(market)),
		Website:      d.DeveloperWebsite,
		SupportEmail: d.DeveloperEmail,
		DateFound:    formatISO(now),
	}
}

// playTimestamp prefers "updated" and falls back to "updatedISO".
func playTimestamp(d playstore.Detail) domain.RawTimestamp {
	for _, raw := range []json.RawMessage{d.Updated, d.UpdatedISO} {
		if ts, ok := rawJSONTimestamp(raw); ok {
			return ts
		}
	}
	return domain.Absent{}
}

// rawJSONTimestamp reports ok=false for missing or null values so the caller
// can try the next field.
func rawJSONTimestamp(raw json.RawMessage) (domain.RawTimestamp, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return domain.DateString(""), true
		}
		return domain.DateString(s), true
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			// objects, arrays, booleans: present but meaningless
			return domain.Absent{}, true
		}
		if ms, err := n.Int64(); err == nil {
			return domain.EpochMillis(ms), true
		}
		if f, err := n.Float64(); err == nil {
			return domain.EpochMillis(int64(f)), true
		}
		return domain.Absent{}, true
	}
}

/********** tiny helpers **********/

func derefF(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func derefI(p *int64) int64 {
	if p == nil || *p < 0 {
		return 0
	}
	return *p
}

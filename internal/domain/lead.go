package domain

import "errors"

var ErrNotFound = errors.New("not found")

type Store string

const (
	StoreIOS     Store = "ios"
	StoreAndroid Store = "android"
)

func (s Store) Valid() bool { return s == StoreIOS || s == StoreAndroid }

// Lead is one discovered app. Values are built once by a source and never
// modified afterwards.
type Lead struct {
	SourceStore   Store   `json:"source_store"`
	AppName       string  `json:"app_name"`
	AppIdentifier string  `json:"bundle_id"`
	Developer     string  `json:"developer"`
	Rating        float64 `json:"rating"`
	RatingsCount  int64   `json:"ratings_count"`
	LastUpdate    string  `json:"last_update"` // ISO-8601 or "" when unknown
	Country       string  `json:"country"`
	Category      string  `json:"category"`
	AppURL        string  `json:"app_url"`
	ReviewsURL    string  `json:"reviews_url"`
	Website       string  `json:"website"`
	SupportEmail  string  `json:"support_email"`

	// filled in by people working the lead list, never by the scout
	LinkedinGuess string `json:"linkedin_guess"`
	ContactStatus string `json:"contact_status"`
	LoomStatus    string `json:"loom_status"`
	OutreachOwner string `json:"outreach_owner"`

	DateFound string `json:"date_found"`
}

// Key is the dedup identity: store plus store-scoped identifier.
func (l Lead) Key() string { return string(l.SourceStore) + ":" + l.AppIdentifier }

// Thresholds select the apps worth contacting.
type Thresholds struct {
	MinRating  float64
	MinReviews int64
}

// Passes reports rating < MinRating && ratingsCount >= MinReviews.
func (t Thresholds) Passes(rating float64, ratingsCount int64) bool {
	return rating < t.MinRating && ratingsCount >= t.MinReviews
}

// Warning records a failure a source recovered from.
type Warning struct {
	Store   Store  `json:"store"`
	Stage   string `json:"stage"` // search | detail
	Keyword string `json:"keyword,omitempty"`
	AppID   string `json:"app_id,omitempty"`
	Message string `json:"message"`
}

const (
	StageSearch = "search"
	StageDetail = "detail"
)

type SearchResult struct {
	Leads    []Lead
	Warnings []Warning
}

// LeadsQuery filters the persisted lead history.
type LeadsQuery struct {
	Store *Store
	Limit int
}

type LeadsPage struct {
	Items []Lead `json:"items"`
}

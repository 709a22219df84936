package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var DefaultKeywords = []string{"shop", "fitness", "community", "booking", "delivery"}

type Config struct {
	AppEnv string
	Market string // lower-case market code, e.g. "de"
	Lang   string

	Keywords         []string
	MinRating        float64
	MinReviews       int64
	MaxUpdateAgeDays int
	OutputDir        string

	ITunesBase      string
	ITunesLimit     int
	ITunesRPS       int
	PlayBase        string
	PlaySearchLimit int
	PlayDetailDelay time.Duration
	HTTPTimeout     time.Duration

	HTTPAddr    string
	CORSOrigins []string
	MetricsAddr string
	PushGateway string

	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	CacheTTL    time.Duration
	DetailTTL   time.Duration
	RabbitMQURL string

	Sheets SheetsConfig
	Email  EmailConfig
}

type SheetsConfig struct {
	Enabled         bool
	SpreadsheetID   string
	TabName         string
	CredentialsPath string
}

type EmailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       []string
	Subject  string
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not a number, using default")
		}
		return def
	}
	market := strings.ToLower(env("MARKET", "de"))
	c := Config{
		AppEnv: env("APP_ENV", "prod"),
		Market: market,
		Lang:   strings.ToLower(env("MARKET_LANG", market)),

		Keywords:         list("KEYWORDS", DefaultKeywords),
		MinRating:        atof("MIN_RATING", 3.5),
		MinReviews:       int64(atoi("MIN_REVIEWS", 100)),
		MaxUpdateAgeDays: atoi("MAX_UPDATE_AGE_DAYS", 365),
		OutputDir:        env("OUTPUT_DIR", "./out"),

		ITunesBase:      env("ITUNES_BASE_URL", "https://itunes.apple.com"),
		ITunesLimit:     atoi("ITUNES_LIMIT", 200),
		ITunesRPS:       atoi("ITUNES_RPS", 5),
		PlayBase:        env("PLAY_BASE_URL", "http://localhost:3000"),
		PlaySearchLimit: atoi("PLAY_SEARCH_LIMIT", 100),
		PlayDetailDelay: time.Duration(atoi("PLAY_DETAIL_DELAY_MS", 200)) * time.Millisecond,
		HTTPTimeout:     time.Duration(atoi("HTTP_TIMEOUT_SECONDS", 20)) * time.Second,

		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		CORSOrigins: list("CORS_ORIGINS", []string{"*"}),
		MetricsAddr: env("METRICS_ADDR", ""),
		PushGateway: env("PUSHGATEWAY_URL", ""),

		MySQLDSN:    env("MYSQL_DSN", ""),
		RedisAddr:   env("REDIS_ADDR", ""),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		DetailTTL:   time.Duration(atoi("DETAIL_CACHE_TTL_SECONDS", 6*3600)) * time.Second,
		RabbitMQURL: env("RABBITMQ_URL", ""),

		Sheets: SheetsConfig{
			Enabled:         abool("GOOGLE_SHEETS_ENABLED"),
			SpreadsheetID:   env("GOOGLE_SHEETS_SPREADSHEET_ID", ""),
			TabName:         env("GOOGLE_SHEETS_TAB_NAME", "leads"),
			CredentialsPath: env("GOOGLE_APPLICATION_CREDENTIALS", ""),
		},
		Email: EmailConfig{
			Enabled:  abool("EMAIL_ENABLED"),
			Host:     env("SMTP_HOST", ""),
			Port:     atoi("SMTP_PORT", 587),
			User:     env("SMTP_USER", ""),
			Password: env("SMTP_PASSWORD", ""),
			From:     env("EMAIL_FROM", ""),
			To:       list("EMAIL_TO", nil),
			Subject:  env("EMAIL_SUBJECT", "App leads "+strings.ToUpper(market)),
		},
	}
	if len(c.Keywords) == 0 {
		log.Warn().Msg("KEYWORDS is empty")
	}
	return c
}

func env(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func abool(k string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(k)))
	return v == "true" || v == "1"
}

// list splits a comma-separated value, dropping blanks. An unset key yields def;
// a set-but-blank key yields an empty list.
func list(k string, def []string) []string {
	v, ok := os.LookupEnv(k)
	if !ok {
		return append([]string(nil), def...)
	}
	out := []string{}
	for _, p := range strings.Split(v, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

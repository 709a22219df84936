package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"leadscout/internal/adapters/itunes"
	"leadscout/internal/adapters/mail"
	"leadscout/internal/adapters/observability"
	"leadscout/internal/adapters/playstore"
	"leadscout/internal/adapters/queue"
	redisad "leadscout/internal/adapters/redis"
	"leadscout/internal/adapters/sheets"
	"leadscout/internal/app"
	"leadscout/internal/domain"
	"leadscout/internal/shared"
	mysqlrepo "leadscout/internal/storage/mysql"
)

func main() {
	// .env is optional; real env wins
	_ = godotenv.Load()
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.Logger.WithContext(ctx)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	code := run(ctx, cfg)

	if err := observability.Push(cfg.PushGateway, "leadscout", reg); err != nil {
		log.Warn().Err(err).Msg("metrics push failed")
	}
	os.Exit(code)
}

func run(ctx context.Context, cfg shared.Config) int {
	log.Info().
		Str("market", cfg.Market).
		Strs("keywords", cfg.Keywords).
		Str("itunes", cfg.ITunesBase).
		Str("play", cfg.PlayBase).
		Msg("scout starting")

	itc, err := itunes.New(cfg.ITunesBase, cfg.ITunesRPS, cfg.HTTPTimeout)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize iTunes client")
		return 1
	}
	pc, err := playstore.New(playstore.Options{BaseURL: cfg.PlayBase, Delay: cfg.PlayDetailDelay, Timeout: cfg.HTTPTimeout})
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize play client")
		return 1
	}

	// domain.Cache stays a nil interface when redis is off
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, running without cache")
		} else {
			cache = rc
		}
	}

	sources := []domain.LeadSource{
		app.NewIOSSource(itc, cfg.Market, cfg.ITunesLimit),
		app.NewAndroidSource(pc, cache, cfg.DetailTTL, cfg.Market, cfg.Lang, cfg.PlaySearchLimit),
	}

	var sinks []domain.LeadSink
	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err == nil {
			err = db.PingContext(ctx)
		}
		if err != nil {
			log.Warn().Err(err).Msg("mysql unavailable, history disabled")
		} else {
			defer db.Close()
			sinks = append(sinks, app.NewHistorySink(mysqlrepo.New(db), cache))
		}
	}
	if cfg.RabbitMQURL != "" {
		mq, err := queue.Dial(cfg.RabbitMQURL)
		if err != nil {
			log.Warn().Err(err).Msg("rabbitmq unavailable, queue disabled")
		} else {
			defer mq.Close()
			sinks = append(sinks, queue.NewProducer(mq.Ch))
		}
	}
	if cfg.Sheets.Enabled {
		api, err := sheets.NewGoogleAppender(ctx, cfg.Sheets.CredentialsPath)
		if err != nil {
			log.Warn().Err(err).Msg("google sheets unavailable")
		} else {
			sinks = append(sinks, sheets.NewSyncer(sheets.Config(cfg.Sheets), api))
		}
	} else {
		log.Info().Msg("google sheets disabled")
	}
	sinks = append(sinks, mail.NewSender(mail.Config(cfg.Email)))

	svc := app.NewScoutService(app.ScoutConfig{
		Market:           cfg.Market,
		Keywords:         cfg.Keywords,
		Thresholds:       domain.Thresholds{MinRating: cfg.MinRating, MinReviews: cfg.MinReviews},
		MaxUpdateAgeDays: cfg.MaxUpdateAgeDays,
		OutputDir:        cfg.OutputDir,
	}, sources, sinks)

	rep, err := svc.Run(ctx)
	if err != nil {
		log.Error().Err(err).Str("run_id", rep.RunID).Msg("scout failed")
		return 1
	}
	log.Info().
		Str("run_id", rep.RunID).
		Int("leads", len(rep.Leads)).
		Int("warnings", len(rep.Warnings)).
		Str("csv", rep.CSVPath).
		Msg("scout completed")
	return 0
}

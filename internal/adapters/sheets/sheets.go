// Package sheets appends the lead list to a Google spreadsheet tab.
package sheets

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	gsheets "google.golang.org/api/sheets/v4"
	"google.golang.org/api/option"

	"leadscout/internal/domain"
	"leadscout/internal/export"
)

// Appender writes rows below the last filled row of a range.
type Appender interface {
	Append(ctx context.Context, spreadsheetID, rng string, rows [][]any) error
}

type Config struct {
	Enabled         bool
	SpreadsheetID   string
	TabName         string
	CredentialsPath string
}

// Syncer is the lead sink. It appends; it never rewrites earlier rows.
type Syncer struct {
	cfg Config
	api Appender
}

func NewSyncer(cfg Config, api Appender) *Syncer {
	if cfg.TabName == "" {
		cfg.TabName = "leads"
	}
	return &Syncer{cfg: cfg, api: api}
}

func (s *Syncer) Name() string { return "sheets" }

func (s *Syncer) Export(ctx context.Context, leads []domain.Lead, _ domain.Artifact) error {
	if !s.cfg.Enabled {
		log.Ctx(ctx).Info().Msg("google sheets disabled")
		return nil
	}
	if s.cfg.SpreadsheetID == "" {
		log.Ctx(ctx).Warn().Msg("google sheets: spreadsheet id missing, skipping")
		return nil
	}
	if len(leads) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(leads))
	for _, l := range leads {
		rows = append(rows, export.Values(l))
	}
	// A:R covers the 18 lead columns
	rng := fmt.Sprintf("%s!A:R", s.cfg.TabName)
	if err := s.api.Append(ctx, s.cfg.SpreadsheetID, rng, rows); err != nil {
		return fmt.Errorf("sheets append: %w", err)
	}
	log.Ctx(ctx).Info().Int("rows", len(rows)).Str("tab", s.cfg.TabName).Msg("google sheets updated")
	return nil
}

/********** google api **********/

type googleAppender struct{ svc *gsheets.Service }

// NewGoogleAppender authenticates with the service-account file when given,
// otherwise with application default credentials.
func NewGoogleAppender(ctx context.Context, credentialsPath string) (Appender, error) {
	opts := []option.ClientOption{option.WithScopes(gsheets.SpreadsheetsScope)}
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	return &googleAppender{svc: svc}, nil
}

func (g *googleAppender) Append(ctx context.Context, spreadsheetID, rng string, rows [][]any) error {
	_, err := g.svc.Spreadsheets.Values.
		Append(spreadsheetID, rng, &gsheets.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	return err
}

package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"leadscout/internal/domain"
)

// rows per INSERT; 200 x 19 placeholders stays far below MySQL's 65535
// limit and well under max_allowed_packet
const batchSize = 200

// chunk splits xs into consecutive slices of at most size elements.
func chunk[T any](xs []T, size int) [][]T {
	var out [][]T
	for start := 0; start < len(xs); start += size {
		out = append(out, xs[start:min(start+size, len(xs))])
	}
	return out
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertLeads(ctx context.Context, runID string, leads []domain.Lead) error {
	for _, batch := range chunk(leads, batchSize) {
		values := make([]string, 0, len(batch))
		args := make([]any, 0, len(batch)*19) // 18 lead columns + run_id
		for _, l := range batch {
			values = append(values, leadRowPlaceholders)
			args = append(args,
				string(l.SourceStore),
				l.AppIdentifier,
				l.AppName,
				l.Developer,
				l.Rating,
				l.RatingsCount,
				l.LastUpdate,
				l.Country,
				l.Category,
				l.AppURL,
				l.ReviewsURL,
				l.Website,
				l.SupportEmail,
				l.LinkedinGuess,
				l.ContactStatus,
				l.LoomStatus,
				l.OutreachOwner,
				l.DateFound,
				runID,
			)
		}
		q := insertLeadsPrefix + strings.Join(values, ",") + insertLeadsOnDup
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("upsert leads: %w", err)
		}
	}
	return nil
}

func (r *Repo) LogMisses(ctx context.Context, runID string, ws []domain.Warning) error {
	for _, batch := range chunk(ws, batchSize) {
		values := make([]string, 0, len(batch))
		args := make([]any, 0, len(batch)*6)
		for _, w := range batch {
			values = append(values, "(?,?,?,?,?,?)")
			args = append(args, runID, string(w.Store), w.Stage, w.Keyword, w.AppID, w.Message)
		}
		if _, err := r.db.ExecContext(ctx, insertMissesPrefix+strings.Join(values, ","), args...); err != nil {
			return fmt.Errorf("log misses: %w", err)
		}
	}
	return nil
}

func (r *Repo) GetLead(ctx context.Context, store domain.Store, appID string) (domain.Lead, error) {
	row := r.db.QueryRowContext(ctx, getLeadSQL, string(store), appID)
	l, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Lead{}, domain.ErrNotFound
	}
	return l, err
}

func (r *Repo) ListLeads(ctx context.Context, q domain.LeadsQuery) (domain.LeadsPage, error) {
	where, args := "", []any{}
	if q.Store != nil {
		where = "WHERE source_store = ?"
		args = append(args, string(*q.Store))
	}
	args = append(args, q.Limit)

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(listLeadsSQL, where), args...)
	if err != nil {
		return domain.LeadsPage{}, err
	}
	defer rows.Close()

	out := []domain.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return domain.LeadsPage{}, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return domain.LeadsPage{}, err
	}
	return domain.LeadsPage{Items: out}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLead(s scanner) (domain.Lead, error) {
	var l domain.Lead
	var store string
	err := s.Scan(
		&store,
		&l.AppIdentifier,
		&l.AppName,
		&l.Developer,
		&l.Rating,
		&l.RatingsCount,
		&l.LastUpdate,
		&l.Country,
		&l.Category,
		&l.AppURL,
		&l.ReviewsURL,
		&l.Website,
		&l.SupportEmail,
		&l.LinkedinGuess,
		&l.ContactStatus,
		&l.LoomStatus,
		&l.OutreachOwner,
		&l.DateFound,
	)
	l.SourceStore = domain.Store(store)
	return l, err
}

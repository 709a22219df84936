// Package export owns the 18-column lead schema and the CSV artifact.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"leadscout/internal/domain"
)

// Columns is the fixed column order; header names equal field names.
var Columns = []string{
	"source_store",
	"app_name",
	"bundle_id",
	"developer",
	"rating",
	"ratings_count",
	"last_update",
	"country",
	"category",
	"app_url",
	"reviews_url",
	"website",
	"support_email",
	"linkedin_guess",
	"contact_status",
	"loom_status",
	"outreach_owner",
	"date_found",
}

// Values returns one lead in column order, numbers kept as numbers.
func Values(l domain.Lead) []any {
	return []any{
		string(l.SourceStore),
		l.AppName,
		l.AppIdentifier,
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
	}
}

// Row returns one lead in column order as text.
func Row(l domain.Lead) []string {
	vals := Values(l)
	out := make([]string, len(vals))
	for i, v := range vals {
		switch t := v.(type) {
		case string:
			out[i] = t
		case float64:
			out[i] = strconv.FormatFloat(t, 'f', -1, 64)
		case int64:
			out[i] = strconv.FormatInt(t, 10)
		default:
			out[i] = fmt.Sprint(t)
		}
	}
	return out
}

// Write emits a header row and one row per lead with every field quoted.
func Write(w io.Writer, leads []domain.Lead) error {
	bw := bufio.NewWriter(w)
	if err := writeRecord(bw, Columns); err != nil {
		return err
	}
	for _, l := range leads {
		if err := writeRecord(bw, Row(l)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeRecord(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(f, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

// FileName is leads_<market>_lowrating_<YYYYMMDD_HHmmss>.csv.
func FileName(market string, at time.Time) string {
	return fmt.Sprintf("leads_%s_lowrating_%s.csv", strings.ToLower(market), at.Format("20060102_150405"))
}

// WriteFile creates dir when missing and writes the CSV into it.
func WriteFile(dir, market string, at time.Time, leads []domain.Lead) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", dir, err)
	}
	path, err := filepath.Abs(filepath.Join(dir, FileName(market, at)))
	if err != nil {
		return "", fmt.Errorf("resolve output path: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create csv %s: %w", path, err)
	}
	if err := Write(f, leads); err != nil {
		f.Close()
		return "", fmt.Errorf("write csv %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close csv %s: %w", path, err)
	}
	return path, nil
}

package sheets_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadscout/internal/adapters/sheets"
	"leadscout/internal/domain"
)

type fakeAppender struct {
	id, rng string
	rows    [][]any
	calls   int
	err     error
}

func (f *fakeAppender) Append(ctx context.Context, spreadsheetID, rng string, rows [][]any) error {
	f.calls++
	f.id, f.rng, f.rows = spreadsheetID, rng, rows
	return f.err
}

var leads = []domain.Lead{
	{SourceStore: domain.StoreIOS, AppName: "A", AppIdentifier: "com.a", Rating: 2.5, RatingsCount: 321},
	{SourceStore: domain.StoreAndroid, AppName: "B", AppIdentifier: "com.b", Rating: 3.1, RatingsCount: 150},
}

func TestSyncer_AppendsRows(t *testing.T) {
	api := &fakeAppender{}
	s := sheets.NewSyncer(sheets.Config{Enabled: true, SpreadsheetID: "sheet-1", TabName: "DE leads"}, api)

	require.NoError(t, s.Export(context.Background(), leads, domain.Artifact{}))

	assert.Equal(t, "sheet-1", api.id)
	assert.Equal(t, "DE leads!A:R", api.rng)
	require.Len(t, api.rows, 2)
	require.Len(t, api.rows[0], 18)
	assert.Equal(t, "ios", api.rows[0][0])
	assert.Equal(t, "com.a", api.rows[0][2])
	assert.Equal(t, 2.5, api.rows[0][4])
	assert.Equal(t, int64(321), api.rows[0][5])
}

func TestSyncer_Skips(t *testing.T) {
	cases := map[string]struct {
		cfg   sheets.Config
		leads []domain.Lead
	}{
		"disabled":   {sheets.Config{SpreadsheetID: "x"}, leads},
		"missing id": {sheets.Config{Enabled: true}, leads},
		"no leads":   {sheets.Config{Enabled: true, SpreadsheetID: "x"}, nil},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			api := &fakeAppender{}
			require.NoError(t, sheets.NewSyncer(tc.cfg, api).Export(context.Background(), tc.leads, domain.Artifact{}))
			assert.Zero(t, api.calls)
		})
	}
}

func TestSyncer_DefaultTabAndError(t *testing.T) {
	api := &fakeAppender{err: errors.New("quota")}
	s := sheets.NewSyncer(sheets.Config{Enabled: true, SpreadsheetID: "x"}, api)

	err := s.Export(context.Background(), leads, domain.Artifact{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")
	assert.Equal(t, "leads!A:R", api.rng)
}

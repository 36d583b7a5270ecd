package sheets

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Veraticus/spice-report/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/sheets/v4"
)

type updateCall struct {
	rng    string
	values [][]any
}

type fakeAPI struct {
	tabs        map[string]int64
	clearErrs   []error
	created     []string
	cleared     []string
	updates     []updateCall
	formatted   [][]*sheets.Request
	formatErr   error
	nextSheetID int64
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{tabs: map[string]int64{"Sheet1": 0}, nextSheetID: 100}
}

func (f *fakeAPI) Create(_ context.Context, title, _ string) (string, string, error) {
	f.created = append(f.created, title)
	return "new-id", "https://example.invalid/new-id", nil
}

func (f *fakeAPI) SheetIDs(context.Context, string) (map[string]int64, error) {
	ids := make(map[string]int64, len(f.tabs))
	for k, v := range f.tabs {
		ids[k] = v
	}
	return ids, nil
}

func (f *fakeAPI) AddSheet(_ context.Context, _, title string) (int64, error) {
	f.nextSheetID++
	f.tabs[title] = f.nextSheetID
	return f.nextSheetID, nil
}

func (f *fakeAPI) Clear(_ context.Context, _, rng string) error {
	f.cleared = append(f.cleared, rng)
	if len(f.clearErrs) > 0 {
		err := f.clearErrs[0]
		f.clearErrs = f.clearErrs[1:]
		return err
	}
	return nil
}

func (f *fakeAPI) Update(_ context.Context, _, rng string, values [][]any) error {
	f.updates = append(f.updates, updateCall{rng: rng, values: values})
	return nil
}

func (f *fakeAPI) BatchUpdate(_ context.Context, _ string, requests []*sheets.Request) error {
	f.formatted = append(f.formatted, requests)
	return f.formatErr
}

func testWriterConfig() Config {
	cfg := DefaultConfig()
	cfg.SpreadsheetID = "sheet-123"
	cfg.RetryDelay = time.Millisecond
	return cfg
}

func cards() []model.CardSummary {
	return []model.CardSummary{
		{LastDigits: "1234", TotalSpent: decimal.NewFromInt(-300), Cashback: decimal.NewFromInt(3)},
		{LastDigits: "5678", TotalSpent: decimal.RequireFromString("-200.5"), Cashback: decimal.RequireFromString("2.01")},
	}
}

func TestWriterSave(t *testing.T) {
	api := newFakeAPI()
	w := newWriter(api, testWriterConfig(), nil)

	require.NoError(t, w.Save(context.Background(), "cards", cards()))

	assert.Empty(t, api.created)
	assert.Equal(t, int64(101), api.tabs["cards"])
	assert.Equal(t, []string{"'cards'!A:Z"}, api.cleared)
	require.Len(t, api.updates, 1)
	assert.Equal(t, "'cards'!A1", api.updates[0].rng)
	assert.Equal(t, [][]any{
		{"Card", "Total spent", "Cashback"},
		{"1234", "-300.00", "3.00"},
		{"5678", "-200.50", "2.01"},
	}, api.updates[0].values)

	require.Len(t, api.formatted, 1)
	// header, freeze, two money columns, resize
	assert.Len(t, api.formatted[0], 5)
	assert.Equal(t, int64(101), api.formatted[0][0].RepeatCell.Range.SheetId)

	// second save reuses the tab
	require.NoError(t, w.Save(context.Background(), "cards", cards()))
	assert.Len(t, api.tabs, 2)
}

func TestWriterCreatesSpreadsheet(t *testing.T) {
	api := newFakeAPI()
	cfg := testWriterConfig()
	cfg.SpreadsheetID = ""
	cfg.EnableFormatting = false
	w := newWriter(api, cfg, nil)

	require.NoError(t, w.Save(context.Background(), "investment_bank", model.SavingsReport{Total: decimal.NewFromInt(10)}))
	require.NoError(t, w.Save(context.Background(), "investment_bank", model.SavingsReport{Total: decimal.NewFromInt(20)}))

	assert.Equal(t, []string{DefaultSpreadsheetName}, api.created)
	assert.Empty(t, api.formatted)
	assert.Equal(t, [][]any{{"Investment Bank"}, {"20.00"}}, api.updates[1].values)
}

func TestWriterBatches(t *testing.T) {
	api := newFakeAPI()
	cfg := testWriterConfig()
	cfg.BatchSize = 2
	w := newWriter(api, cfg, nil)

	entries := make([]model.RankedEntry, 4)
	require.NoError(t, w.Save(context.Background(), "top", entries))

	require.Len(t, api.updates, 3)
	assert.Equal(t, "'top'!A1", api.updates[0].rng)
	assert.Equal(t, "'top'!A3", api.updates[1].rng)
	assert.Equal(t, "'top'!A5", api.updates[2].rng)
	assert.Len(t, api.updates[2].values, 1)
}

func TestWriterRetries(t *testing.T) {
	tests := []struct {
		name        string
		clearErrs   []error
		wantErr     bool
		wantCleared int
	}{
		{
			name:        "server error is retried",
			clearErrs:   []error{&googleapi.Error{Code: http.StatusServiceUnavailable}},
			wantCleared: 2,
		},
		{
			name:        "rate limit is retried",
			clearErrs:   []error{&googleapi.Error{Code: http.StatusTooManyRequests}},
			wantCleared: 2,
		},
		{
			name:        "permission error is permanent",
			clearErrs:   []error{&googleapi.Error{Code: http.StatusForbidden}},
			wantErr:     true,
			wantCleared: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			api.clearErrs = tt.clearErrs
			cfg := testWriterConfig()
			w := newWriter(api, cfg, nil)
			w.config.RetryAttempts = 2

			err := w.Save(context.Background(), "cards", cards())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Len(t, api.cleared, tt.wantCleared)
		})
	}
}

func TestWriterFormattingFailureIsNotFatal(t *testing.T) {
	api := newFakeAPI()
	api.formatErr = &googleapi.Error{Code: http.StatusBadRequest}
	w := newWriter(api, testWriterConfig(), nil)

	assert.NoError(t, w.Save(context.Background(), "cards", cards()))
	assert.Len(t, api.formatted, 1)
}

func TestWriterUnsupportedReport(t *testing.T) {
	api := newFakeAPI()
	err := newWriter(api, testWriterConfig(), nil).Save(context.Background(), "odd", 42)
	assert.ErrorIs(t, err, ErrUnsupportedReport)
	assert.Empty(t, api.updates)
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))

	plain := errors.New("boom")
	assert.Equal(t, plain, classify(plain))

	err := classify(&googleapi.Error{Code: http.StatusNotFound})
	assert.Error(t, err)
}

package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Veraticus/spice-report/internal/common"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// spreadsheetAPI is the part of the Sheets API the writer needs.
type spreadsheetAPI interface {
	Create(ctx context.Context, title, timeZone string) (id, url string, err error)
	SheetIDs(ctx context.Context, spreadsheetID string) (map[string]int64, error)
	AddSheet(ctx context.Context, spreadsheetID, title string) (int64, error)
	Clear(ctx context.Context, spreadsheetID, rng string) error
	Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error
	BatchUpdate(ctx context.Context, spreadsheetID string, requests []*sheets.Request) error
}

// Writer saves reports into tabs of a spreadsheet, one tab per report
// name. It satisfies service.ReportSink.
type Writer struct {
	api           spreadsheetAPI
	logger        *slog.Logger
	config        Config
	spreadsheetID string
	mu            sync.Mutex
}

// NewWriter creates a Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return newWriter(&googleAPI{srv: srv}, config, logger), nil
}

func newWriter(api spreadsheetAPI, config Config, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = common.DiscardLogger()
	}
	return &Writer{
		api:           api,
		config:        config,
		logger:        logger,
		spreadsheetID: config.SpreadsheetID,
	}
}

// Save replaces the contents of the tab named after the report.
func (w *Writer) Save(ctx context.Context, name string, report any) error {
	table, err := Render(report)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	retryOpts := common.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     min(30*time.Second, 30*w.config.RetryDelay),
		Multiplier:   2.0,
	}

	spreadsheetID, err := w.spreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	var sheetID int64
	err = common.WithRetry(ctx, func() error {
		var tabErr error
		sheetID, tabErr = w.tab(ctx, spreadsheetID, name)
		return classify(tabErr)
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to prepare tab %q: %w", name, err)
	}

	err = common.WithRetry(ctx, func() error {
		if clearErr := w.api.Clear(ctx, spreadsheetID, tabRange(name, "A:Z")); clearErr != nil {
			return classify(clearErr)
		}
		return classify(w.writeData(ctx, spreadsheetID, name, table.Rows))
	}, retryOpts)
	if err != nil {
		common.LogError(w.logger, err, "sheets export failed", common.Fields{
			"report":    name,
			"transient": common.IsRetryable(err),
		})
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return classify(w.api.BatchUpdate(ctx, spreadsheetID, formatRequests(sheetID, table)))
		}, retryOpts)
		if err != nil {
			// the data is already written
			w.logger.Warn("failed to apply formatting", "report", name, "error", err)
		}
	}

	w.logger.Info("report exported to sheets",
		"spreadsheet_id", spreadsheetID,
		"tab", name,
		"rows_written", len(table.Rows))

	return nil
}

// spreadsheet returns the configured spreadsheet, creating one on first use.
func (w *Writer) spreadsheet(ctx context.Context) (string, error) {
	if w.spreadsheetID != "" {
		return w.spreadsheetID, nil
	}

	id, url, err := w.api.Create(ctx, w.config.SpreadsheetName, w.config.TimeZone)
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet", "id", id, "url", url)
	w.spreadsheetID = id
	return id, nil
}

func (w *Writer) tab(ctx context.Context, spreadsheetID, name string) (int64, error) {
	ids, err := w.api.SheetIDs(ctx, spreadsheetID)
	if err != nil {
		return 0, fmt.Errorf("unable to access spreadsheet %s: %w", spreadsheetID, err)
	}
	if id, ok := ids[name]; ok {
		return id, nil
	}
	return w.api.AddSheet(ctx, spreadsheetID, name)
}

func (w *Writer) writeData(ctx context.Context, spreadsheetID, name string, values [][]any) error {
	batchSize := w.config.BatchSize
	if batchSize <= 0 {
		batchSize = len(values)
	}

	for i := 0; i < len(values); i += batchSize {
		end := min(i+batchSize, len(values))

		if err := w.api.Update(ctx, spreadsheetID, tabRange(name, fmt.Sprintf("A%d", i+1)), values[i:end]); err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "tab", name, "start_row", i+1, "rows", end-i)
	}

	return nil
}

func tabRange(tab, cells string) string {
	return fmt.Sprintf("'%s'!%s", tab, cells)
}

// classify marks API errors that are not worth retrying.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return &common.RetryableError{Err: fmt.Errorf("%w: %w", common.ErrRateLimit, err), Retryable: true}
		case apiErr.Code >= http.StatusInternalServerError:
			return &common.RetryableError{Err: err, Retryable: true}
		default:
			return common.Permanent(err)
		}
	}
	return err
}

func formatRequests(sheetID int64, table Table) []*sheets.Request {
	totalRows := int64(len(table.Rows))
	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:       sheetID,
					StartRowIndex: 0,
					EndRowIndex:   1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:        sheetID,
					GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	for _, col := range table.Money {
		requests = append(requests, &sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    1,
					EndRowIndex:      totalRows,
					StartColumnIndex: int64(col),
					EndColumnIndex:   int64(col) + 1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						NumberFormat: &sheets.NumberFormat{
							Type:    "NUMBER",
							Pattern: "#,##0.00",
						},
					},
				},
				Fields: "userEnteredFormat.numberFormat",
			},
		})
	}

	return append(requests, &sheets.Request{
		AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
			Dimensions: &sheets.DimensionRange{
				SheetId:   sheetID,
				Dimension: "COLUMNS",
			},
		},
	})
}

func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(filepath.Clean(config.ServiceAccountPath))
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}
		tokenSource = client.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// googleAPI talks to the real Sheets service.
type googleAPI struct {
	srv *sheets.Service
}

func (g *googleAPI) Create(ctx context.Context, title, timeZone string) (string, string, error) {
	created, err := g.srv.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    title,
			TimeZone: timeZone,
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", "", err
	}
	return created.SpreadsheetId, created.SpreadsheetUrl, nil
}

func (g *googleAPI) SheetIDs(ctx context.Context, spreadsheetID string) (map[string]int64, error) {
	spreadsheet, err := g.srv.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	ids := make(map[string]int64, len(spreadsheet.Sheets))
	for _, s := range spreadsheet.Sheets {
		if s.Properties != nil {
			ids[s.Properties.Title] = s.Properties.SheetId
		}
	}
	return ids, nil
}

func (g *googleAPI) AddSheet(ctx context.Context, spreadsheetID, title string) (int64, error) {
	resp, err := g.srv.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil {
		return 0, fmt.Errorf("add sheet %q returned no properties", title)
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

func (g *googleAPI) Clear(ctx context.Context, spreadsheetID, rng string) error {
	_, err := g.srv.Spreadsheets.Values.Clear(spreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (g *googleAPI) Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error {
	_, err := g.srv.Spreadsheets.Values.Update(spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	return err
}

func (g *googleAPI) BatchUpdate(ctx context.Context, spreadsheetID string, requests []*sheets.Request) error {
	_, err := g.srv.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}

package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Veraticus/gross-to-net/internal/common"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ReportWriter publishes a report somewhere.
type ReportWriter interface {
	Write(ctx context.Context, report Report) (string, error)
}

// Writer implements ReportWriter for Google Sheets.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: service,
		logger:  logger,
	}, nil
}

// Write publishes every tab of report and returns the spreadsheet ID.
func (w *Writer) Write(ctx context.Context, report Report) (string, error) {
	tabs := PrepareTabs(report)
	w.logger.Info("starting report export", "tabs", len(tabs), "rows", report.Summary.RowCount)

	titles := make([]string, len(tabs))
	for i, tab := range tabs {
		titles[i] = tab.Title
	}

	spreadsheetID, sheetIDs, err := w.getOrCreateSpreadsheet(ctx, titles)
	if err != nil {
		return "", fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	retryOpts := common.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	for _, tab := range tabs {
		err = common.WithRetry(ctx, func() error {
			if clearErr := w.clearTab(ctx, spreadsheetID, tab.Title); clearErr != nil {
				return classifyAPIError(clearErr)
			}
			return classifyAPIError(w.writeValues(ctx, spreadsheetID, tab))
		}, retryOpts)
		if err != nil {
			return spreadsheetID, fmt.Errorf("failed to write tab %s: %w", tab.Title, err)
		}

		if w.config.EnableFormatting {
			err = common.WithRetry(ctx, func() error {
				return classifyAPIError(w.applyFormatting(ctx, spreadsheetID, sheetIDs[tab.Title], tab))
			}, retryOpts)
			if err != nil {
				// Formatting is cosmetic; the data is already written.
				w.logger.Warn("failed to apply formatting", "tab", tab.Title, "error", err)
			}
		}
	}

	w.logger.Info("report export completed", "spreadsheet_id", spreadsheetID)
	return spreadsheetID, nil
}

// classifyAPIError marks Sheets API failures for WithRetry: 429 is a rate limit,
// 5xx and transport errors are retryable, other API errors are permanent.
func classifyAPIError(err error) error {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return &common.RetryableError{Err: err, Retryable: true}
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case apiErr.Code >= http.StatusInternalServerError:
		return &common.RetryableError{Err: err, Retryable: true}
	default:
		return &common.RetryableError{Err: err, Retryable: false}
	}
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := oauthConfig(config.ClientID, config.ClientSecret, "")
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

// getOrCreateSpreadsheet returns the target spreadsheet, adding any missing tabs,
// and maps tab titles to sheet IDs.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context, titles []string) (string, map[string]int64, error) {
	if w.config.SpreadsheetID == "" {
		spreadsheet := &sheets.Spreadsheet{
			Properties: &sheets.SpreadsheetProperties{
				Title:    w.config.SpreadsheetName,
				TimeZone: w.config.TimeZone,
			},
		}
		for _, title := range titles {
			spreadsheet.Sheets = append(spreadsheet.Sheets, &sheets.Sheet{
				Properties: &sheets.SheetProperties{Title: title},
			})
		}

		created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
		if err != nil {
			return "", nil, fmt.Errorf("unable to create spreadsheet: %w", err)
		}
		w.logger.Info("created new spreadsheet", "id", created.SpreadsheetId, "url", created.SpreadsheetUrl)
		return created.SpreadsheetId, sheetIDs(created), nil
	}

	existing, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return "", nil, fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
	}

	ids := sheetIDs(existing)
	var requests []*sheets.Request
	for _, title := range missingTabs(ids, titles) {
		requests = append(requests, &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: title}},
		})
	}
	if len(requests) == 0 {
		return existing.SpreadsheetId, ids, nil
	}

	resp, err := w.service.Spreadsheets.BatchUpdate(existing.SpreadsheetId, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return "", nil, fmt.Errorf("unable to add tabs: %w", err)
	}
	for _, reply := range resp.Replies {
		if reply.AddSheet != nil && reply.AddSheet.Properties != nil {
			ids[reply.AddSheet.Properties.Title] = reply.AddSheet.Properties.SheetId
		}
	}
	return existing.SpreadsheetId, ids, nil
}

func sheetIDs(s *sheets.Spreadsheet) map[string]int64 {
	ids := make(map[string]int64, len(s.Sheets))
	for _, sh := range s.Sheets {
		if sh.Properties != nil {
			ids[sh.Properties.Title] = sh.Properties.SheetId
		}
	}
	return ids
}

func missingTabs(existing map[string]int64, titles []string) []string {
	var missing []string
	for _, title := range titles {
		if _, ok := existing[title]; !ok {
			missing = append(missing, title)
		}
	}
	return missing
}

// clearTab clears all data from one tab.
func (w *Writer) clearTab(ctx context.Context, spreadsheetID, title string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, fmt.Sprintf("'%s'!A:Z", title), &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// writeValues writes a tab in batches to stay under API limits.
func (w *Writer) writeValues(ctx context.Context, spreadsheetID string, tab Tab) error {
	for i := 0; i < len(tab.Values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(tab.Values))
		batch := tab.Values[i:end]

		rangeStr := fmt.Sprintf("'%s'!A%d", tab.Title, i+1)
		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, rangeStr, &sheets.ValueRange{Values: batch}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "tab", tab.Title, "start_row", i+1, "rows", len(batch))
	}
	return nil
}

// applyFormatting bolds the first row, formats money columns and sizes columns.
func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, sheetID int64, tab Tab) error {
	requests := formattingRequests(sheetID, tab, w.config.CurrencyPattern)
	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}

func formattingRequests(sheetID int64, tab Tab, currencyPattern string) []*sheets.Request {
	rows := int64(len(tab.Values))
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
	}

	for _, col := range tab.MoneyColumns {
		requests = append(requests, &sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    1,
					EndRowIndex:      rows,
					StartColumnIndex: col,
					EndColumnIndex:   col + 1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						NumberFormat: &sheets.NumberFormat{
							Type:    "CURRENCY",
							Pattern: currencyPattern,
						},
					},
				},
				Fields: "userEnteredFormat.numberFormat",
			},
		})
	}

	requests = append(requests,
		&sheets.Request{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   int64(maxWidth(tab.Values)),
				},
			},
		},
		&sheets.Request{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:        sheetID,
					GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	)
	return requests
}

func maxWidth(values [][]any) int {
	width := 1
	for _, row := range values {
		width = max(width, len(row))
	}
	return width
}

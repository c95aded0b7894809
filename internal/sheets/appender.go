package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"voicewins/internal/highlights"
	"voicewins/pkg/logger"
)

// Appender writes timestamped highlight rows to a Google Sheet
type Appender struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	writeRange    string
	now           func() time.Time
	logger        *logger.Logger
}

// NewAppender creates a new appender using service account credentials
func NewAppender(ctx context.Context, spreadsheetID, credentialsFile, writeRange string, log *logger.Logger) (*Appender, error) {
	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	if writeRange == "" {
		writeRange = "A1:D1"
	}

	return &Appender{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		writeRange:    writeRange,
		now:           time.Now,
		logger:        log.Named("sheets"),
	}, nil
}

// buildRow prepends the formatted date and time to the trimmed pair.
// Upstream stages never supply timestamps.
func buildRow(ts time.Time, pair highlights.Pair) []interface{} {
	return []interface{}{
		ts.Format("02-01-2006"),
		ts.Format("15:04:05"),
		strings.TrimSpace(pair.PhysicalWin),
		strings.TrimSpace(pair.SocialHighlight),
	}
}

// Append writes one row for the pair at the current wall-clock time.
// Every failure is caught, logged, and converted to false; nothing is
// retried and no error propagates to the caller.
func (a *Appender) Append(ctx context.Context, pair highlights.Pair) bool {
	row := buildRow(a.now(), pair)

	valueRange := &sheetsapi.ValueRange{
		Values: [][]interface{}{row},
	}

	resp, err := a.svc.Spreadsheets.Values.
		Append(a.spreadsheetID, a.writeRange, valueRange).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		a.logger.Error("Failed to append row to Google Sheet",
			logger.Error(err),
			logger.String("spreadsheet_id", a.spreadsheetID))
		return false
	}

	a.logger.Info("Appended row to Google Sheet",
		logger.String("updated_range", resp.Updates.UpdatedRange),
		logger.Any("row", row))

	return true
}

package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"nutrisight/internal/config"
	"nutrisight/internal/core"
)

type GoogleClient struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ Writer = (*GoogleClient)(nil)

// NewGoogleClient creates a Sheets client from the application config using
// service account credentials.
func NewGoogleClient(ctx context.Context, cfg *config.Config) (*GoogleClient, error) {
	if cfg.GoogleSpreadsheetID == "" {
		return nil, errors.New("missing Google spreadsheet ID")
	}
	if cfg.GoogleSheetName == "" {
		return nil, errors.New("missing Google sheet name")
	}

	var credentialsJSON []byte
	switch {
	case cfg.GoogleCredentialsJSON != "":
		credentialsJSON = []byte(cfg.GoogleCredentialsJSON)
	case cfg.GoogleCredentialsFile != "":
		data, err := os.ReadFile(cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing Google credentials (set GOOGLE_CREDENTIALS_JSON or GOOGLE_CREDENTIALS_FILE)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &GoogleClient{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     cfg.GoogleSheetName,
	}, nil
}

// Append writes one entry as a row: date, dish, category, rupees, calories,
// diet, entry id.
func (c *GoogleClient) Append(ctx context.Context, e core.SpendingEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:G", c.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{{
		e.LoggedAt.Format("2006-01-02 15:04"),
		e.Dish,
		string(e.Category),
		e.Price.Rupees(),
		e.Calories,
		e.Diet,
		e.ID,
	}}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}

	ref := c.sheetName
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	return ref, nil
}

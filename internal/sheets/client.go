// Package sheets wraps the Google Sheets API with range-oriented read and
// write operations.
package sheets

import (
	"context"
	"fmt"

	sheets "google.golang.org/api/sheets/v4"
	"google.golang.org/api/option"

	"workspacemcp/internal/google"
)

// Client wraps the Google Sheets API service.
type Client struct {
	service *sheets.Service
}

// NewClient creates a Sheets client authenticated with the stored
// credentials. Returns google.ErrNotAuthorized when no credentials are
// stored.
func NewClient(ctx context.Context, store *google.Store) (*Client, error) {
	httpClient, err := google.NewHTTPClient(ctx, store)
	if err != nil {
		return nil, err
	}

	service, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}

	return &Client{service: service}, nil
}

// CreateSpreadsheet creates a new spreadsheet with the given title.
func (c *Client) CreateSpreadsheet(ctx context.Context, title string) (*Spreadsheet, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	ss, err := c.service.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create spreadsheet: %w", err)
	}

	return &Spreadsheet{
		ID:    ss.SpreadsheetId,
		Title: ss.Properties.Title,
		URL:   ss.SpreadsheetUrl,
	}, nil
}

// ReadRange returns the cell values in the given A1-notation range.
func (c *Client) ReadRange(ctx context.Context, spreadsheetID, readRange string) ([][]any, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheetID is required")
	}
	if readRange == "" {
		return nil, fmt.Errorf("range is required")
	}

	resp, err := c.service.Spreadsheets.Values.Get(spreadsheetID, readRange).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s from spreadsheet %s: %w", readRange, spreadsheetID, err)
	}

	return resp.Values, nil
}

// UpdateRange overwrites the cells in the given A1-notation range and
// returns the number of updated cells. Values are interpreted as if typed by
// the user, so formulas and dates behave as in the UI.
func (c *Client) UpdateRange(ctx context.Context, spreadsheetID, updateRange string, values [][]any) (int64, error) {
	if spreadsheetID == "" {
		return 0, fmt.Errorf("spreadsheetID is required")
	}
	if updateRange == "" {
		return 0, fmt.Errorf("range is required")
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("values are required")
	}

	resp, err := c.service.Spreadsheets.Values.Update(spreadsheetID, updateRange, &sheets.ValueRange{
		Values: values,
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to update range %s in spreadsheet %s: %w", updateRange, spreadsheetID, err)
	}

	return resp.UpdatedCells, nil
}

// AppendRows appends rows after the last row of the table that contains the
// given range and returns the range the rows landed in.
func (c *Client) AppendRows(ctx context.Context, spreadsheetID, appendRange string, values [][]any) (string, error) {
	if spreadsheetID == "" {
		return "", fmt.Errorf("spreadsheetID is required")
	}
	if appendRange == "" {
		return "", fmt.Errorf("range is required")
	}
	if len(values) == 0 {
		return "", fmt.Errorf("values are required")
	}

	resp, err := c.service.Spreadsheets.Values.Append(spreadsheetID, appendRange, &sheets.ValueRange{
		Values: values,
	}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to append rows to spreadsheet %s: %w", spreadsheetID, err)
	}

	if resp.Updates == nil {
		return "", nil
	}
	return resp.Updates.UpdatedRange, nil
}

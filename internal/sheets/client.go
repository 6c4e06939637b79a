package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/The-WildNuts/The-Wild-Nuts/pkg/config"
	pkgerrors "github.com/The-WildNuts/The-Wild-Nuts/pkg/errors"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/metrics"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

const defaultNewWorksheetRows = 1000

// Client talks to one Google spreadsheet through the Sheets v4 API. The
// service account authenticates once at construction.
type Client struct {
	svc           *sheetsv4.Service
	spreadsheetID string
	metrics       *metrics.StoreMetrics

	mu       sync.Mutex
	sheetIDs map[string]int64
}

var _ API = (*Client)(nil)

// NewClient authenticates with the configured service-account credentials and
// binds to the configured spreadsheet. Credentials come from the inline JSON
// blob when set, otherwise from the key file.
func NewClient(ctx context.Context, cfg config.SheetsConfig, m *metrics.StoreMetrics) (*Client, error) {
	creds, err := credentialsJSON(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := sheetsv4.NewService(ctx,
		option.WithCredentialsJSON(creds),
		option.WithScopes(sheetsv4.SpreadsheetsScope),
	)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sheets service")
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		metrics:       m,
		sheetIDs:      map[string]int64{},
	}, nil
}

func credentialsJSON(cfg config.SheetsConfig) ([]byte, error) {
	if cfg.CredentialsJSON != "" {
		return []byte(cfg.CredentialsJSON), nil
	}
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
			"credentials not found: set GOOGLE_CREDENTIALS_JSON or provide the key file")
	}
	return data, nil
}

// Rows returns every data row keyed by the header row.
func (c *Client) Rows(ctx context.Context, worksheet string) ([]Row, error) {
	values, err := c.values(ctx, worksheet, "rows")
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}

	header := stringCells(values[0])
	rows := make([]Row, 0, len(values)-1)
	for _, raw := range values[1:] {
		cells := stringCells(raw)
		row := Row{}
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(cells) {
				row[name] = cells[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Header returns the worksheet's first row.
func (c *Client) Header(ctx context.Context, worksheet string) ([]string, error) {
	values, err := c.values(ctx, worksheet, "header")
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return stringCells(values[0]), nil
}

// FindRow scans cells in sheet order and returns the 1-based row of the first
// exact match.
func (c *Client) FindRow(ctx context.Context, worksheet, value string) (int, error) {
	values, err := c.values(ctx, worksheet, "find")
	if err != nil {
		return 0, err
	}
	for rowIdx, raw := range values {
		for _, cell := range stringCells(raw) {
			if cell == value {
				return rowIdx + 1, nil
			}
		}
	}
	return 0, errRowNotFound(worksheet)
}

// AppendRow adds a row after the last data row.
func (c *Client) AppendRow(ctx context.Context, worksheet string, values []string) error {
	start := time.Now()
	vr := &sheetsv4.ValueRange{Values: [][]any{anyCells(values)}}
	_, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, worksheetRange(worksheet), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	c.observe(worksheet, "append", start, err)
	if err != nil {
		return c.wrapAPIError(worksheet, err, "append row")
	}
	return nil
}

// UpdateCell overwrites one cell addressed by 1-based row and column.
func (c *Client) UpdateCell(ctx context.Context, worksheet string, row, col int, value string) error {
	start := time.Now()
	target := fmt.Sprintf("%s!%s%d", worksheet, columnLetter(col), row)
	vr := &sheetsv4.ValueRange{Values: [][]any{{value}}}
	_, err := c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, target, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	c.observe(worksheet, "update_cell", start, err)
	if err != nil {
		return c.wrapAPIError(worksheet, err, "update cell")
	}
	return nil
}

// BatchUpdate applies several cell writes in one round-trip.
func (c *Client) BatchUpdate(ctx context.Context, worksheet string, updates []CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	start := time.Now()
	data := make([]*sheetsv4.ValueRange, 0, len(updates))
	for _, u := range updates {
		data = append(data, &sheetsv4.ValueRange{
			Range:  fmt.Sprintf("%s!%s%d", worksheet, columnLetter(u.Col), u.Row),
			Values: [][]any{{u.Value}},
		})
	}
	req := &sheetsv4.BatchUpdateValuesRequest{
		ValueInputOption: "USER_ENTERED",
		Data:             data,
	}
	_, err := c.svc.Spreadsheets.Values.
		BatchUpdate(c.spreadsheetID, req).
		Context(ctx).
		Do()
	c.observe(worksheet, "batch_update", start, err)
	if err != nil {
		return c.wrapAPIError(worksheet, err, "batch update")
	}
	return nil
}

// DeleteRow removes the given 1-based sheet row.
func (c *Client) DeleteRow(ctx context.Context, worksheet string, row int) error {
	sheetID, err := c.sheetID(ctx, worksheet)
	if err != nil {
		return err
	}
	start := time.Now()
	req := &sheetsv4.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsv4.Request{{
			DeleteDimension: &sheetsv4.DeleteDimensionRequest{
				Range: &sheetsv4.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(row - 1),
					EndIndex:   int64(row),
				},
			},
		}},
	}
	_, err = c.svc.Spreadsheets.
		BatchUpdate(c.spreadsheetID, req).
		Context(ctx).
		Do()
	c.observe(worksheet, "delete_row", start, err)
	if err != nil {
		return c.wrapAPIError(worksheet, err, "delete row")
	}
	return nil
}

// EnsureWorksheet creates the worksheet with the given header when missing.
func (c *Client) EnsureWorksheet(ctx context.Context, worksheet string, header []string) error {
	_, err := c.Header(ctx, worksheet)
	if err == nil {
		return nil
	}
	if !NotFound(err) {
		return err
	}

	start := time.Now()
	req := &sheetsv4.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsv4.Request{{
			AddSheet: &sheetsv4.AddSheetRequest{
				Properties: &sheetsv4.SheetProperties{
					Title: worksheet,
					GridProperties: &sheetsv4.GridProperties{
						RowCount:    defaultNewWorksheetRows,
						ColumnCount: int64(len(header)),
					},
				},
			},
		}},
	}
	_, err = c.svc.Spreadsheets.
		BatchUpdate(c.spreadsheetID, req).
		Context(ctx).
		Do()
	c.observe(worksheet, "add_sheet", start, err)
	if err != nil {
		return c.wrapAPIError(worksheet, err, "add worksheet")
	}

	return c.AppendRow(ctx, worksheet, header)
}

func (c *Client) values(ctx context.Context, worksheet, op string) ([][]any, error) {
	start := time.Now()
	resp, err := c.svc.Spreadsheets.Values.
		Get(c.spreadsheetID, worksheetRange(worksheet)).
		Context(ctx).
		Do()
	c.observe(worksheet, op, start, err)
	if err != nil {
		return nil, c.wrapAPIError(worksheet, err, "read worksheet")
	}
	return resp.Values, nil
}

func (c *Client) sheetID(ctx context.Context, worksheet string) (int64, error) {
	c.mu.Lock()
	cached, ok := c.sheetIDs[worksheet]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	start := time.Now()
	resp, err := c.svc.Spreadsheets.
		Get(c.spreadsheetID).
		Fields("sheets(properties(sheetId,title))").
		Context(ctx).
		Do()
	c.observe(worksheet, "sheet_id", start, err)
	if err != nil {
		return 0, c.wrapAPIError(worksheet, err, "list worksheets")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sheet := range resp.Sheets {
		if sheet.Properties != nil {
			c.sheetIDs[sheet.Properties.Title] = sheet.Properties.SheetId
		}
	}
	if id, ok := c.sheetIDs[worksheet]; ok {
		return id, nil
	}
	return 0, errWorksheetNotFound(worksheet)
}

// wrapAPIError maps googleapi failures onto the error taxonomy. The Sheets
// API answers a missing worksheet range with 400 ("Unable to parse range")
// and a missing spreadsheet with 404; both read as NotFound here.
func (c *Client) wrapAPIError(worksheet string, err error, action string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == 404 || (apiErr.Code == 400 && strings.Contains(apiErr.Message, "Unable to parse range")) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "worksheet "+worksheet+" not found")
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action+" "+worksheet)
}

func (c *Client) observe(worksheet, op string, start time.Time, err error) {
	c.metrics.ObserveFetch(worksheet, op, time.Since(start))
	if err != nil {
		c.metrics.IncFetchError(worksheet, op)
	}
}

func worksheetRange(worksheet string) string {
	return "'" + worksheet + "'"
}

func stringCells(raw []any) []string {
	cells := make([]string, len(raw))
	for i, v := range raw {
		switch typed := v.(type) {
		case string:
			cells[i] = typed
		case nil:
			cells[i] = ""
		default:
			cells[i] = fmt.Sprint(typed)
		}
	}
	return cells
}

func anyCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

// columnLetter converts a 1-based column index to its A1 letter form.
func columnLetter(col int) string {
	letters := ""
	for col > 0 {
		col--
		letters = string(rune('A'+col%26)) + letters
		col /= 26
	}
	return letters
}

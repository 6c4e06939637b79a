package sheets

import (
	"context"

	pkgerrors "github.com/The-WildNuts/The-Wild-Nuts/pkg/errors"
)

// TimeLayout is the timestamp format stored in every worksheet, chosen
// to stay legible when the sheet is opened by hand.
const TimeLayout = "2006-01-02 15:04:05"

// Row is one worksheet record keyed by the header-row values. Cells beyond
// the row's length read as empty strings.
type Row map[string]string

// CellUpdate addresses one cell write inside a batch. Row and Col are
// 1-based sheet coordinates; row 1 is the header.
type CellUpdate struct {
	Row   int
	Col   int
	Value string
}

// API is the worksheet-level surface of the tabular store. Reads return rows
// in sheet order (insertion order). Row indices accepted by mutations are
// 1-based sheet rows, so the first data row is 2.
//
// Lookup-then-mutate sequences are not atomic: a concurrent insert or delete
// between FindRow and UpdateCell can shift the target row. Callers are
// expected to re-scan immediately before mutating to keep the window small.
type API interface {
	// Rows returns every data row of the worksheet as header-keyed records.
	Rows(ctx context.Context, worksheet string) ([]Row, error)
	// Header returns the worksheet's first row.
	Header(ctx context.Context, worksheet string) ([]string, error)
	// FindRow returns the 1-based sheet row of the first cell equal to value,
	// scanning in sheet order.
	FindRow(ctx context.Context, worksheet, value string) (int, error)
	// AppendRow adds a row after the last data row.
	AppendRow(ctx context.Context, worksheet string, values []string) error
	// UpdateCell overwrites a single cell.
	UpdateCell(ctx context.Context, worksheet string, row, col int, value string) error
	// BatchUpdate applies several cell writes in one round-trip.
	BatchUpdate(ctx context.Context, worksheet string, updates []CellUpdate) error
	// DeleteRow removes the given sheet row.
	DeleteRow(ctx context.Context, worksheet string, row int) error
	// EnsureWorksheet creates the worksheet with the given header when it
	// does not exist yet.
	EnsureWorksheet(ctx context.Context, worksheet string, header []string) error
}

// NotFound reports whether err marks a missing worksheet, row or record.
func NotFound(err error) bool {
	return pkgerrors.IsCode(err, pkgerrors.CodeNotFound)
}

func errWorksheetNotFound(worksheet string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "worksheet "+worksheet+" not found")
}

func errRowNotFound(worksheet string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "no matching row in "+worksheet)
}

package sheets

import (
	"context"
	"sync"

	pkgerrors "github.com/The-WildNuts/The-Wild-Nuts/pkg/errors"
)

// Memory is an in-process API implementation. It backs the
// WILDNUTS_USE_MEMORY_STORE dev mode and the repository tests. Nothing
// persists across restarts.
type Memory struct {
	mu     sync.RWMutex
	sheets map[string]*memorySheet
}

type memorySheet struct {
	header []string
	rows   [][]string
}

var _ API = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{sheets: map[string]*memorySheet{}}
}

// Seed replaces the worksheet's contents. Intended for tests and dev
// bootstrapping.
func (m *Memory) Seed(worksheet string, header []string, rows [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]string, len(rows))
	for i, row := range rows {
		copied[i] = append([]string(nil), row...)
	}
	m.sheets[worksheet] = &memorySheet{
		header: append([]string(nil), header...),
		rows:   copied,
	}
}

func (m *Memory) Rows(_ context.Context, worksheet string) ([]Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sheet, ok := m.sheets[worksheet]
	if !ok {
		return nil, errWorksheetNotFound(worksheet)
	}
	rows := make([]Row, 0, len(sheet.rows))
	for _, cells := range sheet.rows {
		row := Row{}
		for i, name := range sheet.header {
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

func (m *Memory) Header(_ context.Context, worksheet string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sheet, ok := m.sheets[worksheet]
	if !ok {
		return nil, errWorksheetNotFound(worksheet)
	}
	return append([]string(nil), sheet.header...), nil
}

func (m *Memory) FindRow(_ context.Context, worksheet, value string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sheet, ok := m.sheets[worksheet]
	if !ok {
		return 0, errWorksheetNotFound(worksheet)
	}
	for _, cell := range sheet.header {
		if cell == value {
			return 1, nil
		}
	}
	for i, cells := range sheet.rows {
		for _, cell := range cells {
			if cell == value {
				return i + 2, nil
			}
		}
	}
	return 0, errRowNotFound(worksheet)
}

func (m *Memory) AppendRow(_ context.Context, worksheet string, values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sheet, ok := m.sheets[worksheet]
	if !ok {
		return errWorksheetNotFound(worksheet)
	}
	sheet.rows = append(sheet.rows, append([]string(nil), values...))
	return nil
}

func (m *Memory) UpdateCell(_ context.Context, worksheet string, row, col int, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateCellLocked(worksheet, row, col, value)
}

func (m *Memory) BatchUpdate(_ context.Context, worksheet string, updates []CellUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range updates {
		if err := m.updateCellLocked(worksheet, u.Row, u.Col, u.Value); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) updateCellLocked(worksheet string, row, col int, value string) error {
	sheet, ok := m.sheets[worksheet]
	if !ok {
		return errWorksheetNotFound(worksheet)
	}
	if row < 1 || col < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cell coordinates are 1-based")
	}
	if row == 1 {
		for len(sheet.header) < col {
			sheet.header = append(sheet.header, "")
		}
		sheet.header[col-1] = value
		return nil
	}
	idx := row - 2
	if idx >= len(sheet.rows) {
		return errRowNotFound(worksheet)
	}
	cells := sheet.rows[idx]
	for len(cells) < col {
		cells = append(cells, "")
	}
	cells[col-1] = value
	sheet.rows[idx] = cells
	return nil
}

func (m *Memory) DeleteRow(_ context.Context, worksheet string, row int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sheet, ok := m.sheets[worksheet]
	if !ok {
		return errWorksheetNotFound(worksheet)
	}
	idx := row - 2
	if row < 2 || idx >= len(sheet.rows) {
		return errRowNotFound(worksheet)
	}
	sheet.rows = append(sheet.rows[:idx], sheet.rows[idx+1:]...)
	return nil
}

func (m *Memory) EnsureWorksheet(_ context.Context, worksheet string, header []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sheets[worksheet]; ok {
		return nil
	}
	m.sheets[worksheet] = &memorySheet{header: append([]string(nil), header...)}
	return nil
}

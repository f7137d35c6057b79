package workbook

import (
	"fmt"
)

type cellKey struct {
	row, col int
}

// MemoryStore is an in-memory Store. Cells or whole sheets can be
// protected to simulate a workpaper that rejects writes.
type MemoryStore struct {
	sheets    map[string]map[cellKey]interface{}
	protected map[string]map[cellKey]bool
	locked    map[string]bool
}

// NewMemoryStore creates a store containing the given (empty) sheets.
func NewMemoryStore(sheets ...string) *MemoryStore {
	m := &MemoryStore{
		sheets:    make(map[string]map[cellKey]interface{}),
		protected: make(map[string]map[cellKey]bool),
		locked:    make(map[string]bool),
	}
	for _, s := range sheets {
		m.AddSheet(s)
	}
	return m
}

// AddSheet creates a sheet if it does not exist yet.
func (m *MemoryStore) AddSheet(sheet string) {
	if _, ok := m.sheets[sheet]; !ok {
		m.sheets[sheet] = make(map[cellKey]interface{})
	}
}

// ProtectCell makes writes to a single cell fail.
func (m *MemoryStore) ProtectCell(sheet string, row, col int) {
	if m.protected[sheet] == nil {
		m.protected[sheet] = make(map[cellKey]bool)
	}
	m.protected[sheet][cellKey{row, col}] = true
}

// ProtectSheet makes every write to the sheet fail.
func (m *MemoryStore) ProtectSheet(sheet string) {
	m.locked[sheet] = true
}

func (m *MemoryStore) HasSheet(sheet string) bool {
	_, ok := m.sheets[sheet]
	return ok
}

func (m *MemoryStore) Get(sheet string, row, col int) (Value, error) {
	cells, ok := m.sheets[sheet]
	if !ok {
		return Value{}, SheetNotFound(sheet)
	}
	return Value{Raw: cells[cellKey{row, col}]}, nil
}

func (m *MemoryStore) Set(sheet string, row, col int, v interface{}) error {
	cells, ok := m.sheets[sheet]
	if !ok {
		return SheetNotFound(sheet)
	}
	if m.locked[sheet] || m.protected[sheet][cellKey{row, col}] {
		return fmt.Errorf("%w: %s!R%dC%d is protected", ErrWriteRejected, sheet, row, col)
	}
	cells[cellKey{row, col}] = normalize(v)
	return nil
}

// Len returns the number of non-nil cells of a sheet.
func (m *MemoryStore) Len(sheet string) int {
	n := 0
	for _, v := range m.sheets[sheet] {
		if v != nil {
			n++
		}
	}
	return n
}

// normalize stores every integer kind as float64 so reads are uniform.
func normalize(v interface{}) interface{} {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case float32:
		return float64(n)
	}
	return v
}

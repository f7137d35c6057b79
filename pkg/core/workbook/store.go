// Package workbook models the workpaper as a store of addressable cells.
// Engines only see the Store interface; MemoryStore backs tests and
// ExcelStore backs real .xlsx/.xlsm files.
package workbook

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrSheetNotFound is returned when a sheet does not exist in the store.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrWriteRejected is returned when the store refuses a cell write.
	ErrWriteRejected = errors.New("write rejected")
)

// SheetNotFound wraps ErrSheetNotFound with the sheet name.
func SheetNotFound(sheet string) error {
	return fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
}

// Store is the capability the core needs from a workpaper.
// Rows and columns are 1-indexed.
type Store interface {
	HasSheet(sheet string) bool
	Get(sheet string, row, col int) (Value, error)
	Set(sheet string, row, col int, v interface{}) error
}

// Value is the scalar content of one cell.
type Value struct {
	Raw interface{}
}

// IsEmpty reports whether the cell holds nothing.
func (v Value) IsEmpty() bool {
	if v.Raw == nil {
		return true
	}
	if s, ok := v.Raw.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// Number returns the numeric content of the cell.
// Text cells (header labels) are never numeric, even when they look like one.
func (v Value) Number() (float64, bool) {
	switch n := v.Raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}

// IsNumeric reports whether the cell holds a number.
func (v Value) IsNumeric() bool {
	_, ok := v.Number()
	return ok
}

// Text renders the cell as a string ("" for empty cells).
func (v Value) Text() string {
	switch t := v.Raw.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	if n, ok := v.Number(); ok {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return fmt.Sprint(v.Raw)
}

// CellRef converts an A1 reference ("I4") into row and column.
func CellRef(ref string) (row, col int, err error) {
	col, row, err = excelize.CellNameToCoordinates(ref)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid cell reference %q: %w", ref, err)
	}
	return row, col, nil
}

// GetRef reads a cell by A1 reference.
func GetRef(s Store, sheet, ref string) (Value, error) {
	row, col, err := CellRef(ref)
	if err != nil {
		return Value{}, err
	}
	return s.Get(sheet, row, col)
}

// SetRef writes a cell by A1 reference.
func SetRef(s Store, sheet, ref string, v interface{}) error {
	row, col, err := CellRef(ref)
	if err != nil {
		return err
	}
	return s.Set(sheet, row, col, v)
}

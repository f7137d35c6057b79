package workbook

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelStore is a Store over an .xlsx/.xlsm file opened with excelize.
// Formulas are not evaluated; cached values are read as-is.
type ExcelStore struct {
	f    *excelize.File
	path string
}

// OpenExcel opens an existing workbook.
func OpenExcel(path string) (*ExcelStore, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	return &ExcelStore{f: f, path: path}, nil
}

// NewExcelStore wraps an already opened excelize file.
func NewExcelStore(f *excelize.File, path string) *ExcelStore {
	return &ExcelStore{f: f, path: path}
}

// Path returns the file the store was opened from.
func (s *ExcelStore) Path() string {
	return s.path
}

// Sheets lists the sheet names in workbook order.
func (s *ExcelStore) Sheets() []string {
	return s.f.GetSheetList()
}

// RowCount returns the number of rows in use on a sheet.
func (s *ExcelStore) RowCount(sheet string) (int, error) {
	if !s.HasSheet(sheet) {
		return 0, SheetNotFound(sheet)
	}
	rows, err := s.f.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("failed to read rows of %s: %w", sheet, err)
	}
	return len(rows), nil
}

func (s *ExcelStore) HasSheet(sheet string) bool {
	idx, err := s.f.GetSheetIndex(sheet)
	return err == nil && idx >= 0
}

func (s *ExcelStore) Get(sheet string, row, col int) (Value, error) {
	if !s.HasSheet(sheet) {
		return Value{}, SheetNotFound(sheet)
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return Value{}, err
	}
	raw, err := s.f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return Value{}, fmt.Errorf("failed to read %s!%s: %w", sheet, cell, err)
	}
	if raw == "" {
		return Value{}, nil
	}
	typ, err := s.f.GetCellType(sheet, cell)
	if err != nil {
		return Value{}, fmt.Errorf("failed to read type of %s!%s: %w", sheet, cell, err)
	}
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeBool, excelize.CellTypeError:
		return Value{Raw: raw}, nil
	}
	if n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		return Value{Raw: n}, nil
	}
	return Value{Raw: raw}, nil
}

func (s *ExcelStore) Set(sheet string, row, col int, v interface{}) error {
	if !s.HasSheet(sheet) {
		return SheetNotFound(sheet)
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := s.f.SetCellValue(sheet, cell, v); err != nil {
		return fmt.Errorf("%w: %s!%s: %v", ErrWriteRejected, sheet, cell, err)
	}
	return nil
}

// Save writes the workbook back to its original path.
func (s *ExcelStore) Save() error {
	if err := s.f.Save(); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", s.path, err)
	}
	return nil
}

// SaveAs writes the workbook to a new path.
func (s *ExcelStore) SaveAs(path string) error {
	if err := s.f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	s.path = path
	return nil
}

// Close releases the underlying file.
func (s *ExcelStore) Close() error {
	return s.f.Close()
}

package ingest

import (
	"audit_workpaper/pkg/core/mapping"
	"audit_workpaper/pkg/core/naming"
	"audit_workpaper/pkg/core/workbook"
	"audit_workpaper/pkg/models"
	"log"
	"os"
	"strings"
)

const (
	headerBlock   = 5
	labelColumn   = 1
	firstValueCol = 2
	lastValueCol  = 4
)

// ParseStatementWorkbook reads a statement export: labels in column A,
// amounts in the first numeric cell of columns B..D. Only labels that
// resolve in table are kept, under the line's canonical key. The company
// name is taken from the top-left header block.
func ParseStatementWorkbook(path string, table *mapping.Table) StatementResult {
	st := table.Statement()
	if _, err := os.Stat(path); err != nil {
		log.Printf("[Ingest] %s workbook not found: %s", st, path)
		return Unavailable(st, "%s: %v", path, err)
	}

	xs, err := workbook.OpenExcel(path)
	if err != nil {
		return Unavailable(st, "%v", err)
	}
	defer xs.Close()

	sheets := xs.Sheets()
	if len(sheets) == 0 {
		return Unavailable(st, "%s has no sheets", path)
	}
	rows, err := xs.RowCount(sheets[0])
	if err != nil {
		return Unavailable(st, "%v", err)
	}
	return parseStatementSheet(xs, sheets[0], rows, table)
}

// parseStatementSheet scans rows 1..rows of sheet.
func parseStatementSheet(s workbook.Store, sheet string, rows int, table *mapping.Table) StatementResult {
	res := StatementResult{Statement: table.Statement(), Values: models.NamedValueMap{}, OK: true}

	var header []string
	for row := 1; row <= rows; row++ {
		if row <= headerBlock {
			header = append(header, headerCells(s, sheet, row)...)
		}

		label, err := s.Get(sheet, row, labelColumn)
		if err != nil {
			continue
		}
		text := strings.TrimSpace(label.Text())
		if text == "" || label.IsNumeric() {
			continue
		}
		line, ok := table.Match(text)
		if !ok {
			continue
		}
		for col := firstValueCol; col <= lastValueCol; col++ {
			v, err := s.Get(sheet, row, col)
			if err != nil {
				break
			}
			if n, ok := v.Number(); ok {
				res.Values[line.Key] = n
				break
			}
		}
	}

	res.Company = naming.ExtractFromLines(header)
	return res
}

func headerCells(s workbook.Store, sheet string, row int) []string {
	var out []string
	for col := 1; col <= headerBlock; col++ {
		v, err := s.Get(sheet, row, col)
		if err != nil || v.IsEmpty() || v.IsNumeric() {
			continue
		}
		out = append(out, v.Text())
	}
	return out
}

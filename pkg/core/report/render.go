package report

import (
	"audit_workpaper/pkg/core/utils"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Markdown renders the check report as Markdown with GFM tables.
func Markdown(c *Check) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", c.title())
	if c.Year != "" {
		fmt.Fprintf(&b, "审计年度: %s\n\n", c.Year)
	}
	if !c.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "生成时间: %s\n\n", c.GeneratedAt.Format("2006-01-02 15:04:05"))
	}

	for _, s := range c.sections() {
		fmt.Fprintf(&b, "## %s\n\n", s.title)
		if len(s.rows) == 0 {
			fmt.Fprintf(&b, "%s\n\n", s.empty)
			continue
		}
		b.WriteString("| " + strings.Join(s.headers, " | ") + " |\n")
		b.WriteString("|" + strings.Repeat(" --- |", len(s.headers)) + "\n")
		for _, row := range s.rows {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = markdownCell(v)
			}
			b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func markdownCell(v interface{}) string {
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'f', 2, 64)
	case string:
		return strings.ReplaceAll(t, "|", "\\|")
	}
	return fmt.Sprint(v)
}

// HTML renders the check report as an HTML fragment.
func HTML(c *Check) (string, error) {
	return utils.MarkdownToHTML(Markdown(c))
}

// Workbook renders the check report as a single-sheet workbook.
func Workbook(c *Check) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	if err != nil {
		return nil, err
	}

	set := func(col, row int, v interface{}, style int) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return err
		}
		if style != 0 {
			return f.SetCellStyle(sheetName, cell, cell, style)
		}
		return nil
	}

	if err := set(1, 1, c.title(), titleStyle); err != nil {
		return nil, err
	}
	if err := f.MergeCell(sheetName, "A1", "G1"); err != nil {
		return nil, err
	}
	if !c.GeneratedAt.IsZero() {
		if err := set(1, 2, "生成时间: "+c.GeneratedAt.Format("2006-01-02 15:04:05"), 0); err != nil {
			return nil, err
		}
	}

	row := 4
	for _, s := range c.sections() {
		if err := set(1, row, s.title, bold); err != nil {
			return nil, err
		}
		row++
		if len(s.rows) == 0 {
			if err := set(1, row, s.empty, 0); err != nil {
				return nil, err
			}
			row += 2
			continue
		}
		for i, h := range s.headers {
			if err := set(i+1, row, h, bold); err != nil {
				return nil, err
			}
		}
		row++
		for _, r := range s.rows {
			for i, v := range r {
				if err := set(i+1, row, v, 0); err != nil {
					return nil, err
				}
			}
			row++
		}
		row++
	}

	if err := f.SetColWidth(sheetName, "A", "A", 40); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheetName, "B", "G", 16); err != nil {
		return nil, err
	}
	return f, nil
}

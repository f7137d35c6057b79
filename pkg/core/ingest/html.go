package ingest

import (
	"audit_workpaper/pkg/core/mapping"
	"audit_workpaper/pkg/models"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// =============================================================================
// HTML STATEMENT TABLES
// =============================================================================

// ParseHTMLStatement extracts a statement from HTML tables: the first cell
// of each row is the label, the first following cell holding an amount is
// the value. The first row matching a line wins.
func ParseHTMLStatement(html string, table *mapping.Table) StatementResult {
	st := table.Statement()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Unavailable(st, "invalid html: %v", err)
	}

	res := StatementResult{Statement: st, Values: models.NamedValueMap{}}
	rowsSeen := 0

	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		rowsSeen++

		label := strings.TrimSpace(cells.First().Text())
		if label == "" {
			return
		}
		line, ok := table.Match(label)
		if !ok {
			return
		}
		if _, done := res.Values[line.Key]; done {
			return
		}

		cells.Slice(1, cells.Length()).EachWithBreak(func(j int, cell *goquery.Selection) bool {
			if v, ok := ParseAmount(cell.Text()); ok {
				res.Values[line.Key] = v
				return false
			}
			return true
		})
	})

	if rowsSeen == 0 {
		return Unavailable(st, "no table rows")
	}
	log.Printf("[Ingest] %s: %d rows, %d matched", st, rowsSeen, len(res.Values))
	res.OK = true
	return res
}

// ParseHTMLStatements parses the three statements from one document.
func ParseHTMLStatements(html string, cfg *mapping.Config) models.StatementSet {
	var set models.StatementSet
	for _, st := range models.StatementTypes {
		r := ParseHTMLStatement(html, cfg.Table(st))
		switch st {
		case models.BalanceSheet:
			set.BalanceSheet = r.ValuesOrEmpty()
		case models.IncomeStatement:
			set.IncomeStatement = r.ValuesOrEmpty()
		case models.CashFlow:
			set.CashFlow = r.ValuesOrEmpty()
		}
	}
	return set
}

// Package writeback transfers parsed statement values into workpaper cells
// (回填) through the alias mapping tables.
package writeback

import (
	"audit_workpaper/pkg/core/mapping"
	"audit_workpaper/pkg/core/workbook"
	"audit_workpaper/pkg/models"
	"fmt"
	"log"
	"sort"
)

// Outcome is what happened to one source item.
type Outcome string

const (
	Written    Outcome = "written"
	Unmatched  Outcome = "unmatched"
	Derived    Outcome = "derived"
	Superseded Outcome = "superseded" // another name of the same line was written
	Failed     Outcome = "failed"
)

// ItemResult is the explicit per-item result of a write-back.
type ItemResult struct {
	Name    string                    `json:"name"`
	Outcome Outcome                   `json:"outcome"`
	Line    string                    `json:"line,omitempty"`
	Pos     *models.StatementPosition `json:"position,omitempty"`
	Reason  string                    `json:"reason,omitempty"`
}

// Failure is one rejected write.
type Failure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Result counts the outcomes of one statement's write-back.
// Skipped covers unmatched names, derived positions and superseded names.
type Result struct {
	Statement models.StatementType `json:"statement"`
	Written   int                  `json:"written"`
	Skipped   int                  `json:"skipped"`
	Failed    []Failure            `json:"failed"`
	Items     []ItemResult         `json:"items"`
}

func (r *Result) record(item ItemResult) {
	switch item.Outcome {
	case Written:
		r.Written++
	case Unmatched, Derived, Superseded:
		r.Skipped++
	case Failed:
		r.Failed = append(r.Failed, Failure{Name: item.Name, Reason: item.Reason})
	}
	r.Items = append(r.Items, item)
}

// Engine writes statement values into one column of the mapping sheet.
// Callers must not run two engines against the same store at once.
type Engine struct {
	store workbook.Store
	cfg   *mapping.Config
}

func NewEngine(store workbook.Store, cfg *mapping.Config) *Engine {
	return &Engine{store: store, cfg: cfg}
}

// WriteBack writes every resolvable, non-derived item of source into the
// role column. Items are processed in sorted name order; a rejected write is
// recorded and the remaining items are still attempted. Re-running with the
// same input writes the same cells with the same values.
//
// When several names resolve to one line only one is written: the name
// closest to the canonical wording (key, then aliases in order), otherwise
// the first in sorted order. This is the value reconciliation reads back.
func (e *Engine) WriteBack(source models.NamedValueMap, st models.StatementType, role models.ColumnRole) Result {
	res := Result{Statement: st, Failed: []Failure{}, Items: []ItemResult{}}

	names := make([]string, 0, len(source))
	for name := range source {
		names = append(names, name)
	}
	sort.Strings(names)

	winners := e.winners(names, st)
	for _, name := range names {
		line, ok := e.cfg.Resolve(st, name)
		if ok && !line.Derived && winners[line.Key] != name {
			pos := line.Position(role)
			res.record(ItemResult{
				Name:    name,
				Outcome: Superseded,
				Line:    line.Key,
				Pos:     &pos,
				Reason:  fmt.Sprintf("%s written from %s", line.Key, winners[line.Key]),
			})
			continue
		}
		res.record(e.writeOne(name, source[name], st, role))
	}
	if len(res.Failed) > 0 {
		log.Printf("[WriteBack] %s: %d written, %d skipped, %d failed", st, res.Written, res.Skipped, len(res.Failed))
	}
	return res
}

// winners picks, per canonical line, the source name that is written.
// names must be sorted.
func (e *Engine) winners(names []string, st models.StatementType) map[string]string {
	rank := func(line mapping.Line, name string) int {
		if i := line.AliasIndex(name); i >= 0 {
			return i
		}
		return len(line.Aliases)
	}
	winners := make(map[string]string)
	for _, name := range names {
		line, ok := e.cfg.Resolve(st, name)
		if !ok || line.Derived {
			continue
		}
		cur, seen := winners[line.Key]
		if !seen || rank(line, name) < rank(line, cur) {
			winners[line.Key] = name
		}
	}
	return winners
}

func (e *Engine) writeOne(name string, value float64, st models.StatementType, role models.ColumnRole) ItemResult {
	line, ok := e.cfg.Resolve(st, name)
	if !ok {
		return ItemResult{Name: name, Outcome: Unmatched}
	}
	pos := line.Position(role)
	item := ItemResult{Name: name, Line: line.Key, Pos: &pos}
	if line.Derived {
		item.Outcome = Derived
		return item
	}

	sheet, row, col := e.cfg.Cell(pos)
	if err := e.store.Set(sheet, row, col, value); err != nil {
		log.Printf("[WriteBack] failed to write %s (row %d): %v", name, row, err)
		item.Outcome = Failed
		item.Reason = err.Error()
		return item
	}
	item.Outcome = Written
	return item
}

// PriorYearResult is the outcome of writing last year's audited income and
// cash-flow statements into the opening column.
type PriorYearResult struct {
	Income   Result `json:"income"`
	CashFlow Result `json:"cash_flow"`
}

// WritePriorYear writes the prior-year income statement and cash-flow
// statement into the prior-period column. The balance sheet is not written;
// its opening balances are carried by the template.
func (e *Engine) WritePriorYear(income, cashFlow models.NamedValueMap) PriorYearResult {
	return PriorYearResult{
		Income:   e.WriteBack(income, models.IncomeStatement, models.PriorPeriod),
		CashFlow: e.WriteBack(cashFlow, models.CashFlow, models.PriorPeriod),
	}
}

// Package reconcile compares parsed statement values with the workpaper
// (核对) and extracts pre-computed differences from the notes sheet.
package reconcile

import (
	"audit_workpaper/pkg/core/mapping"
	"audit_workpaper/pkg/core/workbook"
	"audit_workpaper/pkg/models"
	"log"
	"math"
	"strings"
)

// DefaultTolerance is the materiality threshold in currency units.
const DefaultTolerance = 1.0

// Labels used in discrepancy records.
const (
	LabelStatements    = "财务报表"
	LabelClosing       = "Z3-2期末"
	LabelPriorAudit    = "上年审计报告"
	LabelOpening       = "Z3-2期初"
	LabelNotesClosing  = "期末"
	LabelNotesVariance = "差异"
)

// TargetLookup reads the workpaper value at a position.
type TargetLookup func(pos models.StatementPosition) (workbook.Value, error)

// Reconcile diffs source against the target for every line of table, in
// table order. Lines whose target is text are structural and skipped, an
// empty target counts as 0, and lines missing from source are skipped. A
// record is emitted only when |source - target| > tolerance.
func Reconcile(
	source models.NamedValueMap,
	target TargetLookup,
	table *mapping.Table,
	role models.ColumnRole,
	sourceLabel, targetLabel string,
	tolerance float64,
) []models.DiffRecord {
	var diffs []models.DiffRecord
	if table == nil || len(source) == 0 {
		return diffs
	}

	for _, line := range table.Lines() {
		v, err := target(line.Position(role))
		if err != nil {
			continue
		}
		var tgt float64
		if !v.IsEmpty() {
			n, ok := v.Number()
			if !ok {
				continue
			}
			tgt = n
		}

		src, ok := table.Lookup(source, line)
		if !ok {
			continue
		}

		if rec, ok := NewDiff(line.Key, src, tgt, sourceLabel, targetLabel, tolerance); ok {
			diffs = append(diffs, rec)
		}
	}
	return diffs
}

// NewDiff builds a DiffRecord when the difference is material.
func NewDiff(name string, source, target float64, sourceLabel, targetLabel string, tolerance float64) (models.DiffRecord, bool) {
	diff := source - target
	if math.Abs(diff) <= tolerance {
		return models.DiffRecord{}, false
	}
	pct := 0.0
	if source != 0 {
		pct = diff / source * 100
	}
	return models.DiffRecord{
		ItemName:     name,
		SourceValue:  source,
		TargetValue:  target,
		AbsoluteDiff: diff,
		PercentDiff:  pct,
		SourceLabel:  sourceLabel,
		TargetLabel:  targetLabel,
	}, true
}

// =============================================================================
// ENGINE (workpaper-bound passes)
// =============================================================================

// AnomalyScan locates the pre-computed difference column of the notes sheet.
type AnomalyScan struct {
	Sheet      string
	FirstRow   int
	LastRow    int
	NameColumn int
	DiffColumn int
}

// DefaultAnomalyScan is Z3-5 rows 7..49, names in A, differences in I.
func DefaultAnomalyScan() AnomalyScan {
	return AnomalyScan{Sheet: "Z3-5", FirstRow: 7, LastRow: 49, NameColumn: 1, DiffColumn: 9}
}

// Engine runs the reconciliation passes against one workpaper.
type Engine struct {
	store     workbook.Store
	cfg       *mapping.Config
	tolerance float64
	scan      AnomalyScan
}

// NewEngine creates an engine with the default tolerance and anomaly scan.
func NewEngine(store workbook.Store, cfg *mapping.Config) *Engine {
	return &Engine{store: store, cfg: cfg, tolerance: DefaultTolerance, scan: DefaultAnomalyScan()}
}

// WithTolerance sets the materiality threshold.
func (e *Engine) WithTolerance(tol float64) *Engine {
	e.tolerance = tol
	return e
}

// WithAnomalyScan replaces the notes sheet scan range.
func (e *Engine) WithAnomalyScan(scan AnomalyScan) *Engine {
	e.scan = scan
	return e
}

// Tolerance returns the materiality threshold in use.
func (e *Engine) Tolerance() float64 {
	return e.tolerance
}

func (e *Engine) lookup(pos models.StatementPosition) (workbook.Value, error) {
	sheet, row, col := e.cfg.Cell(pos)
	return e.store.Get(sheet, row, col)
}

// Statement reconciles one statement against one period column of the
// mapping sheet. A missing mapping sheet yields no records.
func (e *Engine) Statement(source models.NamedValueMap, st models.StatementType, role models.ColumnRole, sourceLabel, targetLabel string) []models.DiffRecord {
	sheet := e.cfg.Layout().Sheet
	if !e.store.HasSheet(sheet) {
		log.Printf("[Reconcile] sheet %s not found, skipping %s", sheet, st)
		return nil
	}
	return Reconcile(source, e.lookup, e.cfg.Table(st), role, sourceLabel, targetLabel, e.tolerance)
}

// CurrentPeriod compares the financial statements with the closing column
// (balance sheet, then income statement).
func (e *Engine) CurrentPeriod(statements models.StatementSet) []models.DiffRecord {
	var diffs []models.DiffRecord
	for _, st := range []models.StatementType{models.BalanceSheet, models.IncomeStatement} {
		diffs = append(diffs, e.Statement(statements.Get(st), st, models.CurrentPeriod, LabelStatements, LabelClosing)...)
	}
	return diffs
}

// PriorPeriod compares the prior-year audited balance sheet with the opening
// column. The income and cash-flow statements are written into that column
// before this pass, and their subtotal rows are formulas that are never
// recalculated, so they are not compared. No prior data means no records.
func (e *Engine) PriorPeriod(prior models.StatementSet) []models.DiffRecord {
	var diffs []models.DiffRecord
	if prior.Empty() {
		return diffs
	}
	return append(diffs, e.Statement(prior.BalanceSheet, models.BalanceSheet, models.PriorPeriod, LabelPriorAudit, LabelOpening)...)
}

// LocalAnomalies extracts every named row of the notes sheet whose
// pre-computed difference exceeds the tolerance. The error is non-nil only
// when the sheet cannot be read at all.
func (e *Engine) LocalAnomalies() ([]models.DiffRecord, error) {
	return DetectLocalAnomalies(e.store, e.scan, e.tolerance)
}

// DetectLocalAnomalies thresholds the difference column of scan. Rows
// without a name or with a non-numeric difference are ignored.
func DetectLocalAnomalies(store workbook.Store, scan AnomalyScan, tolerance float64) ([]models.DiffRecord, error) {
	var diffs []models.DiffRecord
	if !store.HasSheet(scan.Sheet) {
		return diffs, workbook.SheetNotFound(scan.Sheet)
	}
	for row := scan.FirstRow; row <= scan.LastRow; row++ {
		name, err := store.Get(scan.Sheet, row, scan.NameColumn)
		if err != nil {
			return diffs, err
		}
		label := strings.TrimSpace(name.Text())
		if label == "" {
			continue
		}
		v, err := store.Get(scan.Sheet, row, scan.DiffColumn)
		if err != nil {
			return diffs, err
		}
		d, ok := v.Number()
		if !ok || math.Abs(d) <= tolerance {
			continue
		}
		diffs = append(diffs, models.DiffRecord{
			ItemName:     label,
			TargetValue:  d,
			AbsoluteDiff: d,
			SourceLabel:  LabelNotesClosing,
			TargetLabel:  LabelNotesVariance,
		})
	}
	return diffs, nil
}

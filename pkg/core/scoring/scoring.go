// Package scoring grades a workpaper on six weighted dimensions (六维度评分).
//
// Every dimension starts at full credit and is only reduced when a problem
// is detected. Dimensions never read each other's points.
package scoring

import (
	"audit_workpaper/pkg/core/workbook"
	"audit_workpaper/pkg/models"
	"fmt"
	"log"
	"strings"
)

// DimensionID identifies one of the six fixed dimensions.
type DimensionID string

const (
	D1StatementBalance DimensionID = "D1_报表平衡"
	D2TableHeaders     DimensionID = "D2_表格表头"
	D3AccountMapping   DimensionID = "D3_科目映射"
	D4BasicInfo        DimensionID = "D4_基本情况"
	D5NotesBalance     DimensionID = "D5_附注平衡"
	D6DataComparison   DimensionID = "D6_数据比对"
)

// DimensionOrder is the fixed report order.
var DimensionOrder = []DimensionID{
	D1StatementBalance, D2TableHeaders, D3AccountMapping,
	D4BasicInfo, D5NotesBalance, D6DataComparison,
}

// Dimension is one scored dimension. 0 <= Actual <= Max.
type Dimension struct {
	ID      DimensionID `json:"id"`
	Max     int         `json:"max"`
	Actual  int         `json:"actual"`
	Details []string    `json:"details"`
}

func newDimension(id DimensionID, max int) *Dimension {
	return &Dimension{ID: id, Max: max, Actual: max, Details: []string{}}
}

func (d *Dimension) set(points int) {
	if points < 0 {
		points = 0
	}
	if points > d.Max {
		points = d.Max
	}
	d.Actual = points
}

func (d *Dimension) note(format string, args ...interface{}) {
	d.Details = append(d.Details, fmt.Sprintf(format, args...))
}

// Rules are the workpaper locations the dimensions inspect.
type Rules struct {
	CrossCheckSheet   string   // Z7
	CrossCheckCells   []string // I4, I5, J4, J5
	CrossCheckMarkers []string // 正确, 平衡
	MappingSheet      string   // Z3-2
	BasicInfoSheet    string   // Z3-4
	BasicInfoCells    []string // A7, A10
	InvalidMarkers    []string // encoding corruption sentinels
}

// DefaultRules returns the rules of the standard workpaper template.
func DefaultRules() Rules {
	return Rules{
		CrossCheckSheet:   "Z7",
		CrossCheckCells:   []string{"I4", "I5", "J4", "J5"},
		CrossCheckMarkers: []string{"正确", "平衡"},
		MappingSheet:      "Z3-2",
		BasicInfoSheet:    "Z3-4",
		BasicInfoCells:    []string{"A7", "A10"},
		InvalidMarkers:    []string{"\ufffd", "\x00"},
	}
}

// DiffContext carries reconciliation output the scorer consumes.
// AnomalyErr is set when the notes sheet could not be read.
type DiffContext struct {
	Anomalies  []models.DiffRecord
	AnomalyErr error
}

// Scores maps each dimension to its result.
type Scores map[DimensionID]*Dimension

// Ordered returns the dimensions in DimensionOrder.
func (s Scores) Ordered() []Dimension {
	out := make([]Dimension, 0, len(DimensionOrder))
	for _, id := range DimensionOrder {
		if d, ok := s[id]; ok {
			out = append(out, *d)
		}
	}
	return out
}

// Engine evaluates the six dimensions.
type Engine struct {
	rules Rules
}

func NewEngine(rules Rules) *Engine {
	return &Engine{rules: rules}
}

// Score evaluates every dimension against store and diffs.
func (e *Engine) Score(store workbook.Store, diffs DiffContext) Scores {
	scores := Scores{}
	for _, d := range []*Dimension{
		e.statementBalance(store),
		e.tableHeaders(),
		e.accountMapping(store),
		e.basicInfo(store),
		e.notesBalance(diffs),
		e.dataComparison(),
	} {
		scores[d.ID] = d
	}
	return scores
}

// statementBalance (D1, 30): every cross-check cell must show a balanced or
// correct marker. Anything else, including an unreadable sheet, scores 60%.
func (e *Engine) statementBalance(store workbook.Store) *Dimension {
	d := newDimension(D1StatementBalance, 30)
	floor := d.Max * 60 / 100

	if !store.HasSheet(e.rules.CrossCheckSheet) {
		d.set(floor)
		d.note("检查失败: %v", workbook.SheetNotFound(e.rules.CrossCheckSheet))
		log.Printf("[Scoring] D1 fallback: sheet %s not found", e.rules.CrossCheckSheet)
		return d
	}

	allCorrect := true
	for _, ref := range e.rules.CrossCheckCells {
		v, err := workbook.GetRef(store, e.rules.CrossCheckSheet, ref)
		if err != nil {
			d.set(floor)
			d.note("检查失败: %v", err)
			return d
		}
		text := v.Text()
		switch {
		case containsAny(text, e.rules.CrossCheckMarkers):
			d.note("%s: %s", ref, text)
		case text == "":
			allCorrect = false
			d.note("%s: 未填写", ref)
		default:
			allCorrect = false
			d.note("%s: 未平衡（%s）", ref, text)
		}
	}
	if !allCorrect {
		d.set(floor)
	}
	return d
}

// tableHeaders (D2, 10) has no check yet and always awards full credit.
func (e *Engine) tableHeaders() *Dimension {
	d := newDimension(D2TableHeaders, 10)
	d.note("表头检查通过")
	return d
}

// accountMapping (D3, 10): the mapping sheet must exist.
func (e *Engine) accountMapping(store workbook.Store) *Dimension {
	d := newDimension(D3AccountMapping, 10)
	if !store.HasSheet(e.rules.MappingSheet) {
		d.set(d.Max / 2)
		d.note("%s工作表不存在", e.rules.MappingSheet)
		return d
	}
	d.note("%s科目映射检查通过", e.rules.MappingSheet)
	return d
}

// basicInfo (D4, 10): the basic information cells must not contain
// encoding corruption markers. Unreadable cells score 50%.
func (e *Engine) basicInfo(store workbook.Store) *Dimension {
	d := newDimension(D4BasicInfo, 10)
	for _, ref := range e.rules.BasicInfoCells {
		v, err := workbook.GetRef(store, e.rules.BasicInfoSheet, ref)
		if err != nil {
			d.set(d.Max / 2)
			d.note("检查失败: %v", err)
			return d
		}
		if containsAny(v.Text(), e.rules.InvalidMarkers) {
			d.set(0)
			d.note("发现特殊字符")
			return d
		}
	}
	d.note("基本情况检查通过")
	return d
}

// notesBalance (D5, 10): one point off per material difference in the
// notes sheet. An unreadable sheet scores 50%.
func (e *Engine) notesBalance(diffs DiffContext) *Dimension {
	d := newDimension(D5NotesBalance, 10)
	if diffs.AnomalyErr != nil {
		d.set(d.Max / 2)
		d.note("检查失败: %v", diffs.AnomalyErr)
		return d
	}
	n := len(diffs.Anomalies)
	if n == 0 {
		d.note("附注平衡检查通过")
		return d
	}
	d.set(d.Max - n)
	d.note("发现%d处差异", n)
	return d
}

// dataComparison (D6, 30) needs a reviewer's confirmation and is fixed at
// 80% until a reviewed comparison is recorded.
func (e *Engine) dataComparison() *Dimension {
	d := newDimension(D6DataComparison, 30)
	d.set(d.Max * 80 / 100)
	d.note("默认评分（需人工确认）")
	return d
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(s, m) {
			return true
		}
	}
	return false
}

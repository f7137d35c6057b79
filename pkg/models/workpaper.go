package models

// StatementType identifies which financial statement a line item belongs to.
type StatementType string

const (
	BalanceSheet    StatementType = "balance_sheet"
	IncomeStatement StatementType = "income_statement"
	CashFlow        StatementType = "cash_flow"
)

// StatementTypes lists the statement types in workpaper order.
var StatementTypes = []StatementType{BalanceSheet, IncomeStatement, CashFlow}

func (s StatementType) Valid() bool {
	switch s {
	case BalanceSheet, IncomeStatement, CashFlow:
		return true
	}
	return false
}

// ColumnRole selects the period column of a workpaper row.
type ColumnRole string

const (
	CurrentPeriod ColumnRole = "current_period" // 年末/本年 (column C)
	PriorPeriod   ColumnRole = "prior_period"   // 年初/上年 (column D)
)

// StatementPosition addresses one value cell of the workpaper.
type StatementPosition struct {
	Statement StatementType `json:"statement"`
	Row       int           `json:"row"`
	Column    ColumnRole    `json:"column"`
}

// NamedValueMap is a parser's output: line item name -> amount.
type NamedValueMap map[string]float64

// Clone returns an independent copy of the map.
func (m NamedValueMap) Clone() NamedValueMap {
	out := make(NamedValueMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// StatementSet bundles the three statements extracted from one source.
type StatementSet struct {
	BalanceSheet    NamedValueMap `json:"balance_sheet"`
	IncomeStatement NamedValueMap `json:"income_statement"`
	CashFlow        NamedValueMap `json:"cash_flow"`
}

// Get returns the values for a statement type (nil when absent).
func (s StatementSet) Get(st StatementType) NamedValueMap {
	switch st {
	case BalanceSheet:
		return s.BalanceSheet
	case IncomeStatement:
		return s.IncomeStatement
	case CashFlow:
		return s.CashFlow
	}
	return nil
}

// Empty reports whether no statement carries any value.
func (s StatementSet) Empty() bool {
	return len(s.BalanceSheet) == 0 && len(s.IncomeStatement) == 0 && len(s.CashFlow) == 0
}

// DiffRecord is one reported discrepancy between a source and the workpaper.
type DiffRecord struct {
	ItemName     string  `json:"item_name"`
	SourceValue  float64 `json:"source_value"`
	TargetValue  float64 `json:"target_value"`
	AbsoluteDiff float64 `json:"absolute_diff"` // source - target
	PercentDiff  float64 `json:"percent_diff"`  // absolute_diff / source * 100, 0 when source is 0
	SourceLabel  string  `json:"source_label"`
	TargetLabel  string  `json:"target_label"`
}

// CompanyNameCandidate is a company name extracted from one source.
type CompanyNameCandidate struct {
	SourceLabel   string `json:"source_label"`
	ExtractedName string `json:"extracted_name"`
}

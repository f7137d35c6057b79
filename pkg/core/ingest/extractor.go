package ingest

import (
	"audit_workpaper/pkg/core/utils"
	"audit_workpaper/pkg/models"
	"fmt"
	"os"
	"strings"
)

// ExtractorOutput is the document an external statement extractor (for
// example a PDF parser) hands over. Extractors often emit slightly broken
// JSON, so parsing is lenient.
type ExtractorOutput struct {
	BalanceSheet    models.NamedValueMap `json:"balance_sheet"`
	IncomeStatement models.NamedValueMap `json:"income_statement"`
	CashFlow        models.NamedValueMap `json:"cash_flow"`
	Company         string               `json:"company_name,omitempty"`
	Success         *bool                `json:"success,omitempty"`
	Error           string               `json:"error,omitempty"`
}

// ParseExtractorJSON parses extractor output: strict JSON first, then
// repaired JSON, then Hjson. An output flagged unsuccessful, or one carrying
// no values, is ErrSourceUnavailable.
func ParseExtractorJSON(raw string) (*ExtractorOutput, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty extractor output", ErrSourceUnavailable)
	}
	var out ExtractorOutput
	if _, err := utils.SmartParse(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if out.Success != nil && !*out.Success {
		msg := out.Error
		if msg == "" {
			msg = "extractor reported failure"
		}
		return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, msg)
	}
	if out.Set().Empty() {
		return nil, fmt.Errorf("%w: extractor output has no values", ErrSourceUnavailable)
	}
	return &out, nil
}

// LoadExtractorJSON reads and parses an extractor output file.
func LoadExtractorJSON(path string) (*ExtractorOutput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return ParseExtractorJSON(string(data))
}

// Set returns the statements, with empty maps for missing ones.
func (o *ExtractorOutput) Set() models.StatementSet {
	set := models.StatementSet{
		BalanceSheet:    o.BalanceSheet,
		IncomeStatement: o.IncomeStatement,
		CashFlow:        o.CashFlow,
	}
	if set.BalanceSheet == nil {
		set.BalanceSheet = models.NamedValueMap{}
	}
	if set.IncomeStatement == nil {
		set.IncomeStatement = models.NamedValueMap{}
	}
	if set.CashFlow == nil {
		set.CashFlow = models.NamedValueMap{}
	}
	return set
}

// Results splits the output into per-statement results.
func (o *ExtractorOutput) Results() []StatementResult {
	set := o.Set()
	out := make([]StatementResult, 0, len(models.StatementTypes))
	for _, st := range models.StatementTypes {
		vals := set.Get(st)
		r := StatementResult{Statement: st, Values: vals, Company: o.Company, OK: len(vals) > 0}
		if !r.OK {
			r.Err = fmt.Errorf("%w: no %s values", ErrSourceUnavailable, st)
		}
		out = append(out, r)
	}
	return out
}

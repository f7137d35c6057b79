package mapping

import (
	"audit_workpaper/pkg/core/utils"
	"audit_workpaper/pkg/models"
	"fmt"
	"os"
	"strings"
)

// Overrides adjust the built-in tables for one workpaper template.
// The file is HJSON so reviewers can comment why an alias exists:
//
//	{
//	  cash_flow: [
//	    # parser output of one bank's statement
//	    { key: "收到的税费返还", aliases: ["税费返还"] }
//	  ]
//	}
type Overrides struct {
	BalanceSheet    []LineOverride `json:"balance_sheet"`
	IncomeStatement []LineOverride `json:"income_statement"`
	CashFlow        []LineOverride `json:"cash_flow"`
}

// LineOverride extends an existing line (matched by key) or appends a new one.
type LineOverride struct {
	Key     string   `json:"key"`
	Row     int      `json:"row,omitempty"`
	Derived *bool    `json:"derived,omitempty"`
	Aliases []string `json:"aliases,omitempty"`
}

// LoadOverrides reads an HJSON override file.
func LoadOverrides(path string) (*Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias overrides %s: %w", path, err)
	}
	return ParseOverrides(string(data))
}

// ParseOverrides parses HJSON override content.
func ParseOverrides(content string) (*Overrides, error) {
	var ov Overrides
	if err := utils.ParseHJSONToStruct(content, &ov); err != nil {
		return nil, &ConfigurationError{Reason: "invalid alias override file: " + err.Error()}
	}
	return &ov, nil
}

func (o *Overrides) forStatement(st models.StatementType) []LineOverride {
	switch st {
	case models.BalanceSheet:
		return o.BalanceSheet
	case models.IncomeStatement:
		return o.IncomeStatement
	case models.CashFlow:
		return o.CashFlow
	}
	return nil
}

// apply merges the overrides of one statement into lines. Ambiguity is left
// to NewTable so built-in and override lines are validated the same way.
func (o *Overrides) apply(st models.StatementType, lines []Line) ([]Line, error) {
	for _, ov := range o.forStatement(st) {
		key := strings.TrimSpace(ov.Key)
		if key == "" {
			return nil, &ConfigurationError{Statement: st, Reason: "override without key"}
		}
		found := false
		for i := range lines {
			if lines[i].Key != key {
				continue
			}
			found = true
			if ov.Row > 0 {
				lines[i].Row = ov.Row
			}
			if ov.Derived != nil {
				lines[i].Derived = *ov.Derived
			}
			lines[i].Aliases = append(lines[i].Aliases, ov.Aliases...)
			break
		}
		if found {
			continue
		}
		if ov.Row < 1 {
			return nil, &ConfigurationError{Statement: st, Alias: key, Reason: "new override line needs a row"}
		}
		line := Line{Key: key, Row: ov.Row, Aliases: ov.Aliases}
		if ov.Derived != nil {
			line.Derived = *ov.Derived
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Package validate checks the internal consistency of parsed financial
// statements before they are reconciled against the workpaper.
package validate

import (
	"audit_workpaper/pkg/core/mapping"
	"audit_workpaper/pkg/models"
	"math"
)

// =============================================================================
// CROSS-STATEMENT LINKAGE VALIDATION (跨报表勾稽验证)
// =============================================================================

// Term is one operand of a linkage check: a canonical line of a statement.
type Term struct {
	Statement models.StatementType
	Key       string
	Sign      float64 // +1 or -1
}

func plus(st models.StatementType, key string) Term  { return Term{Statement: st, Key: key, Sign: 1} }
func minus(st models.StatementType, key string) Term { return Term{Statement: st, Key: key, Sign: -1} }

// Rule states sum(Left) == sum(Right).
type Rule struct {
	Name  string
	Left  []Term
	Right []Term
}

// Check is the outcome of one rule. Skipped means an operand was missing
// from the source; a skipped check neither passes nor fails.
type Check struct {
	Name       string  `json:"name"`
	Left       float64 `json:"left"`
	Right      float64 `json:"right"`
	Difference float64 `json:"difference"`
	Passed     bool    `json:"passed"`
	Skipped    bool    `json:"skipped,omitempty"`
	Missing    string  `json:"missing,omitempty"`
}

// LinkageReport contains all cross-statement validation results
type LinkageReport struct {
	Checks       []Check  `json:"checks"`
	AllPassed    bool     `json:"all_passed"`
	FailedChecks []string `json:"failed_checks,omitempty"`
	Tolerance    float64  `json:"tolerance"`
}

// DefaultRules are the standard 勾稽 relations of the Chinese statement
// formats.
func DefaultRules() []Rule {
	bs, is, cf := models.BalanceSheet, models.IncomeStatement, models.CashFlow
	return []Rule{
		{
			Name:  "资产总计 = 负债和所有者权益总计",
			Left:  []Term{plus(bs, "资产总计")},
			Right: []Term{plus(bs, "负债和所有者权益总计")},
		},
		{
			Name:  "负债合计 + 所有者权益合计 = 负债和所有者权益总计",
			Left:  []Term{plus(bs, "负债合计"), plus(bs, "所有者权益合计")},
			Right: []Term{plus(bs, "负债和所有者权益总计")},
		},
		{
			Name:  "利润总额 - 所得税费用 = 净利润",
			Left:  []Term{plus(is, "利润总额"), minus(is, "所得税费用")},
			Right: []Term{plus(is, "净利润")},
		},
		{
			Name: "经营 + 投资 + 筹资 + 汇率影响 = 现金净增加额",
			Left: []Term{
				plus(cf, "经营活动产生的现金流量净额"),
				plus(cf, "投资活动产生的现金流量净额"),
				plus(cf, "筹资活动产生的现金流量净额"),
			},
			Right: []Term{plus(cf, "现金及现金等价物净增加额"), minus(cf, "汇率变动对现金及现金等价物的影响")},
		},
		{
			Name:  "期初现金 + 现金净增加额 = 期末现金",
			Left:  []Term{plus(cf, "期初现金及现金等价物余额"), plus(cf, "现金及现金等价物净增加额")},
			Right: []Term{plus(cf, "期末现金及现金等价物余额")},
		},
		{
			Name:  "期末现金 = 货币资金",
			Left:  []Term{plus(cf, "期末现金及现金等价物余额")},
			Right: []Term{plus(bs, "货币资金")},
		},
	}
}

// optional lines default to zero when absent
var optional = map[string]bool{
	"汇率变动对现金及现金等价物的影响": true,
}

// Validator evaluates rules against a statement set.
type Validator struct {
	tables    *mapping.Config
	rules     []Rule
	tolerance float64
}

// NewValidator creates a validator with the default rules.
func NewValidator(tables *mapping.Config, tolerance float64) *Validator {
	return &Validator{tables: tables, rules: DefaultRules(), tolerance: tolerance}
}

// WithRules replaces the rule set.
func (v *Validator) WithRules(rules []Rule) *Validator {
	v.rules = rules
	return v
}

// ValidateLinkages performs all cross-statement validations for one
// statement set.
func (v *Validator) ValidateLinkages(set models.StatementSet) *LinkageReport {
	report := &LinkageReport{AllPassed: true, Tolerance: v.tolerance, Checks: []Check{}}
	for _, rule := range v.rules {
		c := v.check(set, rule)
		report.Checks = append(report.Checks, c)
		if !c.Skipped && !c.Passed {
			report.AllPassed = false
			report.FailedChecks = append(report.FailedChecks, c.Name)
		}
	}
	return report
}

func (v *Validator) check(set models.StatementSet, rule Rule) Check {
	c := Check{Name: rule.Name}
	var ok bool
	if c.Left, c.Missing, ok = v.sum(set, rule.Left); !ok {
		c.Skipped = true
		return c
	}
	if c.Right, c.Missing, ok = v.sum(set, rule.Right); !ok {
		c.Skipped = true
		return c
	}
	c.Difference = c.Left - c.Right
	c.Passed = math.Abs(c.Difference) <= v.tolerance
	return c
}

func (v *Validator) sum(set models.StatementSet, terms []Term) (float64, string, bool) {
	var total float64
	for _, t := range terms {
		val, ok := v.value(set, t)
		if !ok {
			if optional[t.Key] {
				continue
			}
			return 0, t.Key, false
		}
		total += t.Sign * val
	}
	return total, "", true
}

func (v *Validator) value(set models.StatementSet, t Term) (float64, bool) {
	source := set.Get(t.Statement)
	if len(source) == 0 {
		return 0, false
	}
	table := v.tables.Table(t.Statement)
	if table == nil {
		return 0, false
	}
	line, ok := v.tables.Resolve(t.Statement, t.Key)
	if !ok {
		return 0, false
	}
	return table.Lookup(source, line)
}

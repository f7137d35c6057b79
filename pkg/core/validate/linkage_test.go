package validate

import (
	"audit_workpaper/pkg/core/mapping"
	"audit_workpaper/pkg/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	tables, err := mapping.DefaultConfig(mapping.DefaultLayout(), nil)
	require.NoError(t, err)
	return NewValidator(tables, 1.0)
}

func linkedSet() models.StatementSet {
	return models.StatementSet{
		BalanceSheet: models.NamedValueMap{
			"货币资金":              300,
			"资产总计":              1000,
			"负债合计":              400,
			"所有者权益（或股东权益）合计":    600,
			"负债和所有者权益（或股东权益）总计": 1000,
		},
		IncomeStatement: models.NamedValueMap{
			"利润总额":  120,
			"所得税费用": 30,
			"净利润":   90,
		},
		CashFlow: models.NamedValueMap{
			"经营活动产生的现金流量净额": 150,
			"投资活动产生的现金流量净额": -80,
			"筹资活动产生的现金流量净额": -20,
			"现金及现金等价物净增加额":  50,
			"期初现金余额":        250,
			"期末现金及现金等价物余额":  300,
		},
	}
}

func TestValidateLinkages_AllPass(t *testing.T) {
	report := newValidator(t).ValidateLinkages(linkedSet())
	assert.True(t, report.AllPassed)
	assert.Empty(t, report.FailedChecks)
	require.Len(t, report.Checks, len(DefaultRules()))
	for _, c := range report.Checks {
		assert.True(t, c.Passed, c.Name)
		assert.False(t, c.Skipped, c.Name)
	}
}

func TestValidateLinkages_Mismatch(t *testing.T) {
	set := linkedSet()
	set.IncomeStatement["净利润"] = 95
	set.BalanceSheet["货币资金"] = 300.5 // within tolerance

	report := newValidator(t).ValidateLinkages(set)
	assert.False(t, report.AllPassed)
	assert.Equal(t, []string{"利润总额 - 所得税费用 = 净利润"}, report.FailedChecks)
	assert.Equal(t, -5.0, report.Checks[2].Difference)
}

func TestValidateLinkages_FXEffect(t *testing.T) {
	set := linkedSet()
	set.CashFlow["汇率变动对现金的影响"] = 4
	set.CashFlow["现金及现金等价物净增加额"] = 54
	set.CashFlow["期末现金及现金等价物余额"] = 304
	set.BalanceSheet["货币资金"] = 304

	report := newValidator(t).ValidateLinkages(set)
	assert.True(t, report.AllPassed, report.FailedChecks)
}

func TestValidateLinkages_MissingStatementSkips(t *testing.T) {
	set := linkedSet()
	set.CashFlow = nil

	report := newValidator(t).ValidateLinkages(set)
	assert.True(t, report.AllPassed)

	skipped := 0
	for _, c := range report.Checks {
		if c.Skipped {
			skipped++
			assert.NotEmpty(t, c.Missing)
		}
	}
	assert.Equal(t, 3, skipped)
}

func TestValidateLinkages_CustomRules(t *testing.T) {
	v := newValidator(t).WithRules([]Rule{{
		Name:  "营业收入 = 营业成本",
		Left:  []Term{plus(models.IncomeStatement, "营业收入")},
		Right: []Term{plus(models.IncomeStatement, "营业成本")},
	}})
	report := v.ValidateLinkages(models.StatementSet{
		IncomeStatement: models.NamedValueMap{"营业收入": 10, "营业成本": 7},
	})
	require.Len(t, report.Checks, 1)
	assert.False(t, report.Checks[0].Passed)
	assert.Equal(t, 3.0, report.Checks[0].Difference)
}

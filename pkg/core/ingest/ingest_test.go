package ingest

import (
	"audit_workpaper/pkg/core/mapping"
	"audit_workpaper/pkg/models"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func config(t *testing.T) *mapping.Config {
	t.Helper()
	cfg, err := mapping.DefaultConfig(mapping.DefaultLayout(), nil)
	require.NoError(t, err)
	return cfg
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1,234.50", 1234.5, true},
		{"(1,000)", -1000, true},
		{"（200.00）", -200, true},
		{"-35.2", -35.2, true},
		{"¥ 88", 88, true},
		{"—", 0, false},
		{"-", 0, false},
		{"", 0, false},
		{"不适用", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAmount(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func writeStatement(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "balance.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestParseStatementWorkbook(t *testing.T) {
	path := writeStatement(t, [][]interface{}{
		{"资产负债表"},
		{"编制单位：示例有限公司", nil, "2024年12月31日"},
		{"项目", "附注", "期末余额", "期初余额"},
		{"货币资金", "五、1", 1000.0, 900.0},
		{"应收账款", nil, 250.5},
		{"非流动资产合计", nil, 4000.0},
		{"存　货", "-", 300.0},
		{"其他说明", nil, 1.0},
	})

	res := ParseStatementWorkbook(path, config(t).Table(models.BalanceSheet))
	require.True(t, res.OK, res.Err)
	assert.Equal(t, "示例有限公司", res.Company)
	assert.Equal(t, models.NamedValueMap{
		"货币资金":    1000.0,
		"应收账款":    250.5,
		"非流动资产合计": 4000.0,
		"存货":      300.0,
	}, res.Values)
}

func TestParseStatementWorkbook_Missing(t *testing.T) {
	res := ParseStatementWorkbook(filepath.Join(t.TempDir(), "none.xlsx"), config(t).Table(models.IncomeStatement))
	assert.False(t, res.OK)
	assert.True(t, errors.Is(res.Err, ErrSourceUnavailable))
	assert.Empty(t, res.ValuesOrEmpty())
}

func TestParseHTMLStatement(t *testing.T) {
	html := `
<p>利润表</p>
<table>
  <tr><th>项目</th><th>本期金额</th><th>上期金额</th></tr>
  <tr><td>一、营业收入</td><td>12,500.00</td><td>11,000.00</td></tr>
  <tr><td>减：营业成本</td><td>—</td><td>8,000.00</td></tr>
  <tr><td>投资收益</td><td>(320.00)</td><td>10.00</td></tr>
  <tr><td>净利润</td><td></td><td></td></tr>
</table>
<table>
  <tr><td>取得投资收益收到的现金</td><td>99.00</td></tr>
</table>`

	res := ParseHTMLStatement(html, config(t).Table(models.IncomeStatement))
	require.True(t, res.OK)
	assert.Equal(t, models.NamedValueMap{
		"营业收入": 12500,
		"营业成本": 8000,
		"投资收益": -320,
	}, res.Values)
}

func TestParseHTMLStatement_NoTable(t *testing.T) {
	res := ParseHTMLStatement("<p>扫描件</p>", config(t).Table(models.CashFlow))
	assert.False(t, res.OK)
	assert.True(t, errors.Is(res.Err, ErrSourceUnavailable))
}

func TestParseExtractorJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"strict", `{"balance_sheet": {"货币资金": 1000}, "income_statement": {"营业收入": 50}, "success": true}`},
		{"trailing comma and single quotes", `{'balance_sheet': {'货币资金': 1000,}, 'income_statement': {'营业收入': 50},}`},
		{"code fence", "```json\n{\"balance_sheet\": {\"货币资金\": 1000}, \"income_statement\": {\"营业收入\": 50}}\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ParseExtractorJSON(tt.raw)
			require.NoError(t, err)
			set := out.Set()
			assert.Equal(t, 1000.0, set.BalanceSheet["货币资金"])
			assert.Equal(t, 50.0, set.IncomeStatement["营业收入"])
			assert.NotNil(t, set.CashFlow)

			results := out.Results()
			require.Len(t, results, 3)
			assert.True(t, results[0].OK)
			assert.False(t, results[2].OK)
		})
	}
}

func TestParseExtractorJSON_Unavailable(t *testing.T) {
	for _, raw := range []string{
		"",
		`{"success": false, "error": "scanned pdf"}`,
		`{"balance_sheet": {}}`,
	} {
		_, err := ParseExtractorJSON(raw)
		assert.True(t, errors.Is(err, ErrSourceUnavailable), raw)
	}
}

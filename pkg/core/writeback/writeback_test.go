package writeback

import (
	"audit_workpaper/pkg/core/mapping"
	"audit_workpaper/pkg/core/workbook"
	"audit_workpaper/pkg/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*Engine, *workbook.MemoryStore, *mapping.Config) {
	t.Helper()
	cfg, err := mapping.DefaultConfig(mapping.DefaultLayout(), nil)
	require.NoError(t, err)
	store := workbook.NewMemoryStore("Z3-2")
	return NewEngine(store, cfg), store, cfg
}

func cell(t *testing.T, s workbook.Store, row, col int) workbook.Value {
	t.Helper()
	v, err := s.Get("Z3-2", row, col)
	require.NoError(t, err)
	return v
}

func TestWriteBack_Counts(t *testing.T) {
	e, store, _ := setup(t)
	source := models.NamedValueMap{
		"收到的税费返还":     12.0,
		"销售商品收到的现金":    1000.0,
		"经营活动现金流入小计":  1012.0, // derived
		"现金净增加额":      5.0,    // derived via alias
		"本表无此项目":      3.0,
	}

	res := e.WriteBack(source, models.CashFlow, models.PriorPeriod)
	assert.Equal(t, 2, res.Written)
	assert.Equal(t, 3, res.Skipped)
	assert.Empty(t, res.Failed)
	assert.Len(t, res.Items, len(source))

	assert.Equal(t, 12.0, cell(t, store, 154, 4).Raw)
	assert.Equal(t, 1000.0, cell(t, store, 146, 4).Raw)
	assert.True(t, cell(t, store, 166, 4).IsEmpty())
	assert.True(t, cell(t, store, 285, 4).IsEmpty())
	assert.Equal(t, 2, store.Len("Z3-2"))
}

func TestWriteBack_NeverWritesDerived(t *testing.T) {
	e, store, cfg := setup(t)
	for _, st := range models.StatementTypes {
		source := models.NamedValueMap{}
		for _, line := range cfg.Table(st).Lines() {
			if line.Derived {
				for _, alias := range line.Aliases {
					source[alias] = 1
				}
			}
		}
		res := e.WriteBack(source, st, models.CurrentPeriod)
		assert.Zero(t, res.Written, st)
		for _, item := range res.Items {
			assert.Equal(t, Derived, item.Outcome, item.Name)
		}
	}
	assert.Zero(t, store.Len("Z3-2"))
}

func TestWriteBack_Idempotent(t *testing.T) {
	e, store, _ := setup(t)
	source := models.NamedValueMap{"营业收入": 100, "营业成本": 60, "净利润": 30, "未知": 1}

	first := e.WriteBack(source, models.IncomeStatement, models.PriorPeriod)
	snapshot := map[int]interface{}{}
	for _, row := range []int{95, 96, 118} {
		snapshot[row] = cell(t, store, row, 4).Raw
	}

	second := e.WriteBack(source, models.IncomeStatement, models.PriorPeriod)
	assert.Equal(t, first.Written, second.Written)
	assert.Equal(t, first, second)
	for row, v := range snapshot {
		assert.Equal(t, v, cell(t, store, row, 4).Raw)
	}
}

func TestWriteBack_PartialFailure(t *testing.T) {
	e, store, _ := setup(t)
	store.ProtectCell("Z3-2", 96, 4) // 营业成本

	res := e.WriteBack(models.NamedValueMap{"营业收入": 100, "营业成本": 60, "净利润": 30}, models.IncomeStatement, models.PriorPeriod)
	assert.Equal(t, 2, res.Written)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "营业成本", res.Failed[0].Name)
	assert.Contains(t, res.Failed[0].Reason, "write rejected")
	assert.Equal(t, 30.0, cell(t, store, 118, 4).Raw)
}

func TestWriteBack_MissingSheet(t *testing.T) {
	cfg, err := mapping.DefaultConfig(mapping.DefaultLayout(), nil)
	require.NoError(t, err)
	e := NewEngine(workbook.NewMemoryStore(), cfg)

	res := e.WriteBack(models.NamedValueMap{"营业收入": 1, "营业成本": 2}, models.IncomeStatement, models.PriorPeriod)
	assert.Zero(t, res.Written)
	assert.Len(t, res.Failed, 2)
}

func TestWritePriorYear(t *testing.T) {
	e, store, _ := setup(t)
	res := e.WritePriorYear(
		models.NamedValueMap{"营业收入": 100},
		models.NamedValueMap{"收到的税费返还": 12, "投资活动净额": 9},
	)
	assert.Equal(t, 1, res.Income.Written)
	assert.Equal(t, 1, res.CashFlow.Written)
	assert.Equal(t, 1, res.CashFlow.Skipped)
	assert.Equal(t, 100.0, cell(t, store, 95, 4).Raw)
	assert.True(t, cell(t, store, 95, 3).IsEmpty(), "current column untouched")
}

func TestWriteBack_ExactNameWinsOverContainment(t *testing.T) {
	e, store, cfg := setup(t)
	source := models.NamedValueMap{
		"净利润":           1000,
		"归属于母公司所有者的净利润": 800,
		"少数股东损益":        200,
	}

	res := e.WriteBack(source, models.IncomeStatement, models.PriorPeriod)
	assert.Equal(t, 1, res.Written)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 1000.0, cell(t, store, 118, 4).Raw)

	byName := map[string]ItemResult{}
	for _, item := range res.Items {
		byName[item.Name] = item
	}
	assert.Equal(t, Written, byName["净利润"].Outcome)
	assert.Equal(t, Superseded, byName["归属于母公司所有者的净利润"].Outcome)
	assert.Contains(t, byName["归属于母公司所有者的净利润"].Reason, "净利润")
	assert.Equal(t, Unmatched, byName["少数股东损益"].Outcome)

	// reconciliation reads back the written value
	line, ok := cfg.Resolve(models.IncomeStatement, "净利润")
	require.True(t, ok)
	v, ok := cfg.Table(models.IncomeStatement).Lookup(source, line)
	require.True(t, ok)
	assert.Equal(t, v, cell(t, store, 118, 4).Raw)
}

func TestWriteBack_SameLineWithoutExactName(t *testing.T) {
	e, store, _ := setup(t)
	source := models.NamedValueMap{
		"一、营业收入":    100,
		"其中：营业收入合计": 90,
	}

	res := e.WriteBack(source, models.IncomeStatement, models.PriorPeriod)
	assert.Equal(t, 1, res.Written)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 100.0, cell(t, store, 95, 4).Raw, "first name in sorted order")
}

func TestWriteBack_AliasBeatsContainment(t *testing.T) {
	e, store, _ := setup(t)
	source := models.NamedValueMap{
		"销售商品收到的现金":    1000,
		"其中：销售商品收到的现金": 400,
	}

	res := e.WriteBack(source, models.CashFlow, models.PriorPeriod)
	assert.Equal(t, 1, res.Written)
	assert.Equal(t, 1000.0, cell(t, store, 146, 4).Raw)
}

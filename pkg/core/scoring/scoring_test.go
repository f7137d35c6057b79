package scoring

import (
	"audit_workpaper/pkg/core/workbook"
	"audit_workpaper/pkg/models"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthyStore(t *testing.T) *workbook.MemoryStore {
	t.Helper()
	s := workbook.NewMemoryStore("Z7", "Z3-2", "Z3-4", "Z3-5")
	for _, ref := range []string{"I4", "J4"} {
		require.NoError(t, workbook.SetRef(s, "Z7", ref, "勾稽正确"))
	}
	for _, ref := range []string{"I5", "J5"} {
		require.NoError(t, workbook.SetRef(s, "Z7", ref, "报表平衡"))
	}
	require.NoError(t, workbook.SetRef(s, "Z3-4", "A7", "示例有限公司成立于2010年"))
	require.NoError(t, workbook.SetRef(s, "Z3-4", "A10", "主营业务为软件开发"))
	return s
}

func actuals(scores Scores) map[DimensionID]int {
	out := map[DimensionID]int{}
	for id, d := range scores {
		out[id] = d.Actual
	}
	return out
}

func TestScore_Healthy(t *testing.T) {
	scores := NewEngine(DefaultRules()).Score(healthyStore(t), DiffContext{})
	assert.Equal(t, map[DimensionID]int{
		D1StatementBalance: 30,
		D2TableHeaders:     10,
		D3AccountMapping:   10,
		D4BasicInfo:        10,
		D5NotesBalance:     10,
		D6DataComparison:   24,
	}, actuals(scores))

	sum := Aggregate(scores)
	assert.Equal(t, 94, sum.Total)
	assert.Equal(t, 100, sum.MaxTotal)
	assert.Equal(t, TierAdvanced, sum.Tier)
	assert.Equal(t, []string{"默认评分（需人工确认）"}, scores[D6DataComparison].Details)
	assert.Equal(t, []string{"表头检查通过"}, scores[D2TableHeaders].Details)
}

func TestScore_CrossCheckNotes(t *testing.T) {
	s := healthyStore(t)
	require.NoError(t, workbook.SetRef(s, "Z7", "I4", nil))
	require.NoError(t, workbook.SetRef(s, "Z7", "J5", "差额 12.00"))

	d := NewEngine(DefaultRules()).Score(s, DiffContext{})[D1StatementBalance]
	assert.Equal(t, 18, d.Actual)
	assert.Equal(t, []string{
		"I4: 未填写",
		"I5: 报表平衡",
		"J4: 勾稽正确",
		"J5: 未平衡（差额 12.00）",
	}, d.Details)
}

func TestScore_Dimensions(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, s *workbook.MemoryStore) DiffContext
		id    DimensionID
		want  int
	}{
		{
			name: "D1 one cell unbalanced",
			setup: func(t *testing.T, s *workbook.MemoryStore) DiffContext {
				require.NoError(t, workbook.SetRef(s, "Z7", "J5", "差额 12.00"))
				return DiffContext{}
			},
			id: D1StatementBalance, want: 18,
		},
		{
			name: "D1 empty cell",
			setup: func(t *testing.T, s *workbook.MemoryStore) DiffContext {
				require.NoError(t, workbook.SetRef(s, "Z7", "I4", nil))
				return DiffContext{}
			},
			id: D1StatementBalance, want: 18,
		},
		{
			name: "D4 replacement character",
			setup: func(t *testing.T, s *workbook.MemoryStore) DiffContext {
				require.NoError(t, workbook.SetRef(s, "Z3-4", "A10", "主营\ufffd业务"))
				return DiffContext{}
			},
			id: D4BasicInfo, want: 0,
		},
		{
			name: "D4 nul byte",
			setup: func(t *testing.T, s *workbook.MemoryStore) DiffContext {
				require.NoError(t, workbook.SetRef(s, "Z3-4", "A7", "示例\x00公司"))
				return DiffContext{}
			},
			id: D4BasicInfo, want: 0,
		},
		{
			name: "D5 three anomalies",
			setup: func(t *testing.T, s *workbook.MemoryStore) DiffContext {
				return DiffContext{Anomalies: make([]models.DiffRecord, 3)}
			},
			id: D5NotesBalance, want: 7,
		},
		{
			name: "D5 floors at zero",
			setup: func(t *testing.T, s *workbook.MemoryStore) DiffContext {
				return DiffContext{Anomalies: make([]models.DiffRecord, 14)}
			},
			id: D5NotesBalance, want: 0,
		},
		{
			name: "D5 unreadable",
			setup: func(t *testing.T, s *workbook.MemoryStore) DiffContext {
				return DiffContext{AnomalyErr: workbook.ErrSheetNotFound}
			},
			id: D5NotesBalance, want: 5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := healthyStore(t)
			ctx := tt.setup(t, s)
			scores := NewEngine(DefaultRules()).Score(s, ctx)
			assert.Equal(t, tt.want, scores[tt.id].Actual)
		})
	}
}

func TestScore_MissingSheets(t *testing.T) {
	scores := NewEngine(DefaultRules()).Score(workbook.NewMemoryStore(), DiffContext{AnomalyErr: errors.New("no Z3-5")})
	assert.Equal(t, map[DimensionID]int{
		D1StatementBalance: 18,
		D2TableHeaders:     10,
		D3AccountMapping:   5,
		D4BasicInfo:        5,
		D5NotesBalance:     5,
		D6DataComparison:   24,
	}, actuals(scores))
}

func TestScore_Bounds(t *testing.T) {
	stores := []*workbook.MemoryStore{healthyStore(t), workbook.NewMemoryStore()}
	contexts := []DiffContext{{}, {Anomalies: make([]models.DiffRecord, 50)}, {AnomalyErr: errors.New("x")}}
	for _, s := range stores {
		for _, ctx := range contexts {
			scores := NewEngine(DefaultRules()).Score(s, ctx)
			require.Len(t, scores, 6)
			for _, d := range scores {
				assert.GreaterOrEqual(t, d.Actual, 0)
				assert.LessOrEqual(t, d.Actual, d.Max)
			}
			sum := Aggregate(scores)
			assert.Equal(t, 100, sum.MaxTotal)
			assert.GreaterOrEqual(t, sum.Total, 0)
			assert.LessOrEqual(t, sum.Total, 100)
		}
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		pct  float64
		want Tier
	}{
		{100, TierExcellent},
		{95.0, TierExcellent},
		{94.999, TierAdvanced},
		{90.0, TierAdvanced},
		{85.0, TierBasic},
		{84.999, TierFailing},
		{0, TierFailing},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.pct), "%v", tt.pct)
	}
	assert.Equal(t, "卓越", TierExcellent.Label())
	assert.Equal(t, "不合格", TierFailing.Label())
}

func TestReport_StableJSON(t *testing.T) {
	build := func() []byte {
		scores := NewEngine(DefaultRules()).Score(healthyStore(t), DiffContext{})
		r := NewReport("r-1", "示例有限公司", "2024", scores)
		out, err := json.Marshal(r)
		require.NoError(t, err)
		return out
	}
	assert.JSONEq(t, string(build()), string(build()))

	scores := NewEngine(DefaultRules()).Score(healthyStore(t), DiffContext{})
	r := NewReport("r-1", "示例有限公司", "2024", scores)
	require.Len(t, r.Dimensions, 6)
	for i, id := range DimensionOrder {
		assert.Equal(t, id, r.Dimensions[i].ID)
	}
	assert.Equal(t, Aggregate(r.Scores()), r.Summary())
	assert.Equal(t, "进取", r.TierLabel)
}

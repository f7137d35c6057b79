package workbook

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestValue(t *testing.T) {
	tests := []struct {
		name    string
		raw     interface{}
		empty   bool
		numeric bool
		text    string
	}{
		{"nil", nil, true, false, ""},
		{"blank string", "  ", true, false, "  "},
		{"header text", "项目", false, false, "项目"},
		{"numeric looking text", "998", false, false, "998"},
		{"float", 998.5, false, true, "998.5"},
		{"int", 12, false, true, "12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Value{Raw: tt.raw}
			assert.Equal(t, tt.empty, v.IsEmpty())
			assert.Equal(t, tt.numeric, v.IsNumeric())
			assert.Equal(t, tt.text, v.Text())
		})
	}
}

func TestCellRef(t *testing.T) {
	row, col, err := CellRef("I4")
	require.NoError(t, err)
	assert.Equal(t, 4, row)
	assert.Equal(t, 9, col)

	_, _, err = CellRef("not-a-cell")
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore("Z3-2")

	require.NoError(t, m.Set("Z3-2", 7, 3, 1000))
	v, err := m.Get("Z3-2", 7, 3)
	require.NoError(t, err)
	n, ok := v.Number()
	assert.True(t, ok)
	assert.Equal(t, 1000.0, n)

	v, err = m.Get("Z3-2", 8, 3)
	require.NoError(t, err)
	assert.True(t, v.IsEmpty())

	_, err = m.Get("Z7", 1, 1)
	assert.True(t, errors.Is(err, ErrSheetNotFound))

	m.ProtectCell("Z3-2", 9, 4)
	err = m.Set("Z3-2", 9, 4, 1.0)
	assert.True(t, errors.Is(err, ErrWriteRejected))
	assert.NoError(t, m.Set("Z3-2", 9, 3, 1.0))

	m.ProtectSheet("Z3-2")
	assert.True(t, errors.Is(m.Set("Z3-2", 10, 3, 1.0), ErrWriteRejected))
}

func TestExcelStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workpaper.xlsx")

	f := excelize.NewFile()
	_, err := f.NewSheet("Z3-2")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Z3-2", "A7", "货币资金"))
	require.NoError(t, f.SetCellValue("Z3-2", "C7", 998.0))
	require.NoError(t, f.SetCellValue("Z3-2", "C6", "年末余额"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	s, err := OpenExcel(path)
	require.NoError(t, err)
	defer s.Close()

	assert.True(t, s.HasSheet("Z3-2"))
	assert.False(t, s.HasSheet("Z7"))

	v, err := s.Get("Z3-2", 7, 3)
	require.NoError(t, err)
	n, ok := v.Number()
	require.True(t, ok)
	assert.Equal(t, 998.0, n)

	v, err = s.Get("Z3-2", 6, 3)
	require.NoError(t, err)
	assert.False(t, v.IsNumeric())
	assert.Equal(t, "年末余额", v.Text())

	v, err = s.Get("Z3-2", 50, 3)
	require.NoError(t, err)
	assert.True(t, v.IsEmpty())

	_, err = s.Get("Z7", 4, 9)
	assert.True(t, errors.Is(err, ErrSheetNotFound))

	require.NoError(t, SetRef(s, "Z3-2", "D7", 1200.0))
	require.NoError(t, s.Save())

	reopened, err := OpenExcel(path)
	require.NoError(t, err)
	defer reopened.Close()
	v, err = GetRef(reopened, "Z3-2", "D7")
	require.NoError(t, err)
	n, _ = v.Number()
	assert.Equal(t, 1200.0, n)
}

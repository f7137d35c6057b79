package store

import (
	"audit_workpaper/pkg/core/scoring"
	"audit_workpaper/pkg/core/workbook"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReport(id, company string, at time.Time) *scoring.Report {
	scores := scoring.NewEngine(scoring.DefaultRules()).Score(workbook.NewMemoryStore("Z3-2"), scoring.DiffContext{})
	r := scoring.NewReport(id, company, "2024", scores)
	r.GeneratedAt = at
	return r
}

func TestFileRepo_SaveLoad(t *testing.T) {
	ctx := context.Background()
	repo := NewFileRepo(t.TempDir())

	want := newReport("r-1", "示例有限公司", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Load(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, want.Total, got.Total)
	assert.Equal(t, want.Tier, got.Tier)
	assert.Equal(t, want.Dimensions, got.Dimensions)
	assert.True(t, want.GeneratedAt.Equal(got.GeneratedAt))

	_, err = repo.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.Load(ctx, "../escape")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileRepo_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := NewFileRepo(t.TempDir())

	r := newReport("r-1", "示例有限公司", time.Now())
	require.NoError(t, repo.Save(ctx, r))
	r.Company = "改名有限公司"
	require.NoError(t, repo.Save(ctx, r))

	got, err := repo.Load(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, "改名有限公司", got.Company)

	entries, err := os.ReadDir(repo.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileRepo_Latest(t *testing.T) {
	ctx := context.Background()
	repo := NewFileRepo(t.TempDir())
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, newReport("a", "甲公司", base)))
	require.NoError(t, repo.Save(ctx, newReport("b", "甲公司", base.Add(time.Hour))))
	require.NoError(t, repo.Save(ctx, newReport("c", "乙公司", base.Add(2*time.Hour))))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Dir(), "broken.json"), []byte("{"), 0644))

	got, err := repo.Latest(ctx, "甲公司")
	require.NoError(t, err)
	assert.Equal(t, "b", got.ID)

	_, err = repo.Latest(ctx, "丙公司")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileRepo_RejectsBadID(t *testing.T) {
	repo := NewFileRepo(t.TempDir())
	assert.Error(t, repo.Save(context.Background(), newReport("", "甲公司", time.Now())))
	assert.Error(t, repo.Save(context.Background(), newReport("a/b", "甲公司", time.Now())))
}

func TestOpen_FallsBackToFiles(t *testing.T) {
	dir := t.TempDir()
	repo := Open(context.Background(), "", dir)
	fr, ok := repo.(*FileRepo)
	require.True(t, ok)
	assert.Equal(t, dir, fr.Dir())
}

func TestReportRepo_NoPool(t *testing.T) {
	repo := NewReportRepo(nil)
	assert.Error(t, repo.Save(context.Background(), newReport("a", "甲公司", time.Now())))
	_, err := repo.Load(context.Background(), "a")
	assert.Error(t, err)
}

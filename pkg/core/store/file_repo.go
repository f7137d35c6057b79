package store

import (
	"audit_workpaper/pkg/core/scoring"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileRepo keeps one JSON file per report in a directory. It is the local
// fallback when no database is configured.
type FileRepo struct {
	dir string
}

// NewFileRepo creates a file repository; an empty dir means
// .cache/score_reports.
func NewFileRepo(dir string) *FileRepo {
	if dir == "" {
		dir = filepath.Join(".cache", "score_reports")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Printf("[WARNING] Check report store dir: %v\n", err)
	}
	return &FileRepo{dir: dir}
}

// Dir returns the storage directory.
func (r *FileRepo) Dir() string {
	return r.dir
}

func (r *FileRepo) path(id string) string {
	return filepath.Join(r.dir, id+".json")
}

func (r *FileRepo) Save(ctx context.Context, rep *scoring.Report) error {
	if rep.ID == "" || strings.ContainsAny(rep.ID, `/\`) {
		return fmt.Errorf("invalid report id %q", rep.ID)
	}
	data, err := rep.MarshalIndent()
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(r.path(rep.ID), data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func (r *FileRepo) Load(ctx context.Context, id string) (*scoring.Report, error) {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	rep, err := r.loadFile(r.path(id))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rep, err
}

// Latest scans the directory for the newest report of company.
func (r *FileRepo) Latest(ctx context.Context, company string) (*scoring.Report, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read report dir: %w", err)
	}

	var latest *scoring.Report
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		rep, err := r.loadFile(filepath.Join(r.dir, e.Name()))
		if err != nil || rep.Company != company {
			continue
		}
		if latest == nil || rep.GeneratedAt.After(latest.GeneratedAt) ||
			(rep.GeneratedAt.Equal(latest.GeneratedAt) && rep.ID > latest.ID) {
			latest = rep
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, company)
	}
	return latest, nil
}

func (r *FileRepo) loadFile(path string) (*scoring.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rep scoring.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return &rep, nil
}

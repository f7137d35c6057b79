package store

import (
	"audit_workpaper/pkg/core/scoring"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReportRepo stores score reports as JSONB rows keyed by report id.
type ReportRepo struct {
	pool *pgxpool.Pool
}

// NewReportRepo creates a repository over pool.
func NewReportRepo(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

// Save upserts a report by id.
func (r *ReportRepo) Save(ctx context.Context, rep *scoring.Report) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	createdAt := rep.GeneratedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO score_reports (id, company, audit_year, total, tier, report_json, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id)
		DO UPDATE SET
			company = EXCLUDED.company,
			audit_year = EXCLUDED.audit_year,
			total = EXCLUDED.total,
			tier = EXCLUDED.tier,
			report_json = EXCLUDED.report_json,
			created_at = EXCLUDED.created_at;
	`
	_, err = r.pool.Exec(ctx, query, rep.ID, rep.Company, rep.Year, rep.Total, string(rep.Tier), jsonData, createdAt)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Load retrieves a report by id.
func (r *ReportRepo) Load(ctx context.Context, id string) (*scoring.Report, error) {
	return r.queryOne(ctx, `SELECT report_json FROM score_reports WHERE id = $1`, id)
}

// Latest retrieves the newest report of a company.
func (r *ReportRepo) Latest(ctx context.Context, company string) (*scoring.Report, error) {
	return r.queryOne(ctx, `
		SELECT report_json FROM score_reports
		WHERE company = $1
		ORDER BY created_at DESC
		LIMIT 1`, company)
}

func (r *ReportRepo) queryOne(ctx context.Context, query string, arg string) (*scoring.Report, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	var jsonData []byte
	if err := r.pool.QueryRow(ctx, query, arg).Scan(&jsonData); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, arg)
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	var rep scoring.Report
	if err := json.Unmarshal(jsonData, &rep); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &rep, nil
}

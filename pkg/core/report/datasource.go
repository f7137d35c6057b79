package report

import (
	"audit_workpaper/pkg/core/naming"
	"audit_workpaper/pkg/models"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DataSource snapshots the financial statements a run reconciled against,
// so a later review can see exactly which figures were compared.
type DataSource struct {
	Company         string               `json:"company_name"`
	Year            string               `json:"audit_year"`
	BalanceSheet    models.NamedValueMap `json:"balance_sheet"`
	IncomeStatement models.NamedValueMap `json:"income_statement"`
	CashFlow        models.NamedValueMap `json:"cash_flow,omitempty"`
	SourceFiles     map[string]string    `json:"source_files,omitempty"`
}

// DataSourceFileName is 【数据源】财务报表_<first 10 characters of name>.json.
func DataSourceFileName(company string) string {
	safe := []rune(naming.SafeFileName(company))
	if len(safe) > 10 {
		safe = safe[:10]
	}
	return "【数据源】财务报表_" + string(safe) + ".json"
}

// WriteDataSource writes the snapshot into dir and returns its path.
func WriteDataSource(dir string, ds *DataSource) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir %s: %w", dir, err)
	}
	if ds.BalanceSheet == nil {
		ds.BalanceSheet = models.NamedValueMap{}
	}
	if ds.IncomeStatement == nil {
		ds.IncomeStatement = models.NamedValueMap{}
	}
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal data source: %w", err)
	}
	path := filepath.Join(dir, DataSourceFileName(ds.Company))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

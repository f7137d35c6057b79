package pipeline

import (
	"audit_workpaper/pkg/core/config"
	"audit_workpaper/pkg/core/mapping"
	"audit_workpaper/pkg/core/naming"
	"audit_workpaper/pkg/core/reconcile"
	"audit_workpaper/pkg/core/registry"
	"audit_workpaper/pkg/core/report"
	"audit_workpaper/pkg/core/scoring"
	"audit_workpaper/pkg/core/store"
	"audit_workpaper/pkg/core/validate"
	"audit_workpaper/pkg/core/workbook"
	"audit_workpaper/pkg/core/writeback"
	"audit_workpaper/pkg/models"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// DefaultFallbackCompany names the entity when no source yields a name.
const DefaultFallbackCompany = "未命名单位"

// Saver is implemented by file-backed stores (workbook.ExcelStore).
type Saver interface {
	Save() error
}

// Settings are the run parameters that are not part of the alias tables.
type Settings struct {
	Tolerance       float64
	AnomalyScan     reconcile.AnomalyScan
	Rules           scoring.Rules
	RegistryEnabled bool
	RegistrySheet   string // Z10
	CoverSheet      string // 首页
	OutputDir       string // empty disables report files
	FallbackCompany string
}

// DefaultSettings returns the standard workpaper template settings.
func DefaultSettings() Settings {
	return Settings{
		Tolerance:       reconcile.DefaultTolerance,
		AnomalyScan:     reconcile.DefaultAnomalyScan(),
		Rules:           scoring.DefaultRules(),
		RegistrySheet:   registry.DefaultSheet,
		CoverSheet:      registry.DefaultCoverSheet,
		FallbackCompany: DefaultFallbackCompany,
	}
}

// Inputs are the documents of one audit engagement.
type Inputs struct {
	Store       workbook.Store      // the workpaper being checked
	Year        string              // audit year, e.g. "2024"
	CompanyName string              // skips name resolution when set
	NameSources []naming.Source     // candidate name sources
	Statements  models.StatementSet // current-year financial statements
	Prior       models.StatementSet // prior-year audit report statements
	SourceFiles map[string]string   // recorded in the data source snapshot
}

// Result collects everything one run produced. Warnings list the steps that
// degraded instead of completing.
type Result struct {
	ReportID     string                        `json:"report_id"`
	Company      string                        `json:"company"`
	Candidates   []models.CompanyNameCandidate `json:"candidates,omitempty"`
	Registry     registry.Outcome              `json:"registry"`
	PriorYear    writeback.PriorYearResult     `json:"prior_year"`
	CurrentDiffs []models.DiffRecord           `json:"current_diffs"`
	PriorDiffs   []models.DiffRecord           `json:"prior_diffs"`
	Anomalies    []models.DiffRecord           `json:"anomalies"`
	Linkage      *validate.LinkageReport       `json:"linkage"`
	Score        *scoring.Report               `json:"score"`
	Paths        report.Paths                  `json:"paths"`
	DataSource   string                        `json:"data_source,omitempty"`
	Warnings     []string                      `json:"warnings,omitempty"`
}

func (r *Result) warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Printf("[Pipeline] %s", msg)
	r.Warnings = append(r.Warnings, msg)
}

// Orchestrator runs the check flow for one workpaper:
// name -> registry -> prior-year write-back -> reconcile -> score -> persist -> reports
type Orchestrator struct {
	tables   *mapping.Config
	settings Settings
	resolver *naming.Resolver
	filler   *registry.Filler
	scorer   *scoring.Engine
	repo     store.Repository
	newID    func() string
	now      func() time.Time
}

// NewOrchestrator wires the engines. lookup may be nil (mock registry
// record); repo may be nil (no persistence).
func NewOrchestrator(tables *mapping.Config, repo store.Repository, lookup registry.Lookup, settings Settings) *Orchestrator {
	if settings.FallbackCompany == "" {
		settings.FallbackCompany = DefaultFallbackCompany
	}
	return &Orchestrator{
		tables:   tables,
		settings: settings,
		resolver: naming.NewResolver(),
		filler:   registry.NewFiller(lookup, settings.RegistryEnabled).WithSheets(settings.RegistrySheet, settings.CoverSheet),
		scorer:   scoring.NewEngine(settings.Rules),
		repo:     repo,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// FromConfig builds the alias tables and the registry client from cfg.
// Table ambiguity is returned as a *mapping.ConfigurationError.
func FromConfig(cfg *config.Config, repo store.Repository) (*Orchestrator, error) {
	tables, err := cfg.MappingTables()
	if err != nil {
		return nil, fmt.Errorf("failed to build alias tables: %w", err)
	}
	settings := Settings{
		Tolerance:       cfg.Tolerance,
		AnomalyScan:     cfg.AnomalyScan(),
		Rules:           cfg.ScoringRules(),
		RegistryEnabled: cfg.Registry.Enabled,
		RegistrySheet:   cfg.Sheets.Registry,
		CoverSheet:      cfg.Sheets.Cover,
		OutputDir:       cfg.Storage.OutputDir,
	}
	return NewOrchestrator(tables, repo, cfg.RegistryLookup(), settings), nil
}

// WithResolver replaces the name resolver (custom readers).
func (o *Orchestrator) WithResolver(r *naming.Resolver) *Orchestrator {
	o.resolver = r
	return o
}

// WithClock fixes report IDs and timestamps, for reproducible output.
func (o *Orchestrator) WithClock(newID func() string, now func() time.Time) *Orchestrator {
	if newID != nil {
		o.newID = newID
	}
	if now != nil {
		o.now = now
	}
	return o
}

// Run executes one pass. Only a missing workpaper or a cancelled context
// return an error; every other failure is recorded in Result.Warnings.
func (o *Orchestrator) Run(ctx context.Context, in Inputs) (*Result, error) {
	if in.Store == nil {
		return nil, fmt.Errorf("no workpaper store")
	}
	start := o.now()
	res := &Result{ReportID: o.newID()}

	// 1. Company name
	res.Company, res.Candidates = o.companyName(in)
	if res.Company == "" {
		res.Company = o.settings.FallbackCompany
		res.warn("no company name found, using %s", res.Company)
	}
	fmt.Printf("Starting workpaper check for %s (%s)...\n", res.Company, in.Year)

	// 2. Cover page + registration sheet
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	outcome, _ := o.filler.Fill(ctx, in.Store, res.Company)
	res.Registry = outcome
	if outcome == registry.OutcomeFailed || outcome == registry.OutcomeNoRecord {
		res.warn("registry step %s for %s", outcome, res.Company)
	}

	// 3. Prior-year income and cash flow into the opening column
	wb := writeback.NewEngine(in.Store, o.tables)
	res.PriorYear = wb.WritePriorYear(in.Prior.IncomeStatement, in.Prior.CashFlow)
	for _, r := range []writeback.Result{res.PriorYear.Income, res.PriorYear.CashFlow} {
		if len(r.Failed) > 0 {
			res.warn("%d %s write-back failures", len(r.Failed), r.Statement)
		}
	}
	if s, ok := in.Store.(Saver); ok {
		if err := s.Save(); err != nil {
			res.warn("failed to save workpaper: %v", err)
		}
	}

	// 4. Reconciliation
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec := reconcile.NewEngine(in.Store, o.tables).
		WithTolerance(o.settings.Tolerance).
		WithAnomalyScan(o.settings.AnomalyScan)
	res.Linkage = validate.NewValidator(o.tables, o.settings.Tolerance).ValidateLinkages(in.Statements)
	if !res.Linkage.AllPassed {
		res.warn("financial statements fail linkage checks: %v", res.Linkage.FailedChecks)
	}
	res.CurrentDiffs = rec.CurrentPeriod(in.Statements)
	res.PriorDiffs = rec.PriorPeriod(in.Prior)
	anomalies, anomalyErr := rec.LocalAnomalies()
	res.Anomalies = anomalies
	if anomalyErr != nil {
		res.warn("anomaly scan failed: %v", anomalyErr)
	}
	fmt.Printf("Reconciled: %d current, %d prior, %d anomalies\n", len(res.CurrentDiffs), len(res.PriorDiffs), len(res.Anomalies))

	// 5. Scoring
	scores := o.scorer.Score(in.Store, scoring.DiffContext{Anomalies: anomalies, AnomalyErr: anomalyErr})
	res.Score = scoring.NewReport(res.ReportID, res.Company, in.Year, scores)
	res.Score.GeneratedAt = o.now()

	// 6. Persistence
	if o.repo != nil {
		if err := o.repo.Save(ctx, res.Score); err != nil {
			res.warn("failed to persist score report: %v", err)
		}
	}

	// 7. Output files
	if o.settings.OutputDir != "" {
		o.writeOutputs(in, res)
	}

	fmt.Printf("Check for %s complete in %v: %d/%d (%s)\n",
		res.Company, o.now().Sub(start), res.Score.Total, res.Score.MaxTotal, res.Score.TierLabel)
	return res, nil
}

func (o *Orchestrator) companyName(in Inputs) (string, []models.CompanyNameCandidate) {
	if in.CompanyName != "" {
		return in.CompanyName, nil
	}
	return o.resolver.Resolve(in.NameSources)
}

func (o *Orchestrator) writeOutputs(in Inputs, res *Result) {
	ds, err := report.WriteDataSource(o.settings.OutputDir, &report.DataSource{
		Company:         res.Company,
		Year:            in.Year,
		BalanceSheet:    in.Statements.BalanceSheet,
		IncomeStatement: in.Statements.IncomeStatement,
		CashFlow:        in.Statements.CashFlow,
		SourceFiles:     in.SourceFiles,
	})
	if err != nil {
		res.warn("failed to write data source: %v", err)
	}
	res.DataSource = ds

	check := &report.Check{
		Company:      res.Company,
		Year:         in.Year,
		GeneratedAt:  res.Score.GeneratedAt,
		CurrentDiffs: res.CurrentDiffs,
		PriorDiffs:   res.PriorDiffs,
		Anomalies:    res.Anomalies,
		Score:        res.Score,
	}
	paths, err := report.WriteAll(o.settings.OutputDir, check)
	if err != nil {
		res.warn("failed to write check report: %v", err)
	}
	res.Paths = paths
}

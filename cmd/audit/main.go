package main

import (
	"audit_workpaper/pkg/core/config"
	"audit_workpaper/pkg/core/ingest"
	"audit_workpaper/pkg/core/mapping"
	"audit_workpaper/pkg/core/naming"
	"audit_workpaper/pkg/core/pipeline"
	"audit_workpaper/pkg/core/store"
	"audit_workpaper/pkg/core/workbook"
	"audit_workpaper/pkg/models"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

func main() {
	var (
		configPath = flag.String("config", config.DefaultPath, "YAML configuration file")
		workpaper  = flag.String("workpaper", "", "workpaper template (.xlsx) to fill and check")
		balance    = flag.String("balance", "", "balance sheet workbook (资产负债表)")
		income     = flag.String("income", "", "income statement workbook (利润表)")
		statements = flag.String("statements", "", "extractor JSON of the current-year statements (alternative to -balance/-income)")
		prior      = flag.String("prior", "", "extractor JSON of the prior-year audit report")
		priorHTML  = flag.String("prior-html", "", "HTML tables of the prior-year audit report")
		priorText  = flag.String("prior-text", "", "text extracted from the prior-year audit report, used for the company name")
		priorPDF   = flag.String("prior-pdf", "", "prior-year audit report PDF; only its file name is used, for the company name")
		company    = flag.String("company", "", "company name; skips name resolution")
		year       = flag.String("year", strconv.Itoa(time.Now().Year()-1), "audit year")
		sampleDir  = flag.String("dir", "", "engagement directory; its name is a fallback company name source")
	)
	flag.Parse()

	if *workpaper == "" {
		fmt.Fprintln(os.Stderr, "usage: audit -workpaper <template.xlsx> [-balance <xlsx> -income <xlsx> | -statements <json>] [-prior <json>]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	tables, err := cfg.MappingTables()
	if err != nil {
		var cfgErr *mapping.ConfigurationError
		if errors.As(err, &cfgErr) {
			log.Fatalf("Alias table configuration rejected: %v", cfgErr)
		}
		log.Fatalf("Error: %v", err)
	}

	fmt.Println("📂 Audit workpaper check starting...")

	// 1. Statements
	current := loadCurrent(tables, *balance, *income, *statements)
	priorSet := loadPrior(tables, *prior, *priorHTML)

	// 2. Workpaper, saved under the output dir so the template stays untouched
	wp, err := workbook.OpenExcel(*workpaper)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer wp.Close()
	if err := os.MkdirAll(cfg.Storage.OutputDir, 0755); err != nil {
		log.Fatalf("Error: %v", err)
	}
	outPath := filepath.Join(cfg.Storage.OutputDir, "【财审底稿】"+filepath.Base(*workpaper))
	if err := wp.SaveAs(outPath); err != nil {
		log.Fatalf("Error: %v", err)
	}

	// 3. Run
	ctx := context.Background()
	repo := store.Open(ctx, cfg.Storage.DatabaseURL, cfg.Storage.ReportDir)
	defer store.Close()

	orch, err := pipeline.FromConfig(cfg, repo)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	priorReport := firstNonEmpty(*priorPDF, *prior, *priorHTML, *priorText)
	res, err := orch.Run(ctx, pipeline.Inputs{
		Store:       wp,
		Year:        *year,
		CompanyName: *company,
		NameSources: nameSources(*priorText, *balance, *income, *sampleDir, priorReport),
		Statements:  current,
		Prior:       priorSet,
		SourceFiles: sourceFiles(*balance, *income, *statements),
	})
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	// 4. Summary
	fmt.Println("\n################################################################")
	fmt.Printf("  %s (%s)  report %s\n", res.Company, *year, res.ReportID)
	fmt.Println("################################################################")
	fmt.Printf("Workpaper:          %s\n", outPath)
	fmt.Printf("Registry (Z10):     %s\n", res.Registry)
	fmt.Printf("Prior-year written: 利润表 %d, 现金流量表 %d\n", res.PriorYear.Income.Written, res.PriorYear.CashFlow.Written)
	fmt.Printf("Differences:        %d current, %d prior, %d Z3-5\n", len(res.CurrentDiffs), len(res.PriorDiffs), len(res.Anomalies))
	if res.Linkage != nil {
		for _, c := range res.Linkage.Checks {
			switch {
			case c.Skipped:
				fmt.Printf("  - 勾稽 %s: skipped (missing %s)\n", c.Name, c.Missing)
			case !c.Passed:
				fmt.Printf("  ✗ 勾稽 %s: difference %.2f\n", c.Name, c.Difference)
			}
		}
	}
	fmt.Println("\n📊 6维度评分结果:")
	for _, d := range res.Score.Dimensions {
		status := "✅"
		if d.Actual != d.Max {
			status = "⚠️"
		}
		fmt.Printf("  %s %s: %d/%d\n", status, d.ID, d.Actual, d.Max)
	}
	fmt.Printf("  总分: %d/%d (%.1f%%) %s\n", res.Score.Total, res.Score.MaxTotal, res.Score.Percentage, res.Score.TierLabel)
	if res.Paths.Workbook != "" {
		fmt.Printf("\nCheck report: %s\n", res.Paths.Workbook)
	}
	for _, w := range res.Warnings {
		fmt.Printf("  ⚠ %s\n", w)
	}
}

func loadCurrent(tables *mapping.Config, balance, income, statementsJSON string) models.StatementSet {
	if statementsJSON != "" {
		out, err := ingest.LoadExtractorJSON(statementsJSON)
		if err != nil {
			log.Printf("[Ingest] current statements unavailable: %v", err)
			return models.StatementSet{}
		}
		return out.Set()
	}

	var set models.StatementSet
	if balance != "" {
		r := ingest.ParseStatementWorkbook(balance, tables.Table(models.BalanceSheet))
		report(r)
		set.BalanceSheet = r.ValuesOrEmpty()
	}
	if income != "" {
		r := ingest.ParseStatementWorkbook(income, tables.Table(models.IncomeStatement))
		report(r)
		set.IncomeStatement = r.ValuesOrEmpty()
	}
	return set
}

func loadPrior(tables *mapping.Config, priorJSON, priorHTML string) models.StatementSet {
	switch {
	case priorJSON != "":
		out, err := ingest.LoadExtractorJSON(priorJSON)
		if err != nil {
			log.Printf("[Ingest] prior-year report unavailable: %v", err)
			return models.StatementSet{}
		}
		for _, r := range out.Results() {
			report(r)
		}
		return out.Set()
	case priorHTML != "":
		data, err := os.ReadFile(priorHTML)
		if err != nil {
			log.Printf("[Ingest] prior-year report unavailable: %v", err)
			return models.StatementSet{}
		}
		return ingest.ParseHTMLStatements(string(data), tables)
	}
	fmt.Println("  ⚠ No prior-year audit report given, prior-period checks skipped")
	return models.StatementSet{}
}

func report(r ingest.StatementResult) {
	if r.OK {
		fmt.Printf("  ✓ %s: %d items\n", r.Statement, len(r.Values))
		return
	}
	fmt.Printf("  ⚠ %s: %v\n", r.Statement, r.Err)
}

// nameSources lists the company name sources in priority order. The prior
// audit report's file name is consulted last.
func nameSources(priorText, balance, income, dir, priorReport string) []naming.Source {
	var sources []naming.Source
	if priorText != "" {
		sources = append(sources, naming.Source{Label: "上年审计报告", Kind: naming.DocumentText, Path: priorText})
	}
	if balance != "" {
		sources = append(sources,
			naming.Source{Label: "资产负债表", Kind: naming.SpreadsheetText, Path: balance},
			naming.Source{Label: "资产负债表文件名", Kind: naming.Filename, Path: balance})
	}
	if income != "" {
		sources = append(sources, naming.Source{Label: "利润表", Kind: naming.SpreadsheetText, Path: income})
	}
	if dir != "" {
		sources = append(sources, naming.Source{Label: "目录名", Kind: naming.Filename, Path: dir})
	}
	if priorReport != "" {
		sources = append(sources, naming.Source{Label: "审计报告文件名", Kind: naming.Filename, Path: priorReport})
	}
	return sources
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func sourceFiles(balance, income, statementsJSON string) map[string]string {
	files := map[string]string{}
	if balance != "" {
		files["balance_sheet"] = filepath.Base(balance)
	}
	if income != "" {
		files["income_statement"] = filepath.Base(income)
	}
	if statementsJSON != "" {
		files["statements"] = filepath.Base(statementsJSON)
	}
	return files
}

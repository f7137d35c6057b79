// Package report renders the check report (检查报告) and names output files.
package report

import (
	"audit_workpaper/pkg/core/naming"
	"audit_workpaper/pkg/core/reconcile"
	"audit_workpaper/pkg/core/scoring"
	"audit_workpaper/pkg/models"
	"fmt"
	"strings"
	"time"
)

// Section titles and placeholders.
const (
	titleCurrent   = "一、财务报表 vs Z3-2期末 对比"
	titlePrior     = "二、上年审计报告 vs Z3-2期初 对比"
	titleAnomalies = "三、Z3-5 差异检测"
	titleScore     = "四、底稿评分"

	noDiffs   = "✓ 无差异"
	noPrior   = "（暂无上年审计数据）"
	sheetName = "检查报告"
)

// Check bundles everything one check report shows.
type Check struct {
	Company     string
	Year        string
	GeneratedAt time.Time

	CurrentDiffs []models.DiffRecord
	PriorDiffs   []models.DiffRecord
	Anomalies    []models.DiffRecord

	Score *scoring.Report
}

type section struct {
	title   string
	headers []string
	rows    [][]interface{}
	empty   string
}

func diffSection(title, empty string, diffs []models.DiffRecord, sourceLabel, targetLabel string) section {
	s := section{
		title:   title,
		headers: []string{"项目", sourceLabel, targetLabel, "差异", "差异率(%)"},
		empty:   empty,
	}
	for _, d := range diffs {
		s.rows = append(s.rows, []interface{}{
			d.ItemName, d.SourceValue, d.TargetValue, d.AbsoluteDiff, fmt.Sprintf("%.2f%%", d.PercentDiff),
		})
	}
	return s
}

func (c *Check) sections() []section {
	anomalies := section{title: titleAnomalies, headers: []string{"项目", "差异金额"}, empty: noDiffs}
	for _, d := range c.Anomalies {
		anomalies.rows = append(anomalies.rows, []interface{}{d.ItemName, d.AbsoluteDiff})
	}

	out := []section{
		diffSection(titleCurrent, noDiffs, c.CurrentDiffs, reconcile.LabelStatements, reconcile.LabelClosing),
		diffSection(titlePrior, noPrior, c.PriorDiffs, reconcile.LabelPriorAudit, reconcile.LabelOpening),
		anomalies,
	}

	if c.Score != nil {
		score := section{title: titleScore, headers: []string{"维度", "满分", "得分", "说明"}}
		for _, d := range c.Score.Dimensions {
			score.rows = append(score.rows, []interface{}{string(d.ID), d.Max, d.Actual, strings.Join(d.Details, "；")})
		}
		score.rows = append(score.rows, []interface{}{
			fmt.Sprintf("合计（%s）", c.Score.TierLabel), c.Score.MaxTotal, c.Score.Total, fmt.Sprintf("%.1f%%", c.Score.Percentage),
		})
		out = append(out, score)
	}
	return out
}

func (c *Check) title() string {
	return "审计底稿检查报告 - " + c.Company
}

// Names are the output file names of one run.
type Names struct {
	Workbook string
	Markdown string
	HTML     string
	Score    string
}

// FileNames builds 【检查报告】<company>(<year>).xlsx and friends.
func FileNames(company, year string) Names {
	base := fmt.Sprintf("%s(%s)", naming.SafeFileName(company), year)
	return Names{
		Workbook: "【检查报告】" + base + ".xlsx",
		Markdown: "【检查报告】" + base + ".md",
		HTML:     "【检查报告】" + base + ".html",
		Score:    "【评分报告】" + base + ".json",
	}
}

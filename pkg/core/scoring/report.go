package scoring

import (
	"encoding/json"
	"time"
)

// Tier is the qualitative grade of a workpaper.
type Tier string

const (
	TierExcellent Tier = "excellent" // 卓越
	TierAdvanced  Tier = "advanced"  // 进取
	TierBasic     Tier = "basic"     // 基础
	TierFailing   Tier = "failing"   // 不合格
)

// Label returns the Chinese tier name used in reports.
func (t Tier) Label() string {
	switch t {
	case TierExcellent:
		return "卓越"
	case TierAdvanced:
		return "进取"
	case TierBasic:
		return "基础"
	}
	return "不合格"
}

// TierFor maps a percentage to a tier. Lower bounds are inclusive.
func TierFor(percentage float64) Tier {
	switch {
	case percentage >= 95:
		return TierExcellent
	case percentage >= 90:
		return TierAdvanced
	case percentage >= 85:
		return TierBasic
	}
	return TierFailing
}

// Summary is the aggregate of all dimensions.
type Summary struct {
	Total      int     `json:"total"`
	MaxTotal   int     `json:"max_total"`
	Percentage float64 `json:"percentage"`
	Tier       Tier    `json:"tier"`
}

// Aggregate sums the dimensions.
func Aggregate(scores Scores) Summary {
	var s Summary
	for _, d := range scores {
		s.Total += d.Actual
		s.MaxTotal += d.Max
	}
	if s.MaxTotal > 0 {
		s.Percentage = float64(s.Total) / float64(s.MaxTotal) * 100
	}
	s.Tier = TierFor(s.Percentage)
	return s
}

// Report is the persisted score report. Everything except GeneratedAt is
// derived from the workpaper and the diff context.
type Report struct {
	ID          string      `json:"id"`
	Company     string      `json:"company"`
	Year        string      `json:"year"`
	Dimensions  []Dimension `json:"dimensions"`
	Total       int         `json:"total"`
	MaxTotal    int         `json:"max_total"`
	Percentage  float64     `json:"percentage"`
	Tier        Tier        `json:"tier"`
	TierLabel   string      `json:"tier_label"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// NewReport builds a report from scores.
func NewReport(id, company, year string, scores Scores) *Report {
	sum := Aggregate(scores)
	return &Report{
		ID:         id,
		Company:    company,
		Year:       year,
		Dimensions: scores.Ordered(),
		Total:      sum.Total,
		MaxTotal:   sum.MaxTotal,
		Percentage: sum.Percentage,
		Tier:       sum.Tier,
		TierLabel:  sum.Tier.Label(),
	}
}

// Scores rebuilds the dimension map of a report.
func (r *Report) Scores() Scores {
	s := Scores{}
	for i := range r.Dimensions {
		d := r.Dimensions[i]
		s[d.ID] = &d
	}
	return s
}

// Summary returns the aggregate fields of the report.
func (r *Report) Summary() Summary {
	return Summary{Total: r.Total, MaxTotal: r.MaxTotal, Percentage: r.Percentage, Tier: r.Tier}
}

// MarshalIndent renders the report as indented JSON.
func (r *Report) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

package registry

import (
	"audit_workpaper/pkg/core/workbook"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// Sheet locations of the registration block and the cover page.
const (
	DefaultSheet      = "Z10"
	DefaultCoverSheet = "首页"
	CoverNameCell     = "F7"

	perpetual = "长期"
)

var dateLayouts = []string{"2006-01-02", "2006/01/02", "2006-1-2", "2006/1/2", "20060102"}

// FormatDate renders a registry date as 2006年01月02日. Unparseable input
// is returned unchanged.
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	day := strings.Fields(s)[0] // drop a time-of-day suffix
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, day); err == nil {
			return t.Format("2006年01月02日")
		}
	}
	return s
}

func operationTerm(end Text) string {
	s := strings.TrimSpace(string(end))
	if s == "" || s == "null" {
		return perpetual
	}
	return FormatDate(s)
}

type cellValue struct {
	ref   string
	value string
}

func recordCells(rec *Record) []cellValue {
	return []cellValue{
		{"C7", string(rec.CompanyType)},
		{"E7", string(rec.LegalPerson)},
		{"G7", string(rec.Authority)},
		{"C8", FormatDate(string(rec.EstablishDate))},
		{"G8", string(rec.Capital)},
		{"C9", string(rec.CreditNo)},
		{"G9", operationTerm(rec.OperationEndDate)},
		{"C10", string(rec.CompanyAddress)},
		{"C11", string(rec.BusinessScope)},
	}
}

// MockRecord is written when registry lookups are switched off.
func MockRecord() *Record {
	return &Record{
		CompanyType:    "有限责任公司",
		LegalPerson:    "（测试模式-未查询）",
		Authority:      "（测试模式）",
		EstablishDate:  "（测试模式）",
		Capital:        "（测试模式）",
		CreditNo:       "（测试模式）",
		CompanyAddress: "（测试模式-API已关闭）",
		BusinessScope:  "（测试模式）",
	}
}

// WriteRecord writes rec into the registration block of sheet. Every cell
// is attempted; the returned error joins the failed writes.
func WriteRecord(store workbook.Store, sheet string, rec *Record) error {
	if !store.HasSheet(sheet) {
		return workbook.SheetNotFound(sheet)
	}
	var errs []error
	for _, c := range recordCells(rec) {
		if err := workbook.SetRef(store, sheet, c.ref, c.value); err != nil {
			errs = append(errs, fmt.Errorf("%s!%s: %w", sheet, c.ref, err))
		}
	}
	return errors.Join(errs...)
}

// WriteMock writes the placeholder record.
func WriteMock(store workbook.Store, sheet string) error {
	return WriteRecord(store, sheet, MockRecord())
}

// Outcome of filling the registration sheet.
type Outcome string

const (
	OutcomeWritten  Outcome = "written"
	OutcomeMock     Outcome = "mock"
	OutcomeNoRecord Outcome = "no_record"
	OutcomeFailed   Outcome = "failed"
)

// Filler fills the cover page and the registration sheet for one company.
type Filler struct {
	lookup     Lookup
	enabled    bool
	sheet      string
	coverSheet string
}

// NewFiller creates a filler. With enabled false (or no lookup) the mock
// record is written instead of querying.
func NewFiller(lookup Lookup, enabled bool) *Filler {
	return &Filler{lookup: lookup, enabled: enabled, sheet: DefaultSheet, coverSheet: DefaultCoverSheet}
}

// WithSheets overrides the registration and cover sheet names.
func (f *Filler) WithSheets(sheet, cover string) *Filler {
	if sheet != "" {
		f.sheet = sheet
	}
	if cover != "" {
		f.coverSheet = cover
	}
	return f
}

// Fill writes the company name to the cover page and the registry record to
// the registration sheet. Failures are logged and reported through the
// outcome; they never stop the caller.
func (f *Filler) Fill(ctx context.Context, store workbook.Store, companyName string) (Outcome, *Record) {
	if err := workbook.SetRef(store, f.coverSheet, CoverNameCell, companyName); err != nil {
		log.Printf("[Registry] failed to write company name to %s!%s: %v", f.coverSheet, CoverNameCell, err)
	}

	if !f.enabled || f.lookup == nil {
		if err := WriteMock(store, f.sheet); err != nil {
			log.Printf("[Registry] failed to write mock record: %v", err)
			return OutcomeFailed, nil
		}
		return OutcomeMock, MockRecord()
	}

	rec, err := f.lookup.Lookup(ctx, companyName)
	if err != nil {
		if errors.Is(err, ErrNoRecord) {
			log.Printf("[Registry] no record for %s, %s left blank", companyName, f.sheet)
			return OutcomeNoRecord, nil
		}
		log.Printf("[Registry] lookup failed for %s: %v", companyName, err)
		return OutcomeFailed, nil
	}
	if err := WriteRecord(store, f.sheet, rec); err != nil {
		log.Printf("[Registry] failed to write record: %v", err)
		return OutcomeFailed, rec
	}
	return OutcomeWritten, rec
}

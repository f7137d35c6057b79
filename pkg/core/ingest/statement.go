// Package ingest turns upstream statement exports (xlsx workbooks, HTML
// tables, extractor JSON) into named value maps.
package ingest

import (
	"audit_workpaper/pkg/models"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrSourceUnavailable is returned when a producer yields no data.
var ErrSourceUnavailable = errors.New("statement source unavailable")

// StatementResult is one producer's output for one statement, tagged with
// success. Values is never nil.
type StatementResult struct {
	Statement models.StatementType
	Values    models.NamedValueMap
	Company   string
	OK        bool
	Err       error
}

// Unavailable builds a failed result wrapping ErrSourceUnavailable.
func Unavailable(st models.StatementType, format string, args ...interface{}) StatementResult {
	return StatementResult{
		Statement: st,
		Values:    models.NamedValueMap{},
		Err:       fmt.Errorf("%w: %s", ErrSourceUnavailable, fmt.Sprintf(format, args...)),
	}
}

// ValuesOrEmpty returns the values of a successful result, or an empty map.
func (r StatementResult) ValuesOrEmpty() models.NamedValueMap {
	if !r.OK || r.Values == nil {
		return models.NamedValueMap{}
	}
	return r.Values
}

var amountClean = regexp.MustCompile(`[^0-9.\-]`)

// ParseAmount parses a statement amount as printed: thousands separators,
// currency marks, and parentheses for negatives. Dashes and blanks are not
// amounts.
func ParseAmount(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "", "—", "-", "–", "－", "N/A", "/":
		return 0, false
	}

	negative := (strings.Contains(raw, "(") && strings.Contains(raw, ")")) ||
		(strings.Contains(raw, "（") && strings.Contains(raw, "）"))

	cleaned := amountClean.ReplaceAllString(raw, "")
	if cleaned == "" || cleaned == "." || cleaned == "-" {
		return 0, false
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	if negative && value > 0 {
		value = -value
	}
	return value, true
}

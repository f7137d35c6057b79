// Package mapping translates the many wordings of a financial-statement line
// into one addressable row of the workpaper.
//
// A Table is immutable once built. Ambiguous tables (one alias claimed by two
// canonical lines) are rejected at construction with a *ConfigurationError,
// so engines never have to decide between two rows at run time.
package mapping

import (
	"audit_workpaper/pkg/models"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// ConfigurationError reports an invalid or ambiguous mapping table.
type ConfigurationError struct {
	Statement models.StatementType
	Alias     string
	Keys      []string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	if len(e.Keys) > 0 {
		return fmt.Sprintf("mapping %s: %s: alias %q claimed by %s", e.Statement, e.Reason, e.Alias, strings.Join(e.Keys, ", "))
	}
	return fmt.Sprintf("mapping %s: %s: %q", e.Statement, e.Reason, e.Alias)
}

// Line is one canonical line item of a statement.
type Line struct {
	Statement models.StatementType
	Key       string   // canonical name
	Row       int      // 1-indexed workpaper row
	Derived   bool     // subtotal/net row computed by a formula, never written
	Aliases   []string // observed wordings, Key included
}

// Position binds the line to a period column.
func (l Line) Position(role models.ColumnRole) models.StatementPosition {
	return models.StatementPosition{Statement: l.Statement, Row: l.Row, Column: role}
}

// AliasIndex returns the position in Aliases of the alias label names
// exactly (the canonical key is 0), or -1 when label only matches by
// containment.
func (l Line) AliasIndex(label string) int {
	n := normalize(label)
	for i, a := range l.Aliases {
		if n == normalize(a) {
			return i
		}
	}
	return -1
}

// Table is the ordered set of canonical lines of one statement type.
type Table struct {
	statement models.StatementType
	lines     []Line
	exact     map[string]int // normalized alias -> line index
}

// NewTable validates and indexes the lines in declaration order.
func NewTable(st models.StatementType, lines []Line) (*Table, error) {
	if !st.Valid() {
		return nil, &ConfigurationError{Statement: st, Alias: string(st), Reason: "unknown statement type"}
	}
	t := &Table{
		statement: st,
		lines:     make([]Line, 0, len(lines)),
		exact:     make(map[string]int),
	}
	keys := make(map[string]bool)
	for _, in := range lines {
		key := strings.TrimSpace(in.Key)
		if key == "" {
			return nil, &ConfigurationError{Statement: st, Reason: "empty canonical key"}
		}
		if keys[key] {
			return nil, &ConfigurationError{Statement: st, Alias: key, Reason: "duplicate canonical key"}
		}
		if in.Row < 1 {
			return nil, &ConfigurationError{Statement: st, Alias: key, Reason: fmt.Sprintf("invalid row %d", in.Row)}
		}
		keys[key] = true

		line := Line{Statement: st, Key: key, Row: in.Row, Derived: in.Derived}
		idx := len(t.lines)
		seen := make(map[string]bool)
		for _, a := range append([]string{key}, in.Aliases...) {
			n := normalize(a)
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			if other, ok := t.exact[n]; ok {
				return nil, &ConfigurationError{
					Statement: st,
					Alias:     strings.TrimSpace(a),
					Keys:      []string{t.lines[other].Key, key},
					Reason:    "overlapping alias sets",
				}
			}
			t.exact[n] = idx
			line.Aliases = append(line.Aliases, strings.TrimSpace(a))
		}
		t.lines = append(t.lines, line)
	}
	return t, nil
}

// Statement returns the statement type of the table.
func (t *Table) Statement() models.StatementType {
	return t.statement
}

// Lines returns the lines in declaration order.
func (t *Table) Lines() []Line {
	out := make([]Line, len(t.lines))
	copy(out, t.lines)
	return out
}

// Len returns the number of canonical lines.
func (t *Table) Len() int {
	return len(t.lines)
}

// Match resolves an observed label to its canonical line.
// An exact alias wins; otherwise the first line (declaration order) with an
// alias contained in the label wins.
func (t *Table) Match(label string) (Line, bool) {
	n := normalize(label)
	if n == "" {
		return Line{}, false
	}
	if idx, ok := t.exact[n]; ok {
		return t.lines[idx], true
	}
	for _, line := range t.lines {
		for _, a := range line.Aliases {
			if strings.Contains(n, normalize(a)) {
				return line, true
			}
		}
	}
	return Line{}, false
}

// Lookup finds the source value of a line: canonical key first, then any
// alias, both by exact name.
func (t *Table) Lookup(source models.NamedValueMap, line Line) (float64, bool) {
	if v, ok := source[line.Key]; ok {
		return v, true
	}
	for _, a := range line.Aliases {
		if v, ok := source[a]; ok {
			return v, true
		}
	}
	// Parsers sometimes keep stray spaces in names.
	names := make([]string, 0, len(source))
	for name := range source {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		n := normalize(name)
		for _, a := range line.Aliases {
			if n == normalize(a) {
				return source[name], true
			}
		}
	}
	return 0, false
}

// normalize drops whitespace (ASCII and full-width) and surrounding colons.
func normalize(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return strings.Trim(s, ":：")
}

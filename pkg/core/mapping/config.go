package mapping

import (
	"audit_workpaper/pkg/models"
	"fmt"
)

// Layout places the statement tables in the workpaper.
type Layout struct {
	Sheet         string // mapping worksheet, e.g. "Z3-2"
	CurrentColumn int    // column of current-period amounts (C)
	PriorColumn   int    // column of prior-period amounts (D)
}

// DefaultLayout is the Z3-2 layout: C = year end, D = year start / prior year.
func DefaultLayout() Layout {
	return Layout{Sheet: "Z3-2", CurrentColumn: 3, PriorColumn: 4}
}

// Column returns the column index of a period role.
func (l Layout) Column(role models.ColumnRole) int {
	if role == models.PriorPeriod {
		return l.PriorColumn
	}
	return l.CurrentColumn
}

// Config is the immutable mapping configuration handed to every engine.
type Config struct {
	layout Layout
	tables map[models.StatementType]*Table
}

// NewConfig assembles tables under a layout. Each statement type may appear
// at most once.
func NewConfig(layout Layout, tables ...*Table) (*Config, error) {
	if layout.Sheet == "" {
		return nil, &ConfigurationError{Reason: "empty mapping sheet name"}
	}
	if layout.CurrentColumn < 1 || layout.PriorColumn < 1 || layout.CurrentColumn == layout.PriorColumn {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("invalid period columns %d/%d", layout.CurrentColumn, layout.PriorColumn)}
	}
	c := &Config{layout: layout, tables: make(map[models.StatementType]*Table)}
	for _, t := range tables {
		if t == nil {
			continue
		}
		if _, dup := c.tables[t.Statement()]; dup {
			return nil, &ConfigurationError{Statement: t.Statement(), Reason: "duplicate table"}
		}
		c.tables[t.Statement()] = t
	}
	return c, nil
}

// Layout returns the sheet layout.
func (c *Config) Layout() Layout {
	return c.layout
}

// Table returns the table of a statement type, nil when not configured.
func (c *Config) Table(st models.StatementType) *Table {
	return c.tables[st]
}

// Resolve maps an observed label to its canonical line. The line's Position
// binds it to the period column a pass works on.
func (c *Config) Resolve(st models.StatementType, alias string) (Line, bool) {
	t := c.tables[st]
	if t == nil {
		return Line{}, false
	}
	return t.Match(alias)
}

// Cell translates a position into sheet coordinates.
func (c *Config) Cell(pos models.StatementPosition) (sheet string, row, col int) {
	return c.layout.Sheet, pos.Row, c.layout.Column(pos.Column)
}

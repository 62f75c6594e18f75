// Package fileparse decodes uploaded bordereaux files (.csv, .xlsx, .xls)
// into a uniform header/row table, independent of source format. Downstream
// packages only ever see the CellKind tagged union produced here.
package fileparse

import "time"

// CellKind tags the scalar type an individual cell decoded as. Excel cells
// carry native typing (numbers, dates, booleans); CSV cells are always text
// and get re-typed later by the normalize package during row mapping.
type CellKind int

const (
	CellNull CellKind = iota
	CellBool
	CellInt
	CellFloat
	CellText
	CellDateTime
)

// Cell is a tagged-union scalar value: exactly one of the typed fields is
// meaningful, selected by Kind. Text always holds the original string
// rendering of the value, even for typed cells, so downstream code that
// wants the raw source text (e.g. for raw_data JSON) never has to
// special-case the kind.
type Cell struct {
	Kind CellKind
	Text string
	Bool bool
	Int  int64
	Float float64
	Time time.Time
}

// String returns the cell's string representation for JSON/debug purposes.
func (c Cell) String() string {
	return c.Text
}

// IsNull reports whether the cell carries no value.
func (c Cell) IsNull() bool {
	return c.Kind == CellNull
}

func nullCell() Cell {
	return Cell{Kind: CellNull}
}

func textCell(s string) Cell {
	return Cell{Kind: CellText, Text: s}
}

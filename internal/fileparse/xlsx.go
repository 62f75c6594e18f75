package fileparse

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/borderops/ingestor/internal/normalize"
)

// parseExcel decodes the first sheet of an OOXML (.xlsx) workbook into a
// Table; legacy binary .xls workbooks are not readable by excelize and come
// back as a ParseError. Cells are typed
// from excelize's own CellType plus a date heuristic on the
// already-number-formatted text (excelize renders date-formatted cells as
// their display string, not the underlying serial number).
func parseExcel(raw []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, &ParseError{Reason: "failed opening workbook", Cause: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Table{}, nil
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ParseError{Reason: "failed reading sheet rows", Cause: err}
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}

	headers := normalizeHeaders(rows[0])
	width := len(headers)

	var out []map[string]Cell
	for r, record := range rows[1:] {
		rowNum := r + 2 // 1-indexed, plus header row
		row := make(map[string]Cell, width)
		for i, h := range headers {
			if i >= len(record) {
				row[h] = nullCell()
				continue
			}
			axis, err := excelize.CoordinatesToCellName(i+1, rowNum)
			if err != nil {
				row[h] = textCell(strings.TrimSpace(record[i]))
				continue
			}
			row[h] = excelCell(f, sheet, axis, record[i])
		}
		out = append(out, row)
	}

	return &Table{Headers: headers, Rows: out}, nil
}

// excelCell types a single decoded cell value using excelize's cell type
// plus a date heuristic, falling back to text on anything ambiguous.
func excelCell(f *excelize.File, sheet, axis, formatted string) Cell {
	v := strings.TrimSpace(formatted)
	if v == "" {
		return nullCell()
	}

	cellType, err := f.GetCellType(sheet, axis)
	if err != nil {
		return textCell(v)
	}

	switch cellType {
	case excelize.CellTypeBool:
		b := strings.EqualFold(v, "TRUE") || v == "1"
		return Cell{Kind: CellBool, Text: v, Bool: b}

	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		// A cell with no t attribute is a number in OOXML; excelize
		// reports it as CellTypeUnset.
		if t, ok := normalize.ParseDate(v); ok {
			return Cell{Kind: CellDateTime, Text: v, Time: t}
		}
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return Cell{Kind: CellInt, Text: v, Int: i}
		}
		if fl, err := strconv.ParseFloat(v, 64); err == nil {
			return Cell{Kind: CellFloat, Text: v, Float: fl}
		}
		return textCell(v)

	default:
		if t, ok := normalize.ParseDate(v); ok {
			return Cell{Kind: CellDateTime, Text: v, Time: t}
		}
		return textCell(v)
	}
}

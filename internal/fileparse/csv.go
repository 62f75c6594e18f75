package fileparse

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"
)

// parseCSV decodes raw CSV bytes into a Table. It tries the encoding
// fallback chain first, then streams the decoded text through a BOM-
// stripping, UTF-8-sanitizing reader so encoding.csv.Reader never sees
// invalid runes. Lines the csv reader rejects, and lines with more fields
// than the header row, are skipped rather than aborting the whole parse;
// lines with fewer fields are padded with null cells.
func parseCSV(raw []byte) (*Table, error) {
	decoded, ok := decodeEncodingChain(raw)
	if !ok {
		return nil, &ParseError{Reason: "no encoding in the fallback chain produced valid text"}
	}

	sanitized := newUTF8Sanitizer(strings.NewReader(decoded))
	reader := csv.NewReader(bufio.NewReader(sanitized))
	reader.FieldsPerRecord = -1 // allow ragged rows; field count checked per record below
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = false

	rawHeader, err := reader.Read()
	if err == io.EOF {
		return &Table{Headers: nil, Rows: nil}, nil
	}
	if err != nil {
		return nil, &ParseError{Reason: "failed reading header row", Cause: err}
	}

	headers := normalizeHeaders(rawHeader)
	width := len(headers)

	var rows []map[string]Cell
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed line: skip it and keep going.
			continue
		}
		if len(record) > width {
			// More fields than headers: malformed, skip it too.
			continue
		}

		row := make(map[string]Cell, width)
		for i, h := range headers {
			if i >= len(record) {
				row[h] = nullCell()
				continue
			}
			v := strings.TrimSpace(record[i])
			if v == "" {
				row[h] = nullCell()
				continue
			}
			row[h] = textCell(v)
		}
		rows = append(rows, row)
	}

	return &Table{Headers: headers, Rows: rows}, nil
}

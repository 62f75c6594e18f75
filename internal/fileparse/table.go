package fileparse

// Table is the uniform output of decoding any supported file format: an
// ordered list of normalized headers and an ordered list of rows, each row a
// map from normalized header to cell value.
type Table struct {
	Headers []string
	Rows    []map[string]Cell
}

package fileparse

import "strings"

// Parse decodes raw bytes into a Table, dispatching on the file's extension
// (taken from filename). Supported extensions: .csv, .xlsx, .xls. An .xls
// file is read with the .xlsx decoder, so only OOXML content decodes; a
// legacy binary .xls workbook returns a ParseError.
func Parse(raw []byte, filename string) (*Table, error) {
	ext := extensionOf(filename)

	switch ext {
	case ".xlsx", ".xls":
		return parseExcel(raw)
	case ".csv", "":
		return parseCSV(raw)
	default:
		return nil, &ParseError{Filename: filename, Reason: "unsupported file extension " + ext}
	}
}

func extensionOf(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(filename[i:])
}

package storage

import (
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// sniffedMimeTypes maps h2non/filetype's detected extension to the MIME
// types this system cares about; everything else falls through to the
// header-provided content type or a generic octet-stream.
var sniffedMimeTypes = map[string]string{
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"xls":  "application/vnd.ms-excel",
	"zip":  "application/zip", // xlsx is a zip container; filetype may match this first
}

// detectMimeType sniffs the content type from the first bytes of data,
// falling back to extension-based guessing for formats filetype doesn't
// recognize structurally (plain CSV has no magic bytes).
func detectMimeType(data []byte, filename string) string {
	head := data
	if len(head) > 261 {
		head = head[:261]
	}

	if kind, err := filetype.Match(head); err == nil && kind != filetype.Unknown {
		if mime, ok := sniffedMimeTypes[kind.Extension]; ok {
			return mime
		}
		return kind.MIME.Value
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".xls":
		return "application/vnd.ms-excel"
	default:
		return "application/octet-stream"
	}
}

package fileparse

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// decodeEncodingChain tries each encoding in order and returns the first one
// that produces valid UTF-8 text. utf-8 is checked structurally (no
// transcoding needed); the rest go through golang.org/x/text's charmap
// tables. latin-1 and iso-8859-1 are the same table (ISO8859_1), listed
// once. ISO8859_1 maps every byte to a rune, so it always succeeds and the
// Windows1252 entry after it is never reached.
func decodeEncodingChain(raw []byte) (string, bool) {
	raw = stripBOM(raw)

	if utf8.Valid(raw) {
		return string(raw), true
	}

	for _, enc := range []*charmap.Charmap{
		charmap.ISO8859_1,
		charmap.Windows1252,
	} {
		if decoded, err := enc.NewDecoder().Bytes(raw); err == nil && utf8.Valid(decoded) {
			return string(decoded), true
		}
	}

	return "", false
}

package templatestore

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ColumnMapping pairs one source file header with the canonical field it
// maps to.
type ColumnMapping struct {
	SourceColumn string
	Field        string
}

// ColumnMappings is an ordered list of source-header-to-canonical-field
// pairings, serialized to and from JSON as a plain object so the wire
// format and on-disk sidecar shape are unchanged. Unlike map[string]string,
// it preserves the authoring order of the JSON object it was decoded from
// — the order the row mapper uses to break ties when several source
// columns map to the same canonical field.
type ColumnMappings []ColumnMapping

// MarshalJSON writes cm as a JSON object, in slice order.
func (cm ColumnMappings) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range cm {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.SourceColumn)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Field)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object into cm, preserving key order via
// json.Decoder's token stream instead of decoding into a map.
func (cm *ColumnMappings) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("templatestore: column_mappings must be a JSON object")
	}

	var out ColumnMappings
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var val string
		if err := dec.Decode(&val); err != nil {
			return err
		}
		out = append(out, ColumnMapping{SourceColumn: key, Field: val})
	}
	*cm = out
	return nil
}

// Map returns cm as a plain map, for callers that only need membership or
// lookup and don't care about order.
func (cm ColumnMappings) Map() map[string]string {
	m := make(map[string]string, len(cm))
	for _, e := range cm {
		m[e.SourceColumn] = e.Field
	}
	return m
}

// NewColumnMappings builds an ordered ColumnMappings from a plain map, for
// callers (tests, LLM/heuristic proposal output) that only have a map to
// start from. Order is Go's unspecified map iteration order — callers that
// need a specific order should build the slice directly instead.
func NewColumnMappings(m map[string]string) ColumnMappings {
	out := make(ColumnMappings, 0, len(m))
	for k, v := range m {
		out = append(out, ColumnMapping{SourceColumn: k, Field: v})
	}
	return out
}

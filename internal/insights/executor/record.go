package executor

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// Record is one result row: column values in projection order.
type Record struct {
	columns []string
	values  []any
}

// NewRecord pairs columns with values; both must have the same length.
func NewRecord(columns []string, values []any) Record {
	return Record{columns: columns, values: values}
}

func (r Record) Columns() []string {
	return r.columns
}

// Value returns the value of the named column. When a projection repeats a
// column name the last value wins.
func (r Record) Value(column string) (any, bool) {
	if i := r.lastIndex(column); i >= 0 {
		return r.values[i], true
	}
	return nil, false
}

func (r Record) lastIndex(column string) int {
	for i := len(r.columns) - 1; i >= 0; i-- {
		if r.columns[i] == column {
			return i
		}
	}
	return -1
}

// MarshalJSON encodes the record as an object whose keys keep column order.
// A repeated column is written once, at its first position, with its last
// value.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	seen := make(map[string]struct{}, len(r.columns))
	for _, c := range r.columns {
		if _, dup := seen[c]; dup {
			continue
		}
		if len(seen) > 0 {
			buf.WriteByte(',')
		}
		seen[c] = struct{}{}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.values[r.lastIndex(c)])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

package recovery

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Field names read from directory records. Both phone spellings occur in the store.
const (
	FieldPhone            = "nomor"
	FieldPhoneAlt         = "phone"
	FieldName             = "nama"
	FieldNameAlt          = "name"
	FieldPassword         = "password"
	FieldPasswordUpdateAt = "passwordUpdatedAt"
)

// Record is one directory entry as stored remotely. Fields is an opaque copy of the stored object;
// recovery only reads it.
type Record struct {
	ID     string
	Fields map[string]any
}

// Directory is a point-in-time snapshot of a collection in the store's iteration order.
type Directory []Record

// Phone returns the raw phone field, preferring "nomor" over "phone". Numbers are read as their
// integer digits; blank values and other types are treated as absent.
func (r Record) Phone() string {
	return r.firstString(FieldPhone, FieldPhoneAlt)
}

// DisplayName returns "nama", then "name", then the record id.
func (r Record) DisplayName() string {
	if n := r.firstString(FieldName, FieldNameAlt); n != "" {
		return n
	}
	return r.ID
}

func (r Record) firstString(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(fieldText(r.Fields[k])); v != "" {
			return v
		}
	}
	return ""
}

// fieldText renders a stored scalar as text. Non-integer and non-finite numbers yield "".
func fieldText(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case json.Number:
		if _, err := v.Int64(); err == nil {
			return v.String()
		}
		f, err := v.Float64()
		if err != nil {
			return ""
		}
		return fieldText(f)
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) || v != math.Trunc(v) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

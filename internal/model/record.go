package model

import (
	"sort"
)

// MergedRecord is the canonical output of a resolution: the resolved
// fields plus a parallel provenance map naming the source(s) that
// supplied each populated field. Records are built once per resolution
// and never mutated after validation.
type MergedRecord struct {
	ContentType string              `json:"content_type"`
	Fields      map[string]any      `json:"fields"`
	Provenance  map[string][]string `json:"provenance"`
}

// NewMergedRecord creates an empty record for the given content type.
func NewMergedRecord(contentType string) *MergedRecord {
	return &MergedRecord{
		ContentType: contentType,
		Fields:      make(map[string]any),
		Provenance:  make(map[string][]string),
	}
}

// SetField stores a resolved value with its contributing sources. Every
// populated field carries at least one provenance entry.
func (r *MergedRecord) SetField(field string, value any, sources ...string) {
	r.Fields[field] = value
	r.Provenance[field] = append([]string(nil), sources...)
}

// Has reports whether the field resolved to a meaningful value.
func (r *MergedRecord) Has(field string) bool {
	v, ok := r.Fields[field]
	return ok && Meaningful(field, v)
}

// String returns the field as a string, or "" when absent or not a string.
func (r *MergedRecord) String(field string) string {
	s, _ := r.Fields[field].(string)
	return s
}

// Int returns the field as an int, tolerating int64 and float64 shapes
// left over from weakly typed sources.
func (r *MergedRecord) Int(field string) int {
	switch v := r.Fields[field].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Float returns the field as a float64, or 0 when absent.
func (r *MergedRecord) Float(field string) float64 {
	switch v := r.Fields[field].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

// StringList returns the field as a string slice, converting []any
// element-wise when needed.
func (r *MergedRecord) StringList(field string) []string {
	switch v := r.Fields[field].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Chapters returns the structured chapter list, or nil when absent.
func (r *MergedRecord) Chapters(field string) []Chapter {
	ch, _ := r.Fields[field].([]Chapter)
	return ch
}

// FieldNames returns the populated field names in sorted order, so
// iteration over a record is deterministic.
func (r *MergedRecord) FieldNames() []string {
	names := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Package model defines the data shapes shared across the resolution
// pipeline: raw per-source field sets, the merged canonical record with
// provenance, precedence rules, and validation policies.
package model

// Source identifiers used in RawFieldSet markers, precedence rules, and
// provenance entries.
const (
	SourcePathInfo = "pathinfo"
	SourceEmbedded = "embedded"
	SourceCatalog  = "catalog"
)

// SourceKey is the mandatory marker every RawFieldSet carries to identify
// its origin. A field set without it is rejected by the merge step.
const SourceKey = "_src"

// RawFieldSet is a weakly typed field mapping produced by exactly one
// source. Values may be scalars, string lists, or nested objects —
// source-specific shapes are tolerated until the merge step.
type RawFieldSet map[string]any

// NewRawFieldSet creates a RawFieldSet tagged with the given source identifier.
func NewRawFieldSet(source string) RawFieldSet {
	return RawFieldSet{SourceKey: source}
}

// Source returns the origin marker, or "" when the set is untagged.
func (fs RawFieldSet) Source() string {
	s, _ := fs[SourceKey].(string)
	return s
}

// Set stores a field value, dropping non-meaningful values so that empty
// strings and zero sentinels never shadow a lower-priority source.
func (fs RawFieldSet) Set(field string, value any) {
	if !Meaningful(field, value) {
		return
	}
	fs[field] = value
}

// HasField reports whether a meaningful value is present for the field.
func (fs RawFieldSet) HasField(field string) bool {
	v, ok := fs[field]
	return ok && Meaningful(field, v)
}

// FieldNames returns the data field names present in the set, excluding
// the source marker. Order is unspecified.
func (fs RawFieldSet) FieldNames() []string {
	names := make([]string, 0, len(fs))
	for k := range fs {
		if k == SourceKey {
			continue
		}
		names = append(names, k)
	}
	return names
}

// Chapter is a single chapter entry with its start offset in seconds.
// Both the embedded source and the catalog chapter endpoint normalize to
// this shape.
type Chapter struct {
	Index    int     `json:"index" yaml:"index"`
	Title    string  `json:"title" yaml:"title"`
	StartSec float64 `json:"start_sec" yaml:"start_sec"`
}

// Person is a named catalog entity that may carry the catalog's own
// identifier, preserved so downstream consumers can link back without
// re-searching.
type Person struct {
	Name string `json:"name"`
	ASIN string `json:"asin,omitempty"`
}

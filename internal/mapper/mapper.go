// Package mapper translates a validated record into an upload payload
// for one tracker, driven by a target-specific field-name map. The
// upload clients themselves consume the payload elsewhere; this package
// is the last step owned by the resolution pipeline.
package mapper

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/quillaudio/quill/internal/model"
)

// FieldMap names an upload target and maps its payload field names to
// record field names.
type FieldMap struct {
	Target string            `yaml:"target"`
	Fields map[string]string `yaml:"fields"`
}

// Map produces the payload: every mapped record field that resolved to
// a meaningful value, keyed by the target's name for it. Unpopulated
// fields are simply absent, letting the target's own defaults apply.
func (m FieldMap) Map(record *model.MergedRecord) map[string]any {
	payload := make(map[string]any, len(m.Fields))
	for targetField, recordField := range m.Fields {
		if record.Has(recordField) {
			payload[targetField] = record.Fields[recordField]
		}
	}
	return payload
}

// LoadFieldMap reads a target field map from a YAML file.
func LoadFieldMap(path string) (FieldMap, error) {
	var fm FieldMap
	data, err := os.ReadFile(path)
	if err != nil {
		return fm, eris.Wrapf(err, "mapper: read %s", path)
	}
	if err := yaml.Unmarshal(data, &fm); err != nil {
		return fm, eris.Wrapf(err, "mapper: parse %s", path)
	}
	if fm.Target == "" || len(fm.Fields) == 0 {
		return fm, eris.Errorf("mapper: %s missing target name or fields", path)
	}
	return fm, nil
}

// Generic is a built-in target map covering the common tracker upload
// form fields; a starting point for per-tracker maps.
func Generic() FieldMap {
	return FieldMap{
		Target: "generic",
		Fields: map[string]string{
			"title":       model.FieldTitle,
			"subtitle":    model.FieldSubtitle,
			"authors":     model.FieldAuthors,
			"narrators":   model.FieldNarrators,
			"genres":      model.FieldGenres,
			"series":      model.FieldSeriesName,
			"seriesPos":   model.FieldSeriesPosition,
			"year":        model.FieldYear,
			"asin":        model.FieldASIN,
			"description": model.FieldSummary,
			"durationSec": model.FieldDurationSec,
			"bitrate":     model.FieldBitrate,
			"codec":       model.FieldCodec,
		},
	}
}

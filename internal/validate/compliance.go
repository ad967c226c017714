package validate

import (
	"fmt"

	"github.com/quillaudio/quill/internal/model"
)

// TargetPolicy captures an upload target's extra requirements beyond
// the core policy. Zero values disable each check.
type TargetPolicy struct {
	Name            string `yaml:"name"`
	MaxSummaryChars int    `yaml:"max_summary_chars"`
	RequireCover    bool   `yaml:"require_cover"`
	RequireChapters bool   `yaml:"require_chapters"`
	RequireSeries   bool   `yaml:"require_series"`
}

// Compliance builds a Check from a target policy. Target findings are
// hints, not structural verdicts: everything lands in warnings so an
// otherwise valid record can still be cross-posted elsewhere.
func Compliance(tp TargetPolicy) Check {
	return func(record *model.MergedRecord) ([]string, []string) {
		var warns []string

		if tp.MaxSummaryChars > 0 {
			if summary := record.String(model.FieldSummary); len(summary) > tp.MaxSummaryChars {
				warns = append(warns, fmt.Sprintf("%s: summary is %d chars, limit %d", tp.Name, len(summary), tp.MaxSummaryChars))
			}
		}
		if tp.RequireCover {
			if cover, ok := record.Fields[model.FieldHasCover].(bool); !ok || !cover {
				warns = append(warns, fmt.Sprintf("%s: embedded cover art required", tp.Name))
			}
		}
		if tp.RequireChapters && len(record.Chapters(model.FieldChapters)) == 0 {
			warns = append(warns, fmt.Sprintf("%s: chapter list required", tp.Name))
		}
		if tp.RequireSeries && !record.Has(model.FieldSeriesName) {
			warns = append(warns, fmt.Sprintf("%s: series name required", tp.Name))
		}

		return nil, warns
	}
}

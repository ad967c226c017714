package model

// Canonical field names shared by sources, rules, and policies.
const (
	FieldTitle            = "title"
	FieldSubtitle         = "subtitle"
	FieldAuthors          = "authors"
	FieldAuthorsDetail    = "authors_detail"
	FieldNarrators        = "narrators"
	FieldNarratorsDetail  = "narrators_detail"
	FieldGenres           = "genres"
	FieldTags             = "tags"
	FieldSeriesName       = "series_name"
	FieldSeriesPosition   = "series_position"
	FieldVolume           = "volume"
	FieldYear             = "year"
	FieldASIN             = "asin"
	FieldUploaderTag      = "uploader_tag"
	FieldPublisher        = "publisher"
	FieldLanguage         = "language"
	FieldReleaseDate      = "release_date"
	FieldSummary          = "summary"
	FieldSummaryHTML      = "summary_html"
	FieldDurationSec      = "duration_sec"
	FieldBitrate          = "bitrate"
	FieldSampleRate       = "sample_rate"
	FieldChannels         = "channels"
	FieldChapters         = "chapters"
	FieldHasCover         = "has_cover"
	FieldCodec            = "codec"
	FieldEncodingMode     = "encoding_mode"
	FieldQualityScore     = "quality_score"
	FieldFormatProvenance = "format_provenance"
)

// positiveNumericFields are fields whose semantics require a positive
// value; a zero there is a sentinel for "unknown" and is not meaningful.
var positiveNumericFields = map[string]bool{
	FieldYear:        true,
	FieldDurationSec: true,
	FieldBitrate:     true,
	FieldSampleRate:  true,
	FieldChannels:    true,
}

// Meaningful reports whether a value counts as supplied for merge
// purposes: non-nil, non-empty for strings and collections, and positive
// for numeric fields that use zero as an unknown sentinel.
func Meaningful(field string, value any) bool {
	if value == nil {
		return false
	}
	switch v := value.(type) {
	case string:
		return v != ""
	case []string:
		return len(v) > 0
	case []any:
		return len(v) > 0
	case []Chapter:
		return len(v) > 0
	case []Person:
		return len(v) > 0
	case int:
		if positiveNumericFields[field] {
			return v > 0
		}
		return true
	case int64:
		if positiveNumericFields[field] {
			return v > 0
		}
		return true
	case float64:
		if positiveNumericFields[field] {
			return v > 0
		}
		return true
	case bool:
		return true
	default:
		return true
	}
}

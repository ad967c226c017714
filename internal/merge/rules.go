package merge

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/quillaudio/quill/internal/model"
)

// DefaultRulesVersion identifies the built-in precedence table.
const DefaultRulesVersion = "builtin-1"

// rulesFile is the YAML shape of an external precedence table.
type rulesFile struct {
	Version string                 `yaml:"version"`
	Rules   []model.PrecedenceRule `yaml:"rules"`
}

// LoadRuleSet reads and validates a precedence table from a YAML file.
func LoadRuleSet(path string, knownSources []string) (*model.RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "rules: read %s", path)
	}
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrapf(err, "rules: parse %s", path)
	}
	rs, err := model.NewRuleSet(file.Version, file.Rules, knownSources)
	if err != nil {
		return nil, err
	}
	return rs, nil
}

// DefaultRuleSet builds the built-in audiobook precedence table.
// Technical fields prefer the embedded source, with catalog
// approximations as fallback; descriptive fields prefer the catalog,
// with path-derived values kept first where uploader naming conventions
// are authoritative (title, volume, year, identifier).
func DefaultRuleSet(knownSources []string) (*model.RuleSet, error) {
	return model.NewRuleSet(DefaultRulesVersion, DefaultRules(), knownSources)
}

// DefaultRules returns the built-in table as plain data.
func DefaultRules() []model.PrecedenceRule {
	pathFirst := []string{model.SourcePathInfo, model.SourceCatalog, model.SourceEmbedded}
	catalogFirst := []string{model.SourceCatalog, model.SourcePathInfo, model.SourceEmbedded}
	catalogEmbedded := []string{model.SourceCatalog, model.SourceEmbedded}
	embeddedFirst := []string{model.SourceEmbedded, model.SourceCatalog}
	embeddedOnly := []string{model.SourceEmbedded}
	catalogOnly := []string{model.SourceCatalog}

	return []model.PrecedenceRule{
		// Compliance-critical naming fields: the path convention wins.
		{Field: model.FieldTitle, Sources: pathFirst, Strategy: model.StrategyOverride},
		{Field: model.FieldVolume, Sources: []string{model.SourcePathInfo, model.SourceCatalog}, Strategy: model.StrategyOverride},
		{Field: model.FieldYear, Sources: pathFirst, Strategy: model.StrategyOverride},
		{Field: model.FieldASIN, Sources: []string{model.SourcePathInfo, model.SourceCatalog}, Strategy: model.StrategyOverride},
		{Field: model.FieldUploaderTag, Sources: []string{model.SourcePathInfo}, Strategy: model.StrategyOverride},

		// Descriptive fields: catalog first.
		{Field: model.FieldSubtitle, Sources: catalogFirst, Strategy: model.StrategyOverride},
		{Field: model.FieldAuthors, Sources: catalogFirst, Strategy: model.StrategyOverride},
		{Field: model.FieldAuthorsDetail, Sources: catalogOnly, Strategy: model.StrategyOverride},
		{Field: model.FieldNarrators, Sources: catalogEmbedded, Strategy: model.StrategyUnion},
		{Field: model.FieldNarratorsDetail, Sources: catalogOnly, Strategy: model.StrategyOverride},
		{Field: model.FieldGenres, Sources: catalogEmbedded, Strategy: model.StrategyUnion},
		{Field: model.FieldTags, Sources: catalogOnly, Strategy: model.StrategyUnion},
		{Field: model.FieldSeriesName, Sources: catalogOnly, Strategy: model.StrategyOverride},
		{Field: model.FieldSeriesPosition, Sources: catalogOnly, Strategy: model.StrategyOverride},
		{Field: model.FieldPublisher, Sources: catalogEmbedded, Strategy: model.StrategyOverride},
		{Field: model.FieldLanguage, Sources: catalogEmbedded, Strategy: model.StrategyOverride},
		{Field: model.FieldReleaseDate, Sources: catalogOnly, Strategy: model.StrategyOverride},
		{Field: model.FieldSummary, Sources: catalogOnly, Strategy: model.StrategyOverride},
		{Field: model.FieldSummaryHTML, Sources: catalogOnly, Strategy: model.StrategyOverride},

		// Technical fields: the container is authoritative; catalog
		// figures are minute-granularity approximations.
		{Field: model.FieldDurationSec, Sources: embeddedFirst, Strategy: model.StrategyOverride},
		{Field: model.FieldBitrate, Sources: embeddedOnly, Strategy: model.StrategyOverride},
		{Field: model.FieldSampleRate, Sources: embeddedOnly, Strategy: model.StrategyOverride},
		{Field: model.FieldChannels, Sources: embeddedOnly, Strategy: model.StrategyOverride},
		{Field: model.FieldChapters, Sources: embeddedFirst, Strategy: model.StrategyOverride},
		{Field: model.FieldHasCover, Sources: embeddedOnly, Strategy: model.StrategyOverride},
		{Field: model.FieldCodec, Sources: embeddedOnly, Strategy: model.StrategyOverride},
		{Field: model.FieldEncodingMode, Sources: embeddedOnly, Strategy: model.StrategyOverride},
		{Field: model.FieldQualityScore, Sources: embeddedOnly, Strategy: model.StrategyOverride},
		{Field: model.FieldFormatProvenance, Sources: embeddedOnly, Strategy: model.StrategyOverride},
	}
}

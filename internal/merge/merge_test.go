package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillaudio/quill/internal/model"
)

var knownSources = []string{model.SourcePathInfo, model.SourceEmbedded, model.SourceCatalog}

func newService(t *testing.T) *Service {
	t.Helper()
	rules, err := DefaultRuleSet(knownSources)
	require.NoError(t, err)
	return New(rules)
}

func pathSet(fields map[string]any) model.RawFieldSet {
	return tagged(model.SourcePathInfo, fields)
}

func catalogSet(fields map[string]any) model.RawFieldSet {
	return tagged(model.SourceCatalog, fields)
}

func embeddedSet(fields map[string]any) model.RawFieldSet {
	return tagged(model.SourceEmbedded, fields)
}

func tagged(src string, fields map[string]any) model.RawFieldSet {
	fs := model.NewRawFieldSet(src)
	for k, v := range fields {
		fs[k] = v
	}
	return fs
}

func TestMergeOverridePrecedence(t *testing.T) {
	svc := newService(t)

	record, warnings, err := svc.Merge("audiobook", []model.RawFieldSet{
		pathSet(map[string]any{
			model.FieldTitle: "Project Hail Mary",
			model.FieldASIN:  "B08G9PRS1K",
			model.FieldYear:  2021,
		}),
		catalogSet(map[string]any{
			model.FieldTitle:    "Project Hail Mary (Unabridged)",
			model.FieldASIN:     "B08G9PRS1K",
			model.FieldYear:     2021,
			model.FieldSubtitle: "A Novel",
		}),
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	// Compliance-critical fields come from the path even when the
	// catalog disagrees.
	assert.Equal(t, "Project Hail Mary", record.String(model.FieldTitle))
	assert.Equal(t, []string{model.SourcePathInfo}, record.Provenance[model.FieldTitle])

	// Catalog-first fields fall through when the path has nothing.
	assert.Equal(t, "A Novel", record.String(model.FieldSubtitle))
	assert.Equal(t, []string{model.SourceCatalog}, record.Provenance[model.FieldSubtitle])
}

func TestMergeOverrideSkipsNonMeaningful(t *testing.T) {
	svc := newService(t)

	record, _, err := svc.Merge("audiobook", []model.RawFieldSet{
		pathSet(map[string]any{model.FieldTitle: "", model.FieldYear: 0}),
		catalogSet(map[string]any{model.FieldTitle: "Dune", model.FieldYear: 1965}),
	})
	require.NoError(t, err)

	// Empty string and zero sentinels never shadow a real value.
	assert.Equal(t, "Dune", record.String(model.FieldTitle))
	assert.Equal(t, 1965, record.Int(model.FieldYear))
	assert.Equal(t, []string{model.SourceCatalog}, record.Provenance[model.FieldYear])
}

func TestMergeUnionDedupesCaseInsensitively(t *testing.T) {
	svc := newService(t)

	record, _, err := svc.Merge("audiobook", []model.RawFieldSet{
		catalogSet(map[string]any{
			model.FieldNarrators: []string{"Ray Porter", "JULIA WHELAN"},
		}),
		embeddedSet(map[string]any{
			model.FieldNarrators: []string{"ray porter", "Travis Baldree"},
		}),
	})
	require.NoError(t, err)

	// First-seen casing wins; both contributors appear in provenance.
	assert.Equal(t, []string{"Ray Porter", "JULIA WHELAN", "Travis Baldree"},
		record.StringList(model.FieldNarrators))
	assert.Equal(t, []string{model.SourceCatalog, model.SourceEmbedded},
		record.Provenance[model.FieldNarrators])
}

func TestMergeUnionSingleSource(t *testing.T) {
	svc := newService(t)

	record, _, err := svc.Merge("audiobook", []model.RawFieldSet{
		catalogSet(map[string]any{model.FieldGenres: []string{"Science Fiction"}}),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Science Fiction"}, record.StringList(model.FieldGenres))
	assert.Equal(t, []string{model.SourceCatalog}, record.Provenance[model.FieldGenres])
}

func TestMergeRejectsUntaggedSet(t *testing.T) {
	svc := newService(t)

	_, _, err := svc.Merge("audiobook", []model.RawFieldSet{
		{model.FieldTitle: "untagged"},
	})
	assert.ErrorIs(t, err, ErrUntaggedFieldSet)
}

func TestMergeRejectsDuplicateSource(t *testing.T) {
	svc := newService(t)

	_, _, err := svc.Merge("audiobook", []model.RawFieldSet{
		pathSet(map[string]any{model.FieldTitle: "a"}),
		pathSet(map[string]any{model.FieldTitle: "b"}),
	})
	assert.Error(t, err)
}

func TestMergePassThrough(t *testing.T) {
	svc := newService(t)

	record, warnings, err := svc.Merge("audiobook", []model.RawFieldSet{
		pathSet(map[string]any{model.FieldTitle: "x", "custom_note": "only here"}),
		catalogSet(map[string]any{"another_extra": "kept"}),
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	// Unruled fields pass through when exactly one source supplies them.
	assert.Equal(t, "only here", record.Fields["custom_note"])
	assert.Equal(t, []string{model.SourcePathInfo}, record.Provenance["custom_note"])
	assert.Equal(t, "kept", record.Fields["another_extra"])
}

func TestMergePassThroughConflictDropsWithWarning(t *testing.T) {
	svc := newService(t)

	record, warnings, err := svc.Merge("audiobook", []model.RawFieldSet{
		pathSet(map[string]any{model.FieldTitle: "x", "custom_note": "one"}),
		catalogSet(map[string]any{"custom_note": "two"}),
	})
	require.NoError(t, err)

	assert.NotContains(t, record.Fields, "custom_note")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "custom_note")
}

func TestMergeDeterministic(t *testing.T) {
	svc := newService(t)

	sets := func() []model.RawFieldSet {
		return []model.RawFieldSet{
			pathSet(map[string]any{model.FieldTitle: "T", model.FieldASIN: "B000000001"}),
			embeddedSet(map[string]any{model.FieldDurationSec: 3600.0, model.FieldNarrators: []string{"A"}}),
			catalogSet(map[string]any{model.FieldNarrators: []string{"a", "B"}, model.FieldGenres: []string{"Fantasy"}}),
		}
	}

	first, firstWarnings, err := svc.Merge("audiobook", sets())
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, againWarnings, err := svc.Merge("audiobook", sets())
		require.NoError(t, err)
		assert.Equal(t, first.Fields, again.Fields)
		assert.Equal(t, first.Provenance, again.Provenance)
		assert.Equal(t, firstWarnings, againWarnings)
	}
}

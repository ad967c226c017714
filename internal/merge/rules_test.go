package merge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillaudio/quill/internal/model"
)

func TestDefaultRuleSet(t *testing.T) {
	rs, err := DefaultRuleSet(knownSources)
	require.NoError(t, err)
	assert.Equal(t, DefaultRulesVersion, rs.Version)

	// Duration prefers the container over the catalog approximation.
	duration := rs.ByField(model.FieldDurationSec)
	require.NotNil(t, duration)
	assert.Equal(t, model.SourceEmbedded, duration.Sources[0])

	// The identifier never comes from embedded tags.
	asin := rs.ByField(model.FieldASIN)
	require.NotNil(t, asin)
	assert.NotContains(t, asin.Sources, model.SourceEmbedded)
}

func TestLoadRuleSet(t *testing.T) {
	content := `version: custom-1
rules:
  - field: title
    sources: [catalog, pathinfo]
    strategy: override
  - field: genres
    sources: [catalog]
    strategy: union
`
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rs, err := LoadRuleSet(path, knownSources)
	require.NoError(t, err)
	assert.Equal(t, "custom-1", rs.Version)
	require.NotNil(t, rs.ByField(model.FieldTitle))
	assert.Equal(t, model.SourceCatalog, rs.ByField(model.FieldTitle).Sources[0])
}

func TestLoadRuleSetRejectsUnknownSource(t *testing.T) {
	content := `version: bad
rules:
  - field: title
    sources: [scraper]
    strategy: override
`
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadRuleSet(path, knownSources)
	assert.Error(t, err)
}

func TestLoadRuleSetMissingFile(t *testing.T) {
	_, err := LoadRuleSet(filepath.Join(t.TempDir(), "absent.yaml"), knownSources)
	assert.Error(t, err)
}

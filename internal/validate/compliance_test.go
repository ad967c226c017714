package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quillaudio/quill/internal/model"
)

func TestComplianceWarningsOnly(t *testing.T) {
	tp := TargetPolicy{
		Name:            "strict-tracker",
		MaxSummaryChars: 20,
		RequireCover:    true,
		RequireChapters: true,
		RequireSeries:   true,
	}

	r := model.NewMergedRecord("audiobook")
	r.SetField(model.FieldSummary, strings.Repeat("x", 50), model.SourceCatalog)
	r.SetField(model.FieldHasCover, false, model.SourceEmbedded)

	errs, warns := Compliance(tp)(r)
	assert.Empty(t, errs)
	assert.Len(t, warns, 4)

	// A compliant record produces no findings.
	result := New(DefaultPolicy(), Compliance(tp)).Validate(completeRecord())
	assert.True(t, result.Valid)
	for _, w := range result.Warnings {
		assert.NotContains(t, w, "strict-tracker")
	}
}

func TestComplianceDisabledChecks(t *testing.T) {
	r := model.NewMergedRecord("audiobook")
	errs, warns := Compliance(TargetPolicy{Name: "lenient"})(r)
	assert.Empty(t, errs)
	assert.Empty(t, warns)
}

package validate

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/quillaudio/quill/internal/model"
)

// DefaultPolicy returns the built-in audiobook policy. The scored list
// covers every required and recommended field so a record carrying all
// of them scores exactly 1.0; required fields weigh double.
func DefaultPolicy() model.ValidationPolicy {
	required := []string{
		model.FieldTitle,
		model.FieldAuthors,
		model.FieldASIN,
		model.FieldDurationSec,
	}
	recommended := []string{
		model.FieldNarrators,
		model.FieldGenres,
		model.FieldSummary,
		model.FieldYear,
		model.FieldSeriesName,
		model.FieldChapters,
		model.FieldHasCover,
		model.FieldBitrate,
	}

	scored := make([]model.ScoredField, 0, len(required)+len(recommended))
	for _, f := range required {
		scored = append(scored, model.ScoredField{Field: f, Weight: 2.0})
	}
	for _, f := range recommended {
		scored = append(scored, model.ScoredField{Field: f, Weight: 1.0})
	}

	return model.ValidationPolicy{
		Name:        "audiobook-default",
		Required:    required,
		Recommended: recommended,
		Scored:      scored,
	}
}

// LoadPolicy reads a policy from a YAML file. A file without a scored
// list scores over required plus recommended, uniformly weighted.
func LoadPolicy(path string) (model.ValidationPolicy, error) {
	var policy model.ValidationPolicy
	data, err := os.ReadFile(path)
	if err != nil {
		return policy, eris.Wrapf(err, "policy: read %s", path)
	}
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return policy, eris.Wrapf(err, "policy: parse %s", path)
	}
	if len(policy.Required) == 0 {
		return policy, eris.Errorf("policy: %s lists no required fields", path)
	}
	if len(policy.Scored) == 0 {
		for _, f := range policy.Required {
			policy.Scored = append(policy.Scored, model.ScoredField{Field: f})
		}
		for _, f := range policy.Recommended {
			policy.Scored = append(policy.Scored, model.ScoredField{Field: f})
		}
	}
	return policy, nil
}

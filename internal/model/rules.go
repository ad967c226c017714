package model

import (
	"github.com/rotisserie/eris"
)

// Strategy selects how a field's values are combined across sources.
type Strategy string

const (
	// StrategyOverride takes the first meaningful value in source order.
	StrategyOverride Strategy = "override"
	// StrategyUnion concatenates meaningful list values from all sources
	// and deduplicates case-insensitively, preserving first-seen order.
	StrategyUnion Strategy = "union"
)

// PrecedenceRule governs one output field: the source order to consult
// (highest priority first) and the merge strategy.
type PrecedenceRule struct {
	Field    string   `yaml:"field" json:"field"`
	Sources  []string `yaml:"sources" json:"sources"`
	Strategy Strategy `yaml:"strategy" json:"strategy"`
}

// RuleSet is a validated, versioned precedence table. The table is data,
// not code: it can be swapped per content type or per deployment without
// touching the merge algorithm.
type RuleSet struct {
	Version string           `yaml:"version" json:"version"`
	Rules   []PrecedenceRule `yaml:"rules" json:"rules"`

	byField map[string]*PrecedenceRule
}

// NewRuleSet indexes and validates a precedence table. Unknown source
// identifiers, unknown strategies, duplicate fields, and empty source
// lists are startup errors, not merge-time surprises.
func NewRuleSet(version string, rules []PrecedenceRule, knownSources []string) (*RuleSet, error) {
	known := make(map[string]bool, len(knownSources))
	for _, s := range knownSources {
		known[s] = true
	}

	rs := &RuleSet{
		Version: version,
		Rules:   rules,
		byField: make(map[string]*PrecedenceRule, len(rules)),
	}
	for i := range rs.Rules {
		rule := &rs.Rules[i]
		if rule.Field == "" {
			return nil, eris.Errorf("rules: rule %d has no field name", i)
		}
		if _, dup := rs.byField[rule.Field]; dup {
			return nil, eris.Errorf("rules: duplicate rule for field %q", rule.Field)
		}
		if len(rule.Sources) == 0 {
			return nil, eris.Errorf("rules: field %q lists no sources", rule.Field)
		}
		for _, src := range rule.Sources {
			if !known[src] {
				return nil, eris.Errorf("rules: field %q references unknown source %q", rule.Field, src)
			}
		}
		switch rule.Strategy {
		case StrategyOverride, StrategyUnion:
		default:
			return nil, eris.Errorf("rules: field %q has unknown strategy %q", rule.Field, rule.Strategy)
		}
		rs.byField[rule.Field] = rule
	}
	return rs, nil
}

// ByField returns the rule for the given field, or nil when unconfigured.
func (rs *RuleSet) ByField(field string) *PrecedenceRule {
	return rs.byField[field]
}

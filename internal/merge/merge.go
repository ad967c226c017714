// Package merge combines per-source raw field sets into one canonical
// record using a declarative precedence table. The table is data: per
// field, an ordered source list and a strategy (override or union). The
// algorithm itself knows nothing about specific fields.
package merge

import (
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/quillaudio/quill/internal/model"
)

// ErrUntaggedFieldSet rejects a RawFieldSet missing its mandatory source
// marker. Merging an unattributed set would corrupt provenance.
var ErrUntaggedFieldSet = eris.New("merge: field set carries no source marker")

// Service merges raw field sets under a fixed rule set. Merging is a
// pure function of its inputs; a Service holds no mutable state and is
// safe for concurrent use.
type Service struct {
	rules  *model.RuleSet
	folder cases.Caser
}

// New creates a merge service for the given validated rule set.
func New(rules *model.RuleSet) *Service {
	return &Service{rules: rules, folder: cases.Fold()}
}

// Rules exposes the active precedence table for diagnostics.
func (s *Service) Rules() *model.RuleSet {
	return s.rules
}

// Merge resolves every configured output field across the given field
// sets. Fields without a rule pass through only when exactly one source
// supplies them; conflicts are dropped with a warning, never an error.
// Warnings are returned for the caller to surface.
func (s *Service) Merge(contentType string, sets []model.RawFieldSet) (*model.MergedRecord, []string, error) {
	bySource := make(map[string]model.RawFieldSet, len(sets))
	for _, fs := range sets {
		src := fs.Source()
		if src == "" {
			return nil, nil, ErrUntaggedFieldSet
		}
		if _, dup := bySource[src]; dup {
			return nil, nil, eris.Errorf("merge: duplicate field set for source %q", src)
		}
		bySource[src] = fs
	}

	record := model.NewMergedRecord(contentType)
	var warnings []string

	ruled := make(map[string]bool)
	for _, rule := range s.rules.Rules {
		ruled[rule.Field] = true
		switch rule.Strategy {
		case model.StrategyOverride:
			s.applyOverride(record, rule, bySource)
		case model.StrategyUnion:
			s.applyUnion(record, rule, bySource)
		}
	}

	warnings = append(warnings, s.passThrough(record, bySource, ruled)...)
	return record, warnings, nil
}

// applyOverride takes the first meaningful value in rule source order.
func (s *Service) applyOverride(record *model.MergedRecord, rule model.PrecedenceRule, bySource map[string]model.RawFieldSet) {
	for _, src := range rule.Sources {
		fs, ok := bySource[src]
		if !ok {
			continue
		}
		value, present := fs[rule.Field]
		if !present || !model.Meaningful(rule.Field, value) {
			continue
		}
		record.SetField(rule.Field, value, src)
		return
	}
}

// applyUnion flattens list values from all sources in rule order and
// deduplicates case-insensitively, preserving first-seen order so a
// higher-priority source's ordering wins ties. Provenance is the set of
// sources that contributed at least one surviving value.
func (s *Service) applyUnion(record *model.MergedRecord, rule model.PrecedenceRule, bySource map[string]model.RawFieldSet) {
	var merged []string
	var contributors []string
	seen := make(map[string]bool)

	for _, src := range rule.Sources {
		fs, ok := bySource[src]
		if !ok {
			continue
		}
		values, ok := stringList(fs[rule.Field])
		if !ok || len(values) == 0 {
			continue
		}
		contributed := false
		for _, v := range values {
			key := s.folder.String(v)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, v)
			contributed = true
		}
		if contributed {
			contributors = append(contributors, src)
		}
	}

	if len(merged) > 0 {
		record.SetField(rule.Field, merged, contributors...)
	}
}

// passThrough handles fields no rule covers: kept only when exactly one
// source supplies them unambiguously, dropped with a warning otherwise.
func (s *Service) passThrough(record *model.MergedRecord, bySource map[string]model.RawFieldSet, ruled map[string]bool) []string {
	suppliers := make(map[string][]string)
	for src, fs := range bySource {
		for _, field := range fs.FieldNames() {
			if ruled[field] || !fs.HasField(field) {
				continue
			}
			suppliers[field] = append(suppliers[field], src)
		}
	}

	fields := make([]string, 0, len(suppliers))
	for field := range suppliers {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var warnings []string
	for _, field := range fields {
		srcs := suppliers[field]
		if len(srcs) > 1 {
			sort.Strings(srcs)
			warning := fmt.Sprintf("merge: field %q supplied by multiple sources (%v) with no precedence rule; dropped", field, srcs)
			warnings = append(warnings, warning)
			zap.L().Warn("merge: ambiguous unruled field",
				zap.String("field", field),
				zap.Strings("sources", srcs),
			)
			continue
		}
		record.SetField(field, bySource[srcs[0]][field], srcs[0])
	}
	return warnings
}

// stringList coerces the weakly typed list shapes sources produce.
func stringList(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case string:
		if v == "" {
			return nil, false
		}
		return []string{v}, true
	default:
		return nil, false
	}
}

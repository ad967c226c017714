// Package validate computes the structural verdict, warnings, and
// completeness score for a merged record against a required-field
// policy. Target-specific compliance checks plug in without touching
// the core algorithm.
package validate

import (
	"fmt"
	"regexp"
	"time"

	"github.com/quillaudio/quill/internal/model"
)

// Check is an extension point: extra validations that consume the same
// record and contribute errors and warnings.
type Check func(record *model.MergedRecord) (errors []string, warnings []string)

// Validator applies a policy plus optional extension checks.
type Validator struct {
	policy model.ValidationPolicy
	checks []Check
}

// New creates a validator for the given policy.
func New(policy model.ValidationPolicy, checks ...Check) *Validator {
	return &Validator{policy: policy, checks: checks}
}

// Policy returns the active policy.
func (v *Validator) Policy() model.ValidationPolicy {
	return v.policy
}

var asinPattern = regexp.MustCompile(`^[A-Z0-9]{10}$`)

// Validate computes the verdict. Only structural violations (missing
// required fields, broken semantic invariants) make the record invalid;
// everything softer lands in warnings. The result is returned, never
// raised.
func (v *Validator) Validate(record *model.MergedRecord) model.ValidationResult {
	result := model.ValidationResult{Valid: true}

	for _, field := range v.policy.Required {
		if !record.Has(field) {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("required field %q is missing", field))
		}
	}
	for _, field := range v.policy.Recommended {
		if !record.Has(field) {
			result.Warnings = append(result.Warnings, fmt.Sprintf("recommended field %q is missing", field))
		}
	}

	semErrors, semWarnings := v.semanticChecks(record)
	if len(semErrors) > 0 {
		result.Valid = false
	}
	result.Errors = append(result.Errors, semErrors...)
	result.Warnings = append(result.Warnings, semWarnings...)

	for _, check := range v.checks {
		errs, warns := check(record)
		if len(errs) > 0 {
			result.Valid = false
		}
		result.Errors = append(result.Errors, errs...)
		result.Warnings = append(result.Warnings, warns...)
	}

	result.Completeness = v.completeness(record)
	return result
}

// semanticChecks verifies well-formedness of populated fields. Absent
// fields are the policy lists' concern, not semantic errors.
func (v *Validator) semanticChecks(record *model.MergedRecord) (errs, warns []string) {
	if record.Has(model.FieldASIN) {
		if asin := record.String(model.FieldASIN); !asinPattern.MatchString(asin) {
			errs = append(errs, fmt.Sprintf("asin %q is not a well-formed identifier", asin))
		}
	}

	if record.Has(model.FieldYear) {
		year := record.Int(model.FieldYear)
		if year < 1900 || year > time.Now().Year()+1 {
			warns = append(warns, fmt.Sprintf("year %d outside plausible range", year))
		}
	}

	duration := record.Float(model.FieldDurationSec)
	if record.Has(model.FieldDurationSec) && duration <= 0 {
		errs = append(errs, "duration must be positive")
	}

	if chapters := record.Chapters(model.FieldChapters); len(chapters) > 0 {
		prev := -1.0
		for _, ch := range chapters {
			if ch.StartSec < 0 {
				errs = append(errs, fmt.Sprintf("chapter %d has negative start offset", ch.Index))
				break
			}
			if ch.StartSec <= prev {
				errs = append(errs, fmt.Sprintf("chapter offsets not monotonically increasing at chapter %d", ch.Index))
				break
			}
			prev = ch.StartSec
		}
		if duration > 0 {
			last := chapters[len(chapters)-1]
			if last.StartSec > duration {
				errs = append(errs, fmt.Sprintf("chapter %d starts at %.0fs, beyond total duration %.0fs", last.Index, last.StartSec, duration))
			}
		}
	}

	return errs, warns
}

// completeness is the weighted fraction of the policy's scored field
// list that is populated. Weights default to 1.0.
func (v *Validator) completeness(record *model.MergedRecord) float64 {
	scored := v.policy.Scored
	if len(scored) == 0 {
		return 0
	}

	var total, populated float64
	for _, sf := range scored {
		weight := sf.Weight
		if weight <= 0 {
			weight = 1.0
		}
		total += weight
		if record.Has(sf.Field) {
			populated += weight
		}
	}
	if total == 0 {
		return 0
	}
	return populated / total
}

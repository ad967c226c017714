package model

// ScoredField names a field contributing to the completeness score, with
// an optional weight (defaulted to 1.0 by the validator).
type ScoredField struct {
	Field  string  `yaml:"field" json:"field"`
	Weight float64 `yaml:"weight,omitempty" json:"weight,omitempty"`
}

// ValidationPolicy lists the fields a record must or should carry.
// Missing required fields make the record structurally invalid; missing
// recommended fields only add warnings. The scored list drives the
// completeness fraction.
type ValidationPolicy struct {
	Name        string        `yaml:"name" json:"name"`
	Required    []string      `yaml:"required" json:"required"`
	Recommended []string      `yaml:"recommended" json:"recommended"`
	Scored      []ScoredField `yaml:"scored" json:"scored"`
}

// ValidationResult is the structured verdict for a merged record.
// Structural violations set Valid=false; soft findings accumulate as
// warnings. Completeness is the weighted populated fraction of the
// policy's scored field list, in [0,1].
type ValidationResult struct {
	Valid        bool     `json:"valid"`
	Errors       []string `json:"errors,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
	Completeness float64  `json:"completeness"`
}

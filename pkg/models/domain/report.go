package domain

import (
	"errors"
	"fmt"
)

// Outcome tells how a check reached its report. It is kept in memory only.
type Outcome string

const (
	OutcomeEvaluated Outcome = "evaluated"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeDenied    Outcome = "denied"
)

// Summary holds aggregate counts of a report.
type Summary map[string]any

// Report is the complete, standardized output of one check.
type Report struct {
	Control     string    `json:"control"`
	Description string    `json:"description"`
	Results     []Finding `json:"results"`
	Summary     Summary   `json:"summary"`
	Passed      bool      `json:"passed"`
	Note        string    `json:"note,omitempty"`

	Outcome Outcome `json:"-"`
	// ExistenceRequired marks controls whose absent findings are violations.
	ExistenceRequired bool `json:"-"`
}

var (
	ErrPassedMismatch  = errors.New("passed does not match findings")
	ErrAbsentViolation = errors.New("absent resource reported as violation")
	ErrMissingControl  = errors.New("report has no control")
)

// Validate checks the report invariants once at the check boundary.
func (r Report) Validate() error {
	if r.Control == "" {
		return ErrMissingControl
	}
	if len(r.Results) > 0 && r.Passed != AllCompliant(r.Results) {
		return fmt.Errorf("%w: passed=%t", ErrPassedMismatch, r.Passed)
	}
	for i, f := range r.Results {
		if !f.ResourceExists && !f.Compliant && !r.ExistenceRequired {
			return fmt.Errorf("%w: finding %d", ErrAbsentViolation, i)
		}
	}
	return nil
}

// NonCompliant counts findings that failed.
func (r Report) NonCompliant() int {
	return CountNonCompliant(r.Results)
}

// AllCompliant reports whether every finding is compliant.
func AllCompliant(findings []Finding) bool {
	for _, f := range findings {
		if !f.Compliant {
			return false
		}
	}
	return true
}

func CountNonCompliant(findings []Finding) int {
	n := 0
	for _, f := range findings {
		if !f.Compliant {
			n++
		}
	}
	return n
}

package check

import (
	"context"
	"fmt"

	"github.com/de-tools/evidence-atlas/pkg/models/domain"
	"github.com/de-tools/evidence-atlas/pkg/services/accessor"
)

// ExistencePolicy decides the verdict when there is nothing to evaluate.
type ExistencePolicy int

const (
	// ExistenceOptional: absence of resources is a vacuous pass.
	ExistenceOptional ExistencePolicy = iota
	// ExistenceRequired: the control demands at least one resource.
	ExistenceRequired
)

// Collector gathers findings for one resource family of a check.
// Returned errors must be classified with the accessor package.
type Collector interface {
	Collect(ctx context.Context) ([]domain.Finding, error)
}

// CollectorFunc adapts a function to Collector.
type CollectorFunc func(ctx context.Context) ([]domain.Finding, error)

func (f CollectorFunc) Collect(ctx context.Context) ([]domain.Finding, error) {
	return f(ctx)
}

type labeled interface {
	Label() string
}

type existenceAware interface {
	requiresExistence() bool
}

// Meta describes the control a check verifies and how its report is shaped.
type Meta struct {
	Name        string
	Control     string
	Description string
	// TotalKey names the total counter in the summary (e.g. "totalUsers").
	// When empty the summary reports {compliant, nonCompliant}.
	TotalKey        string
	Existence       ExistencePolicy
	AbsentNote      string
	UnavailableNote string
	// Summarize adds control-specific entries to the summary.
	Summarize func(findings []domain.Finding, summary domain.Summary)
}

// Check composes collectors for one control into a single report.
type Check struct {
	meta       Meta
	collectors []Collector
}

func New(meta Meta, collectors ...Collector) *Check {
	return &Check{meta: meta, collectors: collectors}
}

func (c *Check) Name() string {
	return c.meta.Name
}

func (c *Check) Meta() Meta {
	return c.meta
}

// Run fetches, evaluates and assembles the report. Only failures of unknown
// class are returned as errors; known classes are folded into the report.
func (c *Check) Run(ctx context.Context) (domain.Report, error) {
	results := make([]domain.Finding, 0)

	for _, collector := range c.collectors {
		findings, err := collector.Collect(ctx)
		if err == nil {
			results = append(results, findings...)
			continue
		}

		kind := accessor.KindOf(err)
		if kind == accessor.FailureUnknown {
			return domain.Report{}, fmt.Errorf("check %s failed: %w", c.meta.Name, err)
		}
		if len(c.collectors) == 1 {
			return c.failureReport(kind, err), nil
		}
		results = append(results, familyFailure(collector, kind, err))
	}

	return c.assemble(results, domain.OutcomeEvaluated), nil
}

func (c *Check) failureReport(kind accessor.FailureKind, err error) domain.Report {
	switch kind {
	case accessor.FailureUnavailable:
		note := c.meta.UnavailableNote
		if note == "" {
			note = fmt.Sprintf("Check skipped: %v", err)
		}
		report := c.assemble(make([]domain.Finding, 0), domain.OutcomeSkipped)
		report.Passed = false
		report.Note = note
		return report
	case accessor.FailureAccessDenied:
		finding := domain.CheckLevelFinding(false, domain.Evidence{
			"error":   "access denied",
			"failure": kind.String(),
			"message": err.Error(),
		})
		return c.assemble([]domain.Finding{finding}, domain.OutcomeDenied)
	default:
		finding := domain.AbsentFinding(c.meta.Existence == ExistenceOptional, domain.Evidence{
			"message": err.Error(),
		})
		return c.assemble([]domain.Finding{finding}, domain.OutcomeEvaluated)
	}
}

func familyFailure(collector Collector, kind accessor.FailureKind, err error) domain.Finding {
	evidence := domain.Evidence{
		"error":   err.Error(),
		"failure": kind.String(),
	}
	if l, ok := collector.(labeled); ok && l.Label() != "" {
		evidence["resourceType"] = l.Label()
	}
	if kind == accessor.FailureNotFound {
		return domain.AbsentFinding(true, evidence)
	}
	return domain.CheckLevelFinding(false, evidence)
}

// ExistenceRequired reports whether an absent resource fails this check.
func (c *Check) ExistenceRequired() bool {
	if c.meta.Existence == ExistenceRequired {
		return true
	}
	for _, collector := range c.collectors {
		if e, ok := collector.(existenceAware); ok && e.requiresExistence() {
			return true
		}
	}
	return false
}

func (c *Check) assemble(results []domain.Finding, outcome domain.Outcome) domain.Report {
	nonCompliant := domain.CountNonCompliant(results)

	summary := domain.Summary{}
	if c.meta.TotalKey != "" {
		summary[c.meta.TotalKey] = len(results)
	} else {
		summary["compliant"] = len(results) - nonCompliant
	}
	summary["nonCompliant"] = nonCompliant
	if c.meta.Summarize != nil {
		c.meta.Summarize(results, summary)
	}

	report := domain.Report{
		Control:           c.meta.Control,
		Description:       c.meta.Description,
		Results:           results,
		Summary:           summary,
		Outcome:           outcome,
		ExistenceRequired: c.ExistenceRequired(),
	}

	if len(results) == 0 {
		report.Passed = c.meta.Existence == ExistenceOptional
		report.Note = c.meta.AbsentNote
		return report
	}

	report.Passed = domain.AllCompliant(results)
	if allAbsent(results) {
		report.Note = c.meta.AbsentNote
	}
	return report
}

func allAbsent(findings []domain.Finding) bool {
	for _, f := range findings {
		if f.ResourceExists {
			return false
		}
	}
	return len(findings) > 0
}

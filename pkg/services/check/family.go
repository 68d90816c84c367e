package check

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/de-tools/evidence-atlas/pkg/models/domain"
	"github.com/de-tools/evidence-atlas/pkg/services/accessor"
)

// Evaluator maps one resource and its optional detail to a verdict.
// It must be total: partial data yields a verdict, never a panic.
type Evaluator[R, D any] func(resource R, detail D) (bool, domain.Evidence)

// Family is the per-resource harness: list, optionally describe each resource,
// evaluate, and keep the listing order.
type Family[R, D any] struct {
	// Kind labels findings of multi-family checks (e.g. "ec2"). Leave empty for single-family checks.
	Kind      string
	Existence ExistencePolicy
	// AbsentEvidence is attached to the finding emitted when nothing exists.
	AbsentEvidence domain.Evidence

	List   func(ctx context.Context) ([]R, error)
	ID     func(resource R) string
	Detail func(ctx context.Context, resource R) (D, error)
	// Concurrency > 1 fetches details as an unordered batch of at most that many calls.
	Concurrency int
	Evaluate    Evaluator[R, D]
}

func (f Family[R, D]) Label() string {
	return f.Kind
}

func (f Family[R, D]) requiresExistence() bool {
	return f.Existence == ExistenceRequired
}

func (f Family[R, D]) Collect(ctx context.Context) ([]domain.Finding, error) {
	resources, err := f.List(ctx)
	if err != nil {
		if accessor.IsNotFound(err) {
			return []domain.Finding{f.absent()}, nil
		}
		return nil, err
	}
	if len(resources) == 0 {
		return []domain.Finding{f.absent()}, nil
	}

	details, errs := f.fetchDetails(ctx, resources)

	findings := make([]domain.Finding, 0, len(resources))
	for i, resource := range resources {
		id := f.ID(resource)
		if errs[i] != nil {
			zerolog.Ctx(ctx).Debug().
				Err(errs[i]).
				Str("resource", id).
				Msg("failed to fetch resource detail")
			findings = append(findings, domain.NewFinding(id, false, f.tag(domain.Evidence{
				"error":   errs[i].Error(),
				"failure": accessor.KindOf(errs[i]).String(),
			})))
			continue
		}

		compliant, evidence := f.Evaluate(resource, details[i])
		findings = append(findings, domain.NewFinding(id, compliant, f.tag(evidence)))
	}
	return findings, nil
}

// fetchDetails returns details and errors indexed like resources, whatever the completion order.
func (f Family[R, D]) fetchDetails(ctx context.Context, resources []R) ([]D, []error) {
	details := make([]D, len(resources))
	errs := make([]error, len(resources))
	if f.Detail == nil {
		return details, errs
	}

	if f.Concurrency <= 1 {
		for i, resource := range resources {
			details[i], errs[i] = f.Detail(ctx, resource)
		}
		return details, errs
	}

	var g errgroup.Group
	g.SetLimit(f.Concurrency)
	for i, resource := range resources {
		g.Go(func() error {
			details[i], errs[i] = f.Detail(ctx, resource)
			return nil
		})
	}
	_ = g.Wait()

	return details, errs
}

func (f Family[R, D]) absent() domain.Finding {
	evidence := domain.Evidence{}
	for k, v := range f.AbsentEvidence {
		evidence[k] = v
	}
	return domain.AbsentFinding(f.Existence == ExistenceOptional, f.tag(evidence))
}

func (f Family[R, D]) tag(evidence domain.Evidence) domain.Evidence {
	if evidence == nil {
		evidence = domain.Evidence{}
	}
	if f.Kind != "" {
		if _, ok := evidence["resourceType"]; !ok {
			evidence["resourceType"] = f.Kind
		}
	}
	return evidence
}

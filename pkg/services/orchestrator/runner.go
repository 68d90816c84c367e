package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/de-tools/evidence-atlas/pkg/models/domain"
)

// Check is one control evaluation producing a single report.
type Check interface {
	Name() string
	Run(ctx context.Context) (domain.Report, error)
}

// Sink durably stores the evidence bundle of one group.
type Sink interface {
	Persist(ctx context.Context, group string, bundle *domain.EvidenceBundle) error
}

type State string

const (
	StatePending    State = "PENDING"
	StateFetching   State = "FETCHING"
	StateEvaluating State = "EVALUATING"
	StateSkipped    State = "SKIPPED"
	StateDenied     State = "DENIED"
	StateReported   State = "REPORTED"
	StateFailed     State = "FAILED"
)

// Group is an ordered list of checks whose reports form one bundle.
type Group struct {
	Name   string
	Checks []Check
}

// CheckStatus tracks one check through a group run.
type CheckStatus struct {
	Name    string
	State   State
	Outcome State // EVALUATING, SKIPPED or DENIED once the check has reported
	Err     error
}

// GroupResult is the outcome of one group run.
type GroupResult struct {
	Group  string
	Bundle *domain.EvidenceBundle
	Checks []CheckStatus
	Err    error
}

func (r GroupResult) Failed() bool {
	return r.Err != nil
}

type Runner struct {
	sinks []Sink
}

func NewRunner(sinks ...Sink) *Runner {
	return &Runner{sinks: sinks}
}

// Run executes every group independently. A failed group never prevents
// the other groups from running and persisting their evidence.
func (r *Runner) Run(ctx context.Context, groups ...Group) ([]GroupResult, error) {
	results := make([]GroupResult, 0, len(groups))
	var errs []error

	for _, g := range groups {
		res := r.RunGroup(ctx, g)
		if res.Failed() {
			zerolog.Ctx(ctx).Error().
				Err(res.Err).
				Str("group", g.Name).
				Msg("evidence group run failed")
			errs = append(errs, res.Err)
		}
		results = append(results, res)
	}

	return results, errors.Join(errs...)
}

// RunGroup runs the checks of one group in declared order and persists the bundle.
// A check failing with an unclassified error aborts the group: remaining checks
// are not started and nothing is persisted for it.
func (r *Runner) RunGroup(ctx context.Context, g Group) GroupResult {
	logger := zerolog.Ctx(ctx).With().Str("group", g.Name).Logger()

	result := GroupResult{
		Group:  g.Name,
		Bundle: domain.NewEvidenceBundle(),
		Checks: make([]CheckStatus, len(g.Checks)),
	}
	for i, c := range g.Checks {
		result.Checks[i] = CheckStatus{Name: c.Name(), State: StatePending}
	}

	for i, c := range g.Checks {
		status := &result.Checks[i]
		status.State = StateFetching
		logger.Debug().Str("check", c.Name()).Str("state", string(status.State)).Msg("check state")

		report, err := c.Run(ctx)
		if err == nil {
			err = report.Validate()
		}
		if err == nil {
			err = result.Bundle.Add(c.Name(), report)
		}
		if err != nil {
			status.State = StateFailed
			status.Err = err
			result.Err = fmt.Errorf("group %s: check %s: %w", g.Name, c.Name(), err)
			logger.Error().Err(err).Str("check", c.Name()).Msg("check failed")
			return result
		}

		status.Outcome = outcomeState(report.Outcome)
		status.State = StateReported
		logger.Info().
			Str("check", c.Name()).
			Str("control", report.Control).
			Str("outcome", string(status.Outcome)).
			Bool("passed", report.Passed).
			Int("findings", len(report.Results)).
			Msg("check reported")
	}

	if err := r.persist(ctx, g.Name, result.Bundle); err != nil {
		result.Err = fmt.Errorf("group %s: %w", g.Name, err)
	}
	return result
}

func (r *Runner) persist(ctx context.Context, group string, bundle *domain.EvidenceBundle) error {
	var errs []error
	for _, sink := range r.sinks {
		if err := sink.Persist(ctx, group, bundle); err != nil {
			errs = append(errs, fmt.Errorf("failed to persist evidence: %w", err))
		}
	}
	return errors.Join(errs...)
}

func outcomeState(outcome domain.Outcome) State {
	switch outcome {
	case domain.OutcomeSkipped:
		return StateSkipped
	case domain.OutcomeDenied:
		return StateDenied
	default:
		return StateEvaluating
	}
}

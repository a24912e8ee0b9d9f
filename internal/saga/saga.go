package saga

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrInconsistent means a step failed and at least one completed step could
// not be compensated, so the stores no longer agree with each other.
var ErrInconsistent = errors.New("storage left inconsistent")

// Step is one unit of work in a saga. Compensate must undo the effects of a
// successful Execute.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// FuncStep adapts a pair of closures to Step.
type FuncStep struct {
	StepName     string
	ExecuteFn    func(ctx context.Context) error
	CompensateFn func(ctx context.Context) error
}

func (s FuncStep) Name() string { return s.StepName }

func (s FuncStep) Execute(ctx context.Context) error { return s.ExecuteFn(ctx) }

func (s FuncStep) Compensate(ctx context.Context) error {
	if s.CompensateFn == nil {
		return nil
	}
	return s.CompensateFn(ctx)
}

// Orchestrator runs a fixed list of steps in order.
type Orchestrator struct {
	steps  []Step
	logger *zap.Logger
}

func NewOrchestrator(logger *zap.Logger, steps ...Step) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{steps: steps, logger: logger}
}

// Start runs the steps sequentially. When a step fails every previously
// successful step is compensated in reverse order and the step's error is
// returned. If any compensation fails the returned error also matches
// ErrInconsistent.
func (o *Orchestrator) Start(ctx context.Context) error {
	completed := make([]Step, 0, len(o.steps))

	for _, step := range o.steps {
		o.logger.Debug("Executing saga step", zap.String("step", step.Name()))
		if err := step.Execute(ctx); err != nil {
			o.logger.Warn("Saga step failed, rolling back",
				zap.String("step", step.Name()),
				zap.Error(err),
			)
			if rollbackErr := o.rollback(ctx, completed); rollbackErr != nil {
				return fmt.Errorf("%w: %w (rollback: %w)", ErrInconsistent, err, rollbackErr)
			}
			return err
		}
		completed = append(completed, step)
	}

	return nil
}

// rollback runs detached from ctx's cancellation so a cancelled request still
// gets its completed steps undone.
func (o *Orchestrator) rollback(ctx context.Context, steps []Step) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		o.logger.Info("Compensating saga step", zap.String("step", step.Name()))
		if err := step.Compensate(ctx); err != nil {
			o.logger.Error("Failed to compensate saga step",
				zap.String("step", step.Name()),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("compensate %s: %w", step.Name(), err))
		}
	}
	return errors.Join(errs...)
}

package account

import (
	"context"

	"go.uber.org/zap"
)

// saga records one undo action per completed step of a multi-step operation.
// On failure the undo actions run in reverse order; each is best-effort and a
// failed compensation is logged, never returned.
type saga struct {
	logger *zap.Logger
	steps  []sagaStep
}

type sagaStep struct {
	name string
	undo func(ctx context.Context) error
}

func newSaga(logger *zap.Logger) *saga {
	return &saga{logger: logger}
}

func (s *saga) record(name string, undo func(ctx context.Context) error) {
	s.steps = append(s.steps, sagaStep{name: name, undo: undo})
}

func (s *saga) compensate(ctx context.Context) {
	for i := len(s.steps) - 1; i >= 0; i-- {
		step := s.steps[i]
		if err := step.undo(ctx); err != nil {
			s.logger.Error("saga compensation failed",
				zap.String("step", step.name),
				zap.Error(err),
			)
			continue
		}
		s.logger.Info("saga step compensated", zap.String("step", step.name))
	}
	s.steps = nil
}

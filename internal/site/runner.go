package site

import (
	"context"
	"log/slog"
	"time"

	"github.com/TotalLag/developer-docs/internal/logfields"
)

// runStages executes stages in order, recording timing and stopping on the first
// fatal or canceled stage.
func runStages(ctx context.Context, bs *buildState, stages []StageDef) error {
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			se := NewCanceledStageError(st.Name, err)
			bs.report.recordStage(st.Name, 0, se, bs.g.recorder)
			return se
		}

		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)
		se := classifyStageError(st.Name, err)
		bs.report.recordStage(st.Name, dur, se, bs.g.recorder)

		attrs := []any{logfields.Stage(string(st.Name)), logfields.Duration(dur)}
		switch {
		case se == nil:
			bs.logger.Debug("Stage complete", attrs...)
		case se.Kind == StageErrorWarning:
			bs.logger.Warn("Stage completed with warnings", append(attrs, logfields.Error(se.Err))...)
		default:
			bs.logger.Error("Stage failed", append(attrs, logfields.Error(se.Err), slog.Bool("transient", se.Transient()))...)
			return se
		}
	}
	return nil
}

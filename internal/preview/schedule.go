package preview

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-co-op/gocron/v2"
)

type schedule struct {
	s gocron.Scheduler
}

// startSchedule triggers a rebuild on a cron expression, refreshing remote
// inputs such as feature images. An empty expression schedules nothing.
func startSchedule(expr string, trigger func(), logger *slog.Logger) (*schedule, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return &schedule{}, nil
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.CronJob(expr, false),
		gocron.NewTask(func() {
			logger.Info("Scheduled rebuild", slog.String("schedule", expr))
			trigger()
		}),
		gocron.WithName("scheduled-rebuild"),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("invalid rebuild schedule %q: %w", expr, err)
	}
	s.Start()
	return &schedule{s: s}, nil
}

func (s *schedule) stop() {
	if s == nil || s.s == nil {
		return
	}
	_ = s.s.Shutdown()
}

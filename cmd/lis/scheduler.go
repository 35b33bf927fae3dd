package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-lis/internal/logging"
	"github.com/goliatone/go-lis/pkg/interfaces"
)

var cronDescriptors = map[string]time.Duration{
	"@hourly": time.Hour,
	"@daily":  24 * time.Hour,
	"@weekly": 7 * 24 * time.Hour,
}

// parseInterval understands "@every <duration>" and the fixed descriptors.
// Calendar cron fields are not supported.
func parseInterval(expression string) (time.Duration, error) {
	expression = strings.TrimSpace(expression)
	if interval, ok := cronDescriptors[expression]; ok {
		return interval, nil
	}
	raw, ok := strings.CutPrefix(expression, "@every ")
	if !ok {
		return 0, fmt.Errorf("cron: unsupported expression %q", expression)
	}
	interval, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("cron: %q: %w", expression, err)
	}
	if interval <= 0 {
		return 0, fmt.Errorf("cron: interval must be positive: %q", expression)
	}
	return interval, nil
}

type scheduledJob struct {
	expression string
	interval   time.Duration
	run        func() error
}

// tickerScheduler runs cron handlers on fixed intervals.
type tickerScheduler struct {
	mu     sync.Mutex
	jobs   []scheduledJob
	logger interfaces.Logger
}

func newTickerScheduler(logger interfaces.Logger) *tickerScheduler {
	return &tickerScheduler{logger: logging.Ensure(logger)}
}

// Register satisfies commands.CronRegistrar.
func (s *tickerScheduler) Register(cfg command.HandlerConfig, handler any) error {
	fn, ok := handler.(func() error)
	if !ok {
		return fmt.Errorf("cron: handler %T is not a func() error", handler)
	}
	interval, err := parseInterval(cfg.Expression)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.jobs = append(s.jobs, scheduledJob{expression: cfg.Expression, interval: interval, run: fn})
	s.mu.Unlock()
	s.logger.Info("cron.registered", "expression", cfg.Expression)
	return nil
}

// Run blocks until ctx is done. A failing run is logged and retried on the
// next tick.
func (s *tickerScheduler) Run(ctx context.Context) {
	s.mu.Lock()
	jobs := append([]scheduledJob(nil), s.jobs...)
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		go func(job scheduledJob) {
			defer wg.Done()
			ticker := time.NewTicker(job.interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := job.run(); err != nil {
						s.logger.Error("cron.run.failed", "expression", job.expression, "error", err)
					}
				}
			}
		}(job)
	}
	wg.Wait()
}

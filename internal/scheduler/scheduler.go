package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job — одна запланированная прогонка (обычно demo.Coordinator.Run).
type Job func(ctx context.Context) error

// Scheduler повторяет Job по cron-расписанию.
type Scheduler struct {
	expr     string
	schedule cron.Schedule
	loc      *time.Location
	job      Job
	logger   *slog.Logger
	now      func() time.Time

	runs     int
	failures int
}

// Config — конфигурация Scheduler.
type Config struct {
	// CronExpr — 5-field cron-выражение, например "*/5 * * * *".
	CronExpr string

	// Timezone — IANA имя timezone для CronExpr (default: UTC).
	Timezone string

	Job    Job
	Logger *slog.Logger

	// Clock — источник времени. Default: time.Now
	Clock func() time.Time
}

// New создаёт Scheduler. Невалидное cron-выражение — ошибка.
func New(cfg Config) (*Scheduler, error) {
	schedule, err := cronParser.Parse(cfg.CronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", cfg.CronExpr, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	loc := LoadLocation(cfg.Timezone)
	if cfg.Timezone != "" && loc == time.UTC && cfg.Timezone != "UTC" {
		logger.Warn("unknown timezone, falling back to UTC", "timezone", cfg.Timezone)
	}

	return &Scheduler{
		expr:     cfg.CronExpr,
		schedule: schedule,
		loc:      loc,
		job:      cfg.Job,
		logger:   logger,
		now:      now,
	}, nil
}

// Next возвращает следующее время запуска после from (в UTC).
func (s *Scheduler) Next(from time.Time) time.Time {
	return s.schedule.Next(from.In(s.loc)).UTC()
}

// Run ждёт каждое следующее время по расписанию и выполняет Job.
//
// Ошибка Job логируется, цикл продолжается. Возвращает ctx.Err()
// после отмены контекста.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", "cron", s.expr, "timezone", s.loc.String())

	for {
		next := s.Next(s.now())
		s.logger.Info("next run scheduled", "at", next)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("scheduler stopped",
				"runs", s.runs,
				"failures", s.failures,
			)
			return ctx.Err()
		case <-timer.C:
		}

		s.Tick(ctx)
	}
}

// Tick выполняет Job один раз. Ошибка не прерывает расписание.
func (s *Scheduler) Tick(ctx context.Context) {
	s.runs++

	if err := s.job(ctx); err != nil {
		s.failures++
		s.logger.Error("scheduled run failed", "error", err, "failures", s.failures)
		return
	}

	s.logger.Debug("scheduled run completed", "runs", s.runs)
}

// Stats возвращает количество выполненных и неудачных запусков.
func (s *Scheduler) Stats() (runs, failures int) {
	return s.runs, s.failures
}

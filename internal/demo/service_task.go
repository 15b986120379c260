package demo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/shaiso/camunda-demo/internal/broker"
	"github.com/shaiso/camunda-demo/internal/domain"
	"github.com/shaiso/camunda-demo/internal/gate"
	"github.com/shaiso/camunda-demo/internal/mq"
	"github.com/shaiso/camunda-demo/internal/telemetry"
	"github.com/shaiso/camunda-demo/internal/worker"
)

// RunServiceTask открывает воркер для JobType и ждёт обработки одного job.
//
// Возвращает true, если обработчик отработал (успешно или с fail job) до
// истечения JobTimeout. Таймаут — не ошибка: пишется предупреждение и
// возвращается false. Воркер закрывается в любом случае.
func (c *Coordinator) RunServiceTask(ctx context.Context) (bool, error) {
	logger := c.log(ctx)
	logger.Info("activating and completing service task job",
		"job_type", c.cfg.JobType,
		"timeout", c.cfg.JobTimeout,
	)

	g := gate.New()

	w := worker.New(worker.Config{
		Client:       c.broker,
		Type:         c.cfg.JobType,
		Name:         c.cfg.WorkerName,
		Handler:      c.serviceTaskHandler(ctx, g),
		PollInterval: c.cfg.WorkerPollInterval,
		Logger:       logger,

		// gate ждёт ровно один вызов обработчика
		MaxJobsActive: 1,
	})

	if err := w.Open(ctx); err != nil {
		logger.Error("failed to open job worker", "error", err)
		return false, fmt.Errorf("open job worker: %w", err)
	}
	defer w.Close()

	completed, err := g.Wait(ctx, c.cfg.JobTimeout)
	if err != nil {
		logger.Error("service task job processing was interrupted", "error", err)
		return false, fmt.Errorf("wait for job: %w", err)
	}

	if !completed {
		telemetry.ObserveJob(c.cfg.JobType, telemetry.OutcomeTimeout)
		logger.Warn("service task job was not completed within timeout",
			"job_type", c.cfg.JobType,
			"timeout", c.cfg.JobTimeout,
		)
	}

	return completed, nil
}

// serviceTaskHandler — обработчик job, который открывает gate в любом исходе.
//
// runCtx несёт run_id для событий; сам обработчик работает с контекстом воркера.
func (c *Coordinator) serviceTaskHandler(runCtx context.Context, g *gate.Gate) worker.Handler {
	runID := runIDFrom(runCtx)

	return worker.HandlerFunc(func(ctx context.Context, jc worker.JobClient, job *domain.Job) error {
		defer g.Signal()

		err := c.handleJob(ctx, jc, job)
		if err != nil {
			c.publish(ctx, runID, mq.EventJobFailed, jobPayload(job, err))
			return err
		}

		c.publish(ctx, runID, mq.EventJobCompleted, jobPayload(job, nil))
		return nil
	})
}

// JobHandler — обработчик job без gate, для долгоживущего worker-сервиса.
// Семантика обработки та же, что в RunServiceTask.
func (c *Coordinator) JobHandler() worker.Handler {
	return worker.HandlerFunc(func(ctx context.Context, jc worker.JobClient, job *domain.Job) error {
		err := c.handleJob(ctx, jc, job)
		if err != nil {
			c.publish(ctx, uuid.Nil, mq.EventJobFailed, jobPayload(job, err))
			return err
		}

		c.publish(ctx, uuid.Nil, mq.EventJobCompleted, jobPayload(job, nil))
		return nil
	})
}

// handleJob обрабатывает job и завершает его. Любая ошибка или паника
// превращается в fail job с retries 0; CompleteJob в этом случае не вызывается
// (или вызов уже вернул ошибку).
func (c *Coordinator) handleJob(ctx context.Context, jc worker.JobClient, job *domain.Job) (err error) {
	logger := telemetry.FromContext(ctx)
	logger.Info("processing job", "process_instance_key", job.ProcessInstanceKey.String())

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrJobPanicked, r)
		}
		if err != nil {
			logger.Error("failed to complete job", "error", err)
			err = multierr.Append(err, c.failJob(ctx, jc, job, err))
		}
	}()

	vars, err := c.processor(ctx, job)
	if err != nil {
		return fmt.Errorf("process job: %w", err)
	}

	if err := jc.CompleteJob(ctx, job.Key, vars); err != nil {
		return fmt.Errorf("complete job: %w", err)
	}

	logger.Info("service task job completed successfully")
	return nil
}

// failJob отклоняет job без повторов.
func (c *Coordinator) failJob(ctx context.Context, jc worker.JobClient, job *domain.Job, cause error) error {
	req := broker.FailJobRequest{
		Retries:      0,
		ErrorMessage: "Job processing failed: " + cause.Error(),
	}

	if err := jc.FailJob(ctx, job.Key, req); err != nil {
		telemetry.FromContext(ctx).Error("failed to fail job", "error", err)
		return fmt.Errorf("fail job: %w", err)
	}
	return nil
}

// MarkProcessed — обработка job по умолчанию: переменные job плюс
// processed=true и processedAt (unix ms).
func (c *Coordinator) MarkProcessed(_ context.Context, job *domain.Job) (domain.Variables, error) {
	return job.Variables.Merge(domain.Variables{
		"processed":   true,
		"processedAt": c.now().UnixMilli(),
	}), nil
}

// jobPayload — тело событий job.completed и job.failed.
func jobPayload(job *domain.Job, err error) map[string]any {
	payload := map[string]any{
		"job_key":              job.Key,
		"job_type":             job.Type,
		"process_instance_key": job.ProcessInstanceKey,
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	return payload
}

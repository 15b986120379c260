package worker

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/shaiso/camunda-demo/internal/broker"
	"github.com/shaiso/camunda-demo/internal/domain"
	"github.com/shaiso/camunda-demo/internal/telemetry"
)

// handleJob вызывает обработчик для одного job.
func (w *Worker) handleJob(ctx context.Context, job *domain.Job) {
	logger := telemetry.WithJobKey(w.logger, job.Key, job.Type)

	ctx, cancel := context.WithTimeout(telemetry.WithLogger(ctx, logger), w.jobTimeout)
	defer cancel()

	logger.Debug("job received",
		"process_instance_key", job.ProcessInstanceKey.String(),
		"retries", job.Retries,
	)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("job handler panicked",
				"error", r,
				"stack", string(debug.Stack()),
			)
			telemetry.ObserveJob(job.Type, telemetry.OutcomeFailed)
			w.failAfterPanic(ctx, job, r)
		}
	}()

	if err := w.handler.Handle(ctx, w.client, job); err != nil {
		logger.Warn("job handler returned error", "error", err)
		telemetry.ObserveJob(job.Type, telemetry.OutcomeError)
		return
	}

	telemetry.ObserveJob(job.Type, telemetry.OutcomeSuccess)
}

// failAfterPanic отклоняет job, обработчик которого упал с паникой.
// Retries уменьшается на один: брокер сам решает, выдать ли job повторно.
func (w *Worker) failAfterPanic(ctx context.Context, job *domain.Job, recovered any) {
	retries := job.Retries - 1
	if retries < 0 {
		retries = 0
	}

	req := broker.FailJobRequest{
		Retries:      retries,
		ErrorMessage: fmt.Sprintf("%v: %v", ErrHandlerPanic, recovered),
	}

	if err := w.client.FailJob(ctx, job.Key, req); err != nil {
		w.logger.Error("failed to fail job after panic",
			"job_key", job.Key.String(),
			"error", err,
		)
	}
}

package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shaiso/camunda-demo/internal/broker"
	"github.com/shaiso/camunda-demo/internal/domain"
	"github.com/shaiso/camunda-demo/internal/poll"
)

// Default configuration values.
const (
	DefaultName = "camunda-demo-worker"

	defaultMaxJobsActive  = 32
	defaultJobTimeout     = 5 * time.Minute
	defaultPollInterval   = 100 * time.Millisecond
	defaultRequestTimeout = 10 * time.Second
	maxErrorBackoff       = 5 * time.Second
)

// Worker активирует jobs одного типа и передаёт их обработчику.
//
// Worker:
//   - Опрашивает брокер (long polling через ActivateJobs)
//   - Выполняет обработчик каждого job в отдельной горутине (не больше MaxJobsActive)
//   - Восстанавливается после паники обработчика, отклоняя job
//   - При ошибках активации делает exponential backoff
//
// Регистрация обработчика = Open, снятие регистрации = Close.
type Worker struct {
	client  Activator
	jobType string
	handler Handler
	name    string

	// Configuration
	maxJobsActive  int
	jobTimeout     time.Duration
	pollInterval   time.Duration
	requestTimeout time.Duration

	// Handlers
	group    *errgroup.Group
	inFlight atomic.Int64

	// Lifecycle
	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.Mutex
	opened     bool
	closed     bool
}

// Config — конфигурация Worker.
type Config struct {
	// Client — брокер (обычно *broker.Client).
	Client Activator

	// Type — тип job (zeebe:taskDefinition type).
	Type string

	// Handler — обработчик jobs.
	Handler Handler

	// Name — имя воркера, сохраняется в job. Default: camunda-demo-worker
	Name string

	// MaxJobsActive — сколько jobs может обрабатываться одновременно (default: 32).
	MaxJobsActive int

	// Timeout — на сколько job закрепляется за воркером (default: 5m).
	// Обработчик получает context с этим таймаутом.
	Timeout time.Duration

	// PollInterval — пауза после пустой активации (default: 100ms).
	PollInterval time.Duration

	// RequestTimeout — long polling активации на стороне брокера (default: 10s).
	RequestTimeout time.Duration

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Worker.
func New(cfg Config) *Worker {
	name := cfg.Name
	if name == "" {
		name = DefaultName
	}

	maxJobsActive := cfg.MaxJobsActive
	if maxJobsActive <= 0 {
		maxJobsActive = defaultMaxJobsActive
	}

	jobTimeout := cfg.Timeout
	if jobTimeout <= 0 {
		jobTimeout = defaultJobTimeout
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	group := &errgroup.Group{}
	group.SetLimit(maxJobsActive)

	return &Worker{
		client:         cfg.Client,
		jobType:        cfg.Type,
		handler:        cfg.Handler,
		name:           name,
		maxJobsActive:  maxJobsActive,
		jobTimeout:     jobTimeout,
		pollInterval:   pollInterval,
		requestTimeout: requestTimeout,
		group:          group,
		logger:         logger.With("worker", name),
	}
}

// Type возвращает тип job воркера.
func (w *Worker) Type() string {
	return w.jobType
}

// Open регистрирует воркер: запускает горутину опроса брокера.
//
// Jobs этого типа начинают доставляться обработчику только после Open.
// Обработчики получают context, не отменяемый Close: начатая обработка
// доводится до конца.
func (w *Worker) Open(ctx context.Context) error {
	if w.jobType == "" {
		return ErrEmptyJobType
	}
	if w.handler == nil {
		return ErrNoHandler
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWorkerClosed
	}
	if w.opened {
		return ErrAlreadyOpen
	}
	w.opened = true

	handlerCtx := context.WithoutCancel(ctx)
	pollCtx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel

	w.logger.Info("job worker opened",
		"job_type", w.jobType,
		"max_jobs_active", w.maxJobsActive,
		"timeout", w.jobTimeout,
	)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.pollLoop(pollCtx, handlerCtx)
	}()

	return nil
}

// Close снимает регистрацию: останавливает опрос и ждёт завершения
// обработчиков, которые уже работают. Повторный вызов ничего не делает.
func (w *Worker) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	cancel := w.cancelFunc
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	// Сначала ждём цикл опроса (он единственный вызывает group.Go), потом обработчики
	w.wg.Wait()
	_ = w.group.Wait()

	w.logger.Info("job worker closed", "job_type", w.jobType)
	return nil
}

// IsClosed проверяет, закрыт ли Worker.
func (w *Worker) IsClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// pollLoop — цикл активации jobs.
func (w *Worker) pollLoop(ctx, handlerCtx context.Context) {
	backoff := poll.Policy{
		InitialDelay: w.pollInterval,
		MaxDelay:     maxErrorBackoff,
		Backoff:      poll.BackoffExponential,
	}
	failures := 0

	for {
		if ctx.Err() != nil {
			return
		}

		capacity := w.maxJobsActive - int(w.inFlight.Load())
		if capacity <= 0 {
			if !w.wait(ctx, w.pollInterval) {
				return
			}
			continue
		}

		jobs, err := w.client.ActivateJobs(ctx, broker.ActivateJobsRequest{
			Type:           w.jobType,
			Worker:         w.name,
			Timeout:        w.jobTimeout,
			MaxJobs:        capacity,
			RequestTimeout: w.requestTimeout,
		})
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}

			failures++
			delay := backoff.Delay(failures)
			w.logger.Warn("failed to activate jobs",
				"job_type", w.jobType,
				"error", err,
				"attempt", failures,
				"retry_in", delay,
			)
			if !w.wait(ctx, delay) {
				return
			}
			continue
		}
		failures = 0

		if len(jobs) == 0 {
			if !w.wait(ctx, w.pollInterval) {
				return
			}
			continue
		}

		w.logger.Debug("activated jobs", "job_type", w.jobType, "count", len(jobs))

		for i := range jobs {
			job := jobs[i]
			w.dispatch(handlerCtx, &job)
		}
	}
}

// dispatch запускает обработчик job в горутине errgroup.
func (w *Worker) dispatch(ctx context.Context, job *domain.Job) {
	w.inFlight.Add(1)
	w.group.Go(func() error {
		defer w.inFlight.Add(-1)
		w.handleJob(ctx, job)
		return nil
	})
}

// wait — context-aware пауза. false — контекст отменён.
func (w *Worker) wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

package demo

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/camunda-demo/internal/broker"
	"github.com/shaiso/camunda-demo/internal/domain"
	"github.com/shaiso/camunda-demo/internal/mq"
	"github.com/shaiso/camunda-demo/internal/poll"
	"github.com/shaiso/camunda-demo/internal/telemetry"
	"github.com/shaiso/camunda-demo/internal/worker"
)

//go:embed resources
var resources embed.FS

// Broker — операции брокера, которые использует сценарий.
//
// Реализуется *broker.Client.
type Broker interface {
	worker.Activator

	Deploy(ctx context.Context, name string, resource io.Reader) (*domain.Deployment, error)
	CreateProcessInstance(ctx context.Context, req broker.CreateInstanceRequest) (*domain.ProcessInstance, error)
	SearchProcessInstances(ctx context.Context, filter broker.ProcessInstanceFilter) ([]domain.ProcessInstance, error)
	SearchUserTasks(ctx context.Context, filter broker.UserTaskFilter) ([]domain.UserTask, error)
	AssignUserTask(ctx context.Context, key domain.Key, assignee string) error
	CompleteUserTask(ctx context.Context, key domain.Key, vars domain.Variables) error
}

// Events — публикация событий сценария. Реализуется *mq.Publisher.
type Events interface {
	PublishEvent(ctx context.Context, event *mq.Event) error
}

// Journal — журнал runs. Реализуется *repo.RunRepo.
type Journal interface {
	Create(ctx context.Context, run *domain.Run) error
	Update(ctx context.Context, run *domain.Run) error
}

// JobProcessor вычисляет переменные, с которыми завершается job.
type JobProcessor func(ctx context.Context, job *domain.Job) (domain.Variables, error)

// Options — необязательные зависимости Coordinator.
type Options struct {
	Logger  *slog.Logger
	Events  Events
	Journal Journal

	// Processor — обработка job service task. Default: MarkProcessed.
	Processor JobProcessor

	// Clock — источник времени. Default: time.Now
	Clock func() time.Time
}

// Report — результат одного прохода сценария.
type Report struct {
	Run          *domain.Run
	Deployment   *domain.Deployment
	Instance     *domain.ProcessInstance
	UserTask     *domain.UserTask
	JobCompleted bool

	// FinalInstance — состояние instance в конце. nil, если instance не найден.
	FinalInstance *domain.ProcessInstance
}

// Coordinator выполняет demo-сценарий против брокера.
//
// Coordinator не хранит состояние между вызовами Run и может
// использоваться повторно (например, планировщиком).
type Coordinator struct {
	broker    Broker
	cfg       Config
	logger    *slog.Logger
	events    Events
	journal   Journal
	processor JobProcessor
	now       func() time.Time
}

// New создаёт Coordinator. Пустые поля cfg заполняются значениями по умолчанию.
func New(b Broker, cfg Config, opts Options) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	c := &Coordinator{
		broker:  b,
		cfg:     cfg.withDefaults(),
		logger:  logger,
		events:  opts.Events,
		journal: opts.Journal,
		now:     now,
	}

	c.processor = opts.Processor
	if c.processor == nil {
		c.processor = c.MarkProcessed
	}

	return c
}

// Config возвращает действующую конфигурацию.
func (c *Coordinator) Config() Config {
	return c.cfg
}

// Run проходит сценарий целиком.
//
// Ошибка любого шага прерывает оставшиеся шаги и возвращается вместе
// с частично заполненным Report.
func (c *Coordinator) Run(ctx context.Context) (*Report, error) {
	run := domain.NewRun(c.cfg.ProcessID, c.now())
	logger := telemetry.WithRunID(c.logger, run.ID.String())
	ctx = telemetry.WithLogger(ctx, logger)
	ctx = context.WithValue(ctx, runIDKey{}, run.ID)

	report := &Report{Run: run}

	logger.Info("starting process demo", "process_id", c.cfg.ProcessID)
	c.record(ctx, run, c.journalCreate)

	err := c.runSteps(ctx, report)

	if err != nil {
		run.MarkFailed(c.now(), err.Error())
		telemetry.ObserveRun(telemetry.OutcomeFailed)
		logger.Error("process demo failed", "error", err)
	} else {
		run.MarkSucceeded(c.now())
		telemetry.ObserveRun(telemetry.OutcomeSuccess)
		logger.Info("process demo completed successfully",
			"duration", run.Duration(),
			"final_state", run.FinalState,
		)
	}

	c.record(ctx, run, c.journalUpdate)
	c.publish(ctx, run.ID, mq.EventRunFinished, run)

	return report, err
}

// runSteps выполняет шаги сценария по порядку.
func (c *Coordinator) runSteps(ctx context.Context, report *Report) error {
	run := report.Run

	// 1. Deploy
	deployment, err := c.Deploy(ctx)
	if err != nil {
		return err
	}
	report.Deployment = deployment
	c.publish(ctx, run.ID, mq.EventDeploymentCreated, deployment)

	// 2. Start
	instance, err := c.StartInstance(ctx)
	if err != nil {
		return err
	}
	report.Instance = instance
	run.InstanceKey = instance.Key
	c.publish(ctx, run.ID, mq.EventInstanceStarted, instance)
	c.record(ctx, run, c.journalUpdate)

	// 3. User task
	task, err := c.AwaitUserTask(ctx, instance.Key)
	if err != nil {
		return err
	}

	// 4. Assign + complete
	if task != nil {
		report.UserTask = task
		run.UserTaskKey = task.Key

		if err := c.AssignAndComplete(ctx, task); err != nil {
			return err
		}
		c.publish(ctx, run.ID, mq.EventUserTaskCompleted, task)
	} else {
		c.log(ctx).Warn("no user task found for process instance",
			"process_instance_key", instance.Key.String(),
		)
	}

	// 5. Service task
	completed, err := c.RunServiceTask(ctx)
	if err != nil {
		return err
	}
	report.JobCompleted = completed
	run.JobCompleted = completed

	// 6. Final state
	final, err := c.AwaitInstanceState(ctx, instance.Key)
	if err != nil {
		return err
	}
	if final != nil {
		report.FinalInstance = final
		run.FinalState = final.State
	}

	return nil
}

// Deploy разворачивает определение процесса.
//
// Ресурс берётся из Config.Resource или встроенного sample-process.bpmn.
// Отсутствующий ресурс — ErrResourceNotFound, отказ брокера возвращается как есть.
func (c *Coordinator) Deploy(ctx context.Context) (*domain.Deployment, error) {
	logger := c.log(ctx)
	logger.Info("deploying process definition", "resource", c.cfg.ResourceName)

	resource, err := c.openResource()
	if err != nil {
		logger.Error("failed to deploy process definition", "error", err)
		return nil, err
	}
	defer resource.Close()

	deployment, err := c.broker.Deploy(ctx, c.cfg.ResourceName, resource)
	if err != nil {
		logger.Error("failed to deploy process definition", "error", err)
		return nil, fmt.Errorf("deploy %s: %w", c.cfg.ResourceName, err)
	}

	attrs := []any{"deployment_key", deployment.Key.String()}
	if def, ok := deployment.Process(c.cfg.ProcessID); ok {
		attrs = append(attrs, "process_definition_key", def.Key.String(), "version", def.Version)
	}
	logger.Info("process deployed successfully", attrs...)

	return deployment, nil
}

// openResource открывает файл определения процесса.
func (c *Coordinator) openResource() (io.ReadCloser, error) {
	var (
		f   io.ReadCloser
		err error
	)

	if c.cfg.Resource != "" {
		f, err = os.Open(c.cfg.Resource)
	} else {
		f, err = resources.Open("resources/" + c.cfg.ResourceName)
	}

	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, c.resourcePath())
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.resourcePath(), err)
	}

	return f, nil
}

func (c *Coordinator) resourcePath() string {
	if c.cfg.Resource != "" {
		return c.cfg.Resource
	}
	return c.cfg.ResourceName
}

// StartInstance запускает instance последней версии процесса со стартовыми переменными.
func (c *Coordinator) StartInstance(ctx context.Context) (*domain.ProcessInstance, error) {
	logger := c.log(ctx)
	logger.Info("starting process instance", "process_id", c.cfg.ProcessID)

	instance, err := c.broker.CreateProcessInstance(ctx, broker.CreateInstanceRequest{
		ProcessDefinitionID: c.cfg.ProcessID,
		Version:             broker.LatestVersion,
		Variables:           c.cfg.StartVariables,
	})
	if err != nil {
		logger.Error("failed to start process instance", "error", err)
		return nil, fmt.Errorf("start %s: %w", c.cfg.ProcessID, err)
	}

	logger.Info("process instance started",
		"process_instance_key", instance.Key.String(),
		"version", instance.ProcessDefinitionVersion,
	)

	return instance, nil
}

// QueryUserTask ищет открытый user task instance.
//
// Возвращает первый task в порядке создания или nil, nil, если задач нет.
// Ошибки брокера возвращаются.
func (c *Coordinator) QueryUserTask(ctx context.Context, instanceKey domain.Key) (*domain.UserTask, error) {
	logger := telemetry.WithInstanceKey(c.log(ctx), instanceKey)
	logger.Debug("querying user tasks")

	tasks, err := c.broker.SearchUserTasks(ctx, broker.UserTaskFilter{
		ProcessInstanceKey: instanceKey,
		ElementID:          c.cfg.UserTaskID,
		State:              domain.UserTaskStateCreated,
	})
	if err != nil {
		logger.Error("failed to query user tasks", "error", err)
		return nil, fmt.Errorf("query user tasks: %w", err)
	}

	if len(tasks) == 0 {
		return nil, nil
	}

	task := tasks[0]
	logger.Info("found user task", "user_task_key", task.Key.String(), "name", task.Name)
	return &task, nil
}

// AwaitUserTask опрашивает брокер по политике TaskWait, пока не появится user task.
//
// Если попытки кончились, возвращает nil, nil: отсутствие задачи не ошибка.
func (c *Coordinator) AwaitUserTask(ctx context.Context, instanceKey domain.Key) (*domain.UserTask, error) {
	c.log(ctx).Info("waiting for process to reach user task",
		"process_instance_key", instanceKey.String(),
		"max_attempts", c.cfg.TaskWait.MaxAttempts,
	)

	var task *domain.UserTask
	err := poll.Until(ctx, c.cfg.TaskWait, func(ctx context.Context) (bool, error) {
		t, err := c.QueryUserTask(ctx, instanceKey)
		if err != nil {
			return false, err
		}
		task = t
		return t != nil, nil
	})
	if errors.Is(err, poll.ErrExhausted) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return task, nil
}

// AssignAndComplete назначает task на Assignee и завершает его с CompletionVariables.
//
// Два последовательных вызова без компенсации: если назначение прошло,
// а завершение нет, ошибка возвращается, назначение остаётся.
func (c *Coordinator) AssignAndComplete(ctx context.Context, task *domain.UserTask) error {
	logger := telemetry.WithTaskKey(c.log(ctx), task.Key)
	logger.Info("assigning and completing user task")

	if err := c.broker.AssignUserTask(ctx, task.Key, c.cfg.Assignee); err != nil {
		logger.Error("failed to assign user task", "error", err)
		return fmt.Errorf("assign user task %s: %w", task.Key, err)
	}
	logger.Info("task assigned", "assignee", c.cfg.Assignee)

	if err := c.broker.CompleteUserTask(ctx, task.Key, c.cfg.CompletionVariables); err != nil {
		logger.Error("failed to complete user task", "error", err)
		return fmt.Errorf("complete user task %s: %w", task.Key, err)
	}
	logger.Info("user task completed successfully")

	return nil
}

// QueryInstanceState возвращает текущее состояние instance.
// Если instance не найден, пишет предупреждение и возвращает nil, nil.
func (c *Coordinator) QueryInstanceState(ctx context.Context, instanceKey domain.Key) (*domain.ProcessInstance, error) {
	logger := telemetry.WithInstanceKey(c.log(ctx), instanceKey)

	instances, err := c.broker.SearchProcessInstances(ctx, broker.ProcessInstanceFilter{
		ProcessInstanceKey: instanceKey,
	})
	if err != nil {
		logger.Error("failed to query process instance", "error", err)
		return nil, fmt.Errorf("query process instance: %w", err)
	}

	if len(instances) == 0 {
		logger.Warn("process instance not found")
		return nil, nil
	}

	instance := instances[0]
	logger.Info("process instance state", "state", instance.State)
	return &instance, nil
}

// AwaitInstanceState опрашивает instance по политике InstanceWait,
// пока он не перейдёт в терминальное состояние.
//
// Если попытки кончились, возвращает последнее увиденное состояние.
func (c *Coordinator) AwaitInstanceState(ctx context.Context, instanceKey domain.Key) (*domain.ProcessInstance, error) {
	var instance *domain.ProcessInstance
	err := poll.Until(ctx, c.cfg.InstanceWait, func(ctx context.Context) (bool, error) {
		inst, err := c.QueryInstanceState(ctx, instanceKey)
		if err != nil {
			return false, err
		}
		instance = inst
		return inst != nil && inst.State.IsTerminal(), nil
	})
	if err != nil && !errors.Is(err, poll.ErrExhausted) {
		return nil, err
	}

	return instance, nil
}

type runIDKey struct{}

// runIDFrom возвращает ID текущего run или uuid.Nil вне Run.
func runIDFrom(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(runIDKey{}).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// log возвращает логгер run из контекста или логгер координатора.
func (c *Coordinator) log(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(telemetry.CtxLogger).(*slog.Logger); ok {
		return logger
	}
	return c.logger
}

// publish отправляет событие, если Events настроен. Ошибка только логируется.
func (c *Coordinator) publish(ctx context.Context, runID uuid.UUID, eventType mq.EventType, payload any) {
	if c.events == nil {
		return
	}

	if err := c.events.PublishEvent(ctx, mq.NewEvent(eventType, runID, payload)); err != nil {
		c.log(ctx).Warn("failed to publish event", "event", eventType, "error", err)
	}
}

// record пишет run в журнал, если он настроен. Ошибка только логируется.
func (c *Coordinator) record(ctx context.Context, run *domain.Run, write func(context.Context, *domain.Run) error) {
	if c.journal == nil {
		return
	}

	if err := write(ctx, run); err != nil {
		c.log(ctx).Warn("failed to write run journal", "error", err)
	}
}

func (c *Coordinator) journalCreate(ctx context.Context, run *domain.Run) error {
	return c.journal.Create(ctx, run)
}

func (c *Coordinator) journalUpdate(ctx context.Context, run *domain.Run) error {
	return c.journal.Update(ctx, run)
}

package demo

import (
	"time"

	"github.com/shaiso/camunda-demo/internal/domain"
	"github.com/shaiso/camunda-demo/internal/poll"
	"github.com/shaiso/camunda-demo/internal/worker"
)

// Значения по умолчанию — встроенный сценарий sample-process.
const (
	DefaultProcessID    = "sample-process"
	DefaultResourceName = "sample-process.bpmn"
	DefaultUserTaskID   = "user-task"
	DefaultJobType      = "processData"
	DefaultAssignee     = "demo"
	DefaultJobTimeout   = 30 * time.Second
)

// Config — параметры сценария.
type Config struct {
	// ProcessID — bpmnProcessId процесса, instance которого запускается.
	ProcessID string `yaml:"process_id"`

	// ResourceName — имя ресурса в deployment.
	ResourceName string `yaml:"resource_name"`

	// Resource — путь к BPMN файлу. Пусто — встроенный sample-process.bpmn.
	Resource string `yaml:"resource"`

	// UserTaskID — elementId user task.
	UserTaskID string `yaml:"user_task_id"`

	// JobType — тип job service task.
	JobType string `yaml:"job_type"`

	// WorkerName — имя воркера в активированных jobs.
	WorkerName string `yaml:"worker_name"`

	// Assignee — кому назначается user task.
	Assignee string `yaml:"assignee"`

	StartVariables      domain.Variables `yaml:"start_variables"`
	CompletionVariables domain.Variables `yaml:"completion_variables"`

	// JobTimeout — сколько ждать обработки job (default: 30s).
	JobTimeout time.Duration `yaml:"job_timeout"`

	// WorkerPollInterval — пауза воркера после пустой активации.
	WorkerPollInterval time.Duration `yaml:"worker_poll_interval"`

	// TaskWait — ожидание появления user task после старта instance.
	TaskWait poll.Policy `yaml:"task_wait"`

	// InstanceWait — ожидание финального состояния instance.
	InstanceWait poll.Policy `yaml:"instance_wait"`
}

// DefaultConfig возвращает конфигурацию встроенного сценария.
func DefaultConfig() Config {
	return Config{
		ProcessID:    DefaultProcessID,
		ResourceName: DefaultResourceName,
		UserTaskID:   DefaultUserTaskID,
		JobType:      DefaultJobType,
		WorkerName:   worker.DefaultName,
		Assignee:     DefaultAssignee,
		StartVariables: domain.Variables{
			"orderId":      "12345",
			"customerName": "John Doe",
		},
		CompletionVariables: domain.Variables{
			"approved": true,
			"comments": "Task completed successfully",
		},
		JobTimeout: DefaultJobTimeout,
		TaskWait: poll.Policy{
			MaxAttempts:  10,
			InitialDelay: time.Second,
			MaxDelay:     5 * time.Second,
			Backoff:      poll.BackoffExponential,
		},
		InstanceWait: poll.Policy{
			MaxAttempts:  10,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     5 * time.Second,
			Backoff:      poll.BackoffExponential,
		},
	}
}

// withDefaults заполняет пустые поля значениями DefaultConfig.
// Переменные не подставляются: пустая map — осознанный выбор.
func (c Config) withDefaults() Config {
	def := DefaultConfig()

	if c.ProcessID == "" {
		c.ProcessID = def.ProcessID
	}
	if c.ResourceName == "" {
		c.ResourceName = def.ResourceName
	}
	if c.UserTaskID == "" {
		c.UserTaskID = def.UserTaskID
	}
	if c.JobType == "" {
		c.JobType = def.JobType
	}
	if c.WorkerName == "" {
		c.WorkerName = def.WorkerName
	}
	if c.Assignee == "" {
		c.Assignee = def.Assignee
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = def.JobTimeout
	}
	if c.TaskWait.MaxAttempts <= 0 {
		c.TaskWait = def.TaskWait
	}
	if c.InstanceWait.MaxAttempts <= 0 {
		c.InstanceWait = def.InstanceWait
	}

	return c
}

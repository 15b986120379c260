package domain

import (
	"time"

	"github.com/google/uuid"
)

// Run — одна прогонка demo-сценария.
//
// Создаётся координатором в начале Run и записывается в журнал (если он настроен).
// Все поля, кроме ID и StartedAt, заполняются по мере прохождения шагов.
type Run struct {
	// ID — идентификатор run, попадает в логи и события как run_id.
	ID uuid.UUID `json:"id"`

	// ProcessID — bpmnProcessId, для которого запускался сценарий.
	ProcessID string `json:"process_id"`

	// InstanceKey — ключ созданного instance. Zero, если старт не дошёл.
	InstanceKey Key `json:"instance_key,omitempty"`

	// UserTaskKey — ключ найденного user task. Zero, если task не найден.
	UserTaskKey Key `json:"user_task_key,omitempty"`

	// JobCompleted — обработчик service task отработал до таймаута.
	JobCompleted bool `json:"job_completed"`

	// FinalState — состояние instance, полученное в конце сценария.
	FinalState InstanceState `json:"final_state,omitempty"`

	// Status — статус run.
	Status RunStatus `json:"status"`

	// Error — текст ошибки, если Status == FAILED.
	Error string `json:"error,omitempty"`

	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// NewRun создаёт run в статусе RUNNING.
func NewRun(processID string, now time.Time) *Run {
	return &Run{
		ID:        uuid.New(),
		ProcessID: processID,
		Status:    RunStatusRunning,
		StartedAt: now,
	}
}

// Duration возвращает продолжительность run.
// Возвращает 0, если run ещё не завершён.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// MarkSucceeded переводит run в статус SUCCEEDED.
func (r *Run) MarkSucceeded(now time.Time) {
	r.Status = RunStatusSucceeded
	r.FinishedAt = &now
}

// MarkFailed переводит run в статус FAILED с ошибкой.
func (r *Run) MarkFailed(now time.Time, err string) {
	r.Status = RunStatusFailed
	r.FinishedAt = &now
	r.Error = err
}

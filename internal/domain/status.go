package domain

// InstanceState — состояние process instance в брокере.
//
// Жизненный цикл:
//
//	ACTIVE → COMPLETED
//	       ↘ TERMINATED
type InstanceState string

const (
	// InstanceStateActive — instance выполняется.
	InstanceStateActive InstanceState = "ACTIVE"

	// InstanceStateCompleted — instance дошёл до end event.
	InstanceStateCompleted InstanceState = "COMPLETED"

	// InstanceStateTerminated — instance отменён.
	InstanceStateTerminated InstanceState = "TERMINATED"
)

// IsTerminal возвращает true, если instance завершён.
func (s InstanceState) IsTerminal() bool {
	switch s {
	case InstanceStateCompleted, InstanceStateTerminated:
		return true
	default:
		return false
	}
}

// UserTaskState — состояние user task.
//
// Жизненный цикл:
//
//	CREATED → COMPLETED
//	        ↘ CANCELED
//	        ↘ FAILED
type UserTaskState string

const (
	// UserTaskStateCreated — task создан и ждёт исполнителя.
	UserTaskStateCreated UserTaskState = "CREATED"

	// UserTaskStateCompleted — task завершён.
	UserTaskStateCompleted UserTaskState = "COMPLETED"

	// UserTaskStateCanceled — task отменён вместе с instance.
	UserTaskStateCanceled UserTaskState = "CANCELED"

	// UserTaskStateFailed — task не удалось завершить (listener упал).
	UserTaskStateFailed UserTaskState = "FAILED"
)

// IsOpen возвращает true, если task ещё можно назначить и завершить.
func (s UserTaskState) IsOpen() bool {
	return s == UserTaskStateCreated || s == ""
}

// RunStatus — статус demo run в журнале.
//
// Жизненный цикл:
//
//	RUNNING → SUCCEEDED
//	        ↘ FAILED
type RunStatus string

const (
	// RunStatusRunning — run выполняется.
	RunStatusRunning RunStatus = "RUNNING"

	// RunStatusSucceeded — все шаги прошли без ошибок.
	RunStatusSucceeded RunStatus = "SUCCEEDED"

	// RunStatusFailed — один из шагов вернул ошибку, остальные пропущены.
	RunStatusFailed RunStatus = "FAILED"
)

// IsTerminal возвращает true, если run завершён.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusSucceeded || s == RunStatusFailed
}

package worker

import "errors"

// Ошибки воркера.
var (
	// ErrUnknownJobType — нет обработчика для данного типа job.
	ErrUnknownJobType = errors.New("unknown job type")

	// ErrEmptyJobType — воркер создан без типа job.
	ErrEmptyJobType = errors.New("job type is required")

	// ErrNoHandler — воркер создан без обработчика.
	ErrNoHandler = errors.New("job handler is required")

	// ErrAlreadyOpen — Open вызван повторно.
	ErrAlreadyOpen = errors.New("worker already open")

	// ErrWorkerClosed — воркер закрыт.
	ErrWorkerClosed = errors.New("worker closed")

	// ErrHandlerPanic — обработчик упал с паникой.
	ErrHandlerPanic = errors.New("job handler panicked")
)

package demo

import "errors"

// Ошибки demo-сценария.
var (
	// ErrResourceNotFound — файл определения процесса не найден.
	ErrResourceNotFound = errors.New("process resource not found")

	// ErrJobPanicked — обработка job завершилась паникой.
	ErrJobPanicked = errors.New("job processing panicked")
)

package broker

import (
	"errors"
	"fmt"
	"net/http"
)

// Ошибки клиента.
var (
	// ErrNotFound — брокер ответил 404 (неизвестный процесс, task, job).
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized — брокер отклонил credentials (401/403).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrEmptyResource — деплой без содержимого ресурса.
	ErrEmptyResource = errors.New("empty resource")
)

// APIError — ошибка брокера в формате problem detail (RFC 7807).
type APIError struct {
	// Operation — имя операции клиента (deploy, create_instance, ...).
	Operation string `json:"-"`

	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance"`
}

// Error реализует интерфейс error.
func (e *APIError) Error() string {
	title := e.Title
	if title == "" {
		title = http.StatusText(e.Status)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s: HTTP %d %s: %s", e.Operation, e.Status, title, e.Detail)
	}
	return fmt.Sprintf("%s: HTTP %d %s", e.Operation, e.Status, title)
}

// Is позволяет сравнивать через errors.Is с ErrNotFound и ErrUnauthorized.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	default:
		return false
	}
}

// IsNotFound проверяет, что err — ответ 404 брокера.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

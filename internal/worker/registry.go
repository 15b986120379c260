package worker

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shaiso/camunda-demo/internal/broker"
	"github.com/shaiso/camunda-demo/internal/domain"
)

// JobClient — команды брокера, доступные обработчику job.
//
// Реализуется *broker.Client.
type JobClient interface {
	CompleteJob(ctx context.Context, key domain.Key, vars domain.Variables) error
	FailJob(ctx context.Context, key domain.Key, req broker.FailJobRequest) error
}

// Activator — источник jobs для воркера.
type Activator interface {
	JobClient
	ActivateJobs(ctx context.Context, req broker.ActivateJobsRequest) ([]domain.Job, error)
}

// Handler — обработчик job конкретного типа.
//
// Обработчик сам решает, завершить job (CompleteJob) или отклонить (FailJob).
// Возвращённая ошибка только логируется: к этому моменту обработчик
// уже должен был сообщить брокеру результат.
type Handler interface {
	Handle(ctx context.Context, client JobClient, job *domain.Job) error
}

// HandlerFunc — адаптер функции к Handler.
type HandlerFunc func(ctx context.Context, client JobClient, job *domain.Job) error

// Handle вызывает f.
func (f HandlerFunc) Handle(ctx context.Context, client JobClient, job *domain.Job) error {
	return f(ctx, client, job)
}

// Registry — реестр обработчиков по типу job.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register добавляет (или заменяет) обработчик для типа job.
func (r *Registry) Register(jobType string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[jobType] = handler
}

// Get возвращает обработчик для типа job.
func (r *Registry) Get(jobType string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, ok := r.handlers[jobType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJobType, jobType)
	}
	return handler, nil
}

// Types возвращает зарегистрированные типы в алфавитном порядке.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

package worker

import (
	"context"
	"fmt"
)

// Runtime — набор воркеров: по одному на каждый тип из Registry.
//
// Используется долгоживущим worker-сервисом; demo-сценарий открывает
// одиночный Worker напрямую.
type Runtime struct {
	workers []*Worker
}

// NewRuntime создаёт воркеры для всех типов реестра.
// base задаёт общие параметры; Type и Handler берутся из реестра.
func NewRuntime(registry *Registry, base Config) *Runtime {
	rt := &Runtime{}
	for _, jobType := range registry.Types() {
		handler, _ := registry.Get(jobType)

		cfg := base
		cfg.Type = jobType
		cfg.Handler = handler
		rt.workers = append(rt.workers, New(cfg))
	}
	return rt
}

// Open открывает все воркеры. При ошибке уже открытые закрываются.
func (rt *Runtime) Open(ctx context.Context) error {
	for i, w := range rt.workers {
		if err := w.Open(ctx); err != nil {
			for _, opened := range rt.workers[:i] {
				opened.Close()
			}
			return fmt.Errorf("open worker %s: %w", w.Type(), err)
		}
	}
	return nil
}

// Close закрывает все воркеры.
func (rt *Runtime) Close() {
	for _, w := range rt.workers {
		w.Close()
	}
}

// Types возвращает типы jobs, которые обслуживает runtime.
func (rt *Runtime) Types() []string {
	types := make([]string, len(rt.workers))
	for i, w := range rt.workers {
		types[i] = w.Type()
	}
	return types
}

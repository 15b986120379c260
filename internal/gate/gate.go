// Package gate реализует одноразовый барьер завершения.
//
// Gate связывает асинхронный callback (обработчик job, вызываемый горутиной воркера)
// с синхронным основным потоком: callback вызывает Signal ровно один раз,
// основной поток ждёт через Wait с ограничением по времени.
//
//	g := gate.New()
//	handler := worker.HandlerFunc(func(ctx context.Context, jc worker.JobClient, job *domain.Job) error {
//	    defer g.Signal()
//	    ...
//	})
//	done, err := g.Wait(ctx, 30*time.Second)
package gate

import (
	"context"
	"sync"
	"time"
)

// Gate — барьер со счётчиком 1. После первого Signal остаётся открытым навсегда.
type Gate struct {
	once sync.Once
	done chan struct{}
}

// New создаёт закрытый барьер.
func New() *Gate {
	return &Gate{done: make(chan struct{})}
}

// Signal открывает барьер. Повторные вызовы ничего не делают.
// Возвращает true только для вызова, который открыл барьер.
func (g *Gate) Signal() bool {
	opened := false
	g.once.Do(func() {
		close(g.done)
		opened = true
	})
	return opened
}

// Count возвращает оставшийся счётчик: 1 — закрыт, 0 — открыт.
func (g *Gate) Count() int {
	select {
	case <-g.done:
		return 0
	default:
		return 1
	}
}

// Done возвращает канал, закрываемый при открытии барьера.
func (g *Gate) Done() <-chan struct{} {
	return g.done
}

// Wait ждёт открытия барьера не дольше timeout.
//
// Возвращает:
//   - true, nil — барьер открыт (в том числе если был открыт до вызова)
//   - false, nil — истёк timeout
//   - false, ctx.Err() — контекст завершился раньше
func (g *Gate) Wait(ctx context.Context, timeout time.Duration) (bool, error) {
	// Открытый барьер не ждёт даже при нулевом timeout
	select {
	case <-g.done:
		return true, nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-g.done:
		return true, nil
	case <-timer.C:
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

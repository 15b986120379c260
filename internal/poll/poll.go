// Package poll — ожидание состояния брокера опросом с backoff.
//
// Заменяет фиксированные sleep между шагами сценария: вместо «подождать 10 секунд
// и надеяться» условие проверяется несколько раз с растущей задержкой.
// Быстрый брокер не тратит время, медленный не ломает сценарий.
package poll

import (
	"context"
	"errors"
	"time"
)

// ErrExhausted — условие не выполнилось за MaxAttempts попыток.
var ErrExhausted = errors.New("poll attempts exhausted")

// Стратегии backoff.
const (
	BackoffFixed       = "fixed"
	BackoffExponential = "exponential"
)

// Policy — политика опроса.
type Policy struct {
	// MaxAttempts — максимальное количество проверок (включая первую). Default: 1
	MaxAttempts int `yaml:"max_attempts"`

	// InitialDelay — задержка перед второй попыткой. Default: 1s
	InitialDelay time.Duration `yaml:"initial_delay"`

	// MaxDelay — верхняя граница задержки. Default: 30s
	MaxDelay time.Duration `yaml:"max_delay"`

	// Backoff — стратегия: "fixed", "exponential". Default: fixed
	Backoff string `yaml:"backoff"`

	// WaitFirst — ждать InitialDelay и перед первой попыткой.
	// MaxAttempts=1 + WaitFirst воспроизводит простой фиксированный sleep.
	WaitFirst bool `yaml:"wait_first"`
}

// Condition проверяет состояние. true — дождались.
// Ошибка прерывает опрос и возвращается из Until.
type Condition func(ctx context.Context) (bool, error)

// Delay вычисляет задержку после attempt-й неудачной проверки (attempt >= 1).
func (p Policy) Delay(attempt int) time.Duration {
	initialDelay := p.InitialDelay
	if initialDelay <= 0 {
		initialDelay = time.Second
	}

	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 30 * time.Second
	}

	var delay time.Duration
	switch p.Backoff {
	case BackoffExponential:
		// delay = initialDelay * 2^(attempt-1)
		delay = initialDelay
		for i := 1; i < attempt; i++ {
			delay *= 2
			if delay > maxDelay {
				delay = maxDelay
				break
			}
		}
	default:
		delay = initialDelay
	}

	if delay > maxDelay {
		delay = maxDelay
	}

	return delay
}

// Until вызывает cond, пока он не вернёт true, ошибку, или не кончатся попытки.
//
// Возвращает nil, если условие выполнилось; ошибку cond как есть;
// ErrExhausted, если попытки кончились; ctx.Err() при отмене.
func Until(ctx context.Context, p Policy, cond Condition) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	if p.WaitFirst {
		if err := sleep(ctx, p.Delay(1)); err != nil {
			return err
		}
	}

	for attempt := 1; ; attempt++ {
		ok, err := cond(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		if attempt >= maxAttempts {
			return ErrExhausted
		}

		if err := sleep(ctx, p.Delay(attempt)); err != nil {
			return err
		}
	}
}

// sleep — context-aware ожидание.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

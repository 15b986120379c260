// Package demo — сценарий демонстрации Camunda 8.
//
// Coordinator проходит шаги строго последовательно:
//
//	deploy → start → ожидание user task → assign/complete →
//	service task (job worker) → ожидание финального состояния
//
// Ошибка брокера на любом шаге прерывает оставшиеся шаги.
// «Не найдено» (нет user task, нет instance) — не ошибка, а пустой результат.
//
// # Service task
//
// Обработчик job работает в горутине воркера. Основной поток ждёт его
// через gate.Gate с таймаутом JobTimeout:
//
//	g := gate.New()
//	w := worker.New(worker.Config{Type: cfg.JobType, Handler: handler(g)})
//	w.Open(ctx)
//	ok, err := g.Wait(ctx, cfg.JobTimeout)
//	w.Close()
//
// Обработчик сигналит gate в любом исходе: job завершён, job отклонён
// (retries 0), обработка упала с паникой. Таймаут — только предупреждение.
//
// # Побочные каналы
//
// Events (RabbitMQ) и Journal (PostgreSQL) опциональны. Их ошибки
// логируются и никогда не прерывают сценарий.
package demo

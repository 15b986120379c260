// Package worker — job worker для service tasks.
//
// # Обзор
//
// Worker опрашивает брокер и передаёт активированные jobs обработчику.
// Обработчик выполняется в горутине воркера, а не в вызывающем потоке:
// связь с основным сценарием идёт только через то, что обработчик
// сам захватит (в demo — через gate.Gate).
//
//   - Активация jobs через long polling (ActivateJobs)
//   - Параллельная обработка, ограниченная MaxJobsActive (errgroup)
//   - Exponential backoff при ошибках активации
//   - Recovery после паники обработчика: job отклоняется с retries-1
//
// # Ключевые компоненты
//
// ## Worker
//
// Создаётся через New(cfg Config), регистрируется методом Open(ctx),
// снимается с регистрации методом Close().
//
//	w := worker.New(worker.Config{
//	    Client:  client,
//	    Type:    "processData",
//	    Handler: handler,
//	    Logger:  logger,
//	})
//
//	if err := w.Open(ctx); err != nil {
//	    return err
//	}
//	defer w.Close()
//
// ## Handler
//
//	type Handler interface {
//	    Handle(ctx context.Context, client JobClient, job *domain.Job) error
//	}
//
// Обработчик сам вызывает CompleteJob или FailJob. Возвращённая ошибка
// только логируется и учитывается в метриках.
//
// ## Registry и Runtime
//
// Registry хранит обработчики по типу job. Runtime открывает по воркеру
// на каждый зарегистрированный тип — так работает worker-сервис.
package worker

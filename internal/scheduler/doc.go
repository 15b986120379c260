// Package scheduler повторяет demo-сценарий по cron-расписанию.
//
// Структура:
//   - scheduler.go — цикл ожидания и запуска (Run, Tick)
//   - cron.go      — парсинг cron-выражений и вычисление следующего времени
//
// Использование:
//
//	sched, err := scheduler.New(scheduler.Config{
//	    CronExpr: "*/5 * * * *",
//	    Timezone: "Europe/Moscow",
//	    Job: func(ctx context.Context) error {
//	        _, err := coordinator.Run(ctx)
//	        return err
//	    },
//	    Logger: logger,
//	})
//
//	// Блокируется до отмены ctx
//	err = sched.Run(ctx)
//
// Прогонки не перекрываются: следующее время считается после завершения
// предыдущей, пропущенные слоты не догоняются.
package scheduler

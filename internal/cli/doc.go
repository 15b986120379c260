// Package cli реализует команды camunda-demo.
//
// # Обзор
//
// CLI работает с брокером напрямую через broker.Client. Каждая команда
// соответствует одному шагу demo-сценария или сценарию целиком:
//
//   - run: весь сценарий, однократно или по cron (--cron)
//   - topology: проверка доступности брокера
//   - deploy, start, tasks, complete, worker, instance: отдельные шаги
//   - history: журнал runs (PostgreSQL)
//   - events: события runs (RabbitMQ)
//
// # Ключевые компоненты
//
// ## Env
//
// Конфигурация, клиент брокера и логгер. Создаётся фабрикой EnvFunc
// после парсинга PersistentFlags (--address, --config). Журнал и события
// подключаются только если заданы DB_URL и RABBITMQ_URL.
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON — с флагом --json
//
// Данные выводятся в stdout, сообщения и логи — в stderr.
// Это позволяет использовать pipe: camunda-demo tasks 2251799813685249 --json | jq .
//
// Каждая команда создаётся фабричной функцией (NewRunCmd и т.д.),
// принимающей envFn и outputFn.
package cli

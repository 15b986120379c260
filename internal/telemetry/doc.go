// Package telemetry обеспечивает наблюдаемость demo-клиента.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики вызовов брокера, jobs и runs
//
// CLI и worker используют единый формат логирования.
// Worker-сервис экспортирует метрики на /metrics endpoint.
package telemetry

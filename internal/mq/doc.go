// Package mq — события demo-сценария в RabbitMQ.
//
// Структура:
//   - connection.go — соединение с RabbitMQ (reconnect с backoff)
//   - topology.go   — exchange, queue, binding
//   - publisher.go  — публикация событий
//   - consumer.go   — чтение событий (команда events)
//
// Topology:
//
//	camunda-demo.events (topic)
//	└── demo.events [routing: #]
//
// Routing key события совпадает с его типом:
//   - deployment.created   — определение процесса развёрнуто
//   - instance.started     — instance запущен
//   - user_task.completed  — user task завершён
//   - job.completed        — job service task завершён
//   - job.failed           — job отклонён
//   - run.finished         — сценарий закончился (успешно или нет)
//
// События — побочный канал: ошибка публикации не прерывает сценарий.
package mq

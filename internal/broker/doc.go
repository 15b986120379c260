// Package broker — REST-клиент Camunda 8 (API v2).
//
// # Обзор
//
// Client — долгоживущий handle к внешнему оркестратору. Создаётся один раз
// через NewClient и освобождается через Close. Все бизнес-данные (процессы,
// tasks, jobs) живут в брокере; клиент только выполняет удалённые вызовы.
//
//	client := broker.NewClient(broker.Config{Address: "http://localhost:8080"})
//	defer client.Close()
//
//	dep, err := client.Deploy(ctx, "sample-process.bpmn", f)
//	inst, err := client.CreateProcessInstance(ctx, broker.CreateInstanceRequest{
//	    ProcessDefinitionID: "sample-process",
//	    Variables:           domain.Variables{"orderId": "12345"},
//	})
//
// # Операции
//
//   - Topology — GET /v2/topology
//   - Deploy — POST /v2/deployments (multipart)
//   - CreateProcessInstance — POST /v2/process-instances
//   - SearchProcessInstances — POST /v2/process-instances/search
//   - SearchUserTasks — POST /v2/user-tasks/search
//   - AssignUserTask — POST /v2/user-tasks/{key}/assignment
//   - CompleteUserTask — POST /v2/user-tasks/{key}/completion
//   - ActivateJobs — POST /v2/jobs/activation
//   - CompleteJob — POST /v2/jobs/{key}/completion
//   - FailJob — POST /v2/jobs/{key}/failure
//
// # Ошибки
//
// Ответ не-2xx превращается в *APIError (RFC 7807 problem detail).
// 404 дополнительно матчится с ErrNotFound через errors.Is.
// Ошибки транспорта оборачиваются именем операции.
//
// Клиент не делает retry: повтор — ответственность вызывающего или брокера.
package broker

package broker

import (
	"time"

	"github.com/shaiso/camunda-demo/internal/domain"
)

// LatestVersion — запуск последней развёрнутой версии процесса.
const LatestVersion = -1

// --- Requests ---

// CreateInstanceRequest — создание process instance.
type CreateInstanceRequest struct {
	ProcessDefinitionID string           `json:"processDefinitionId"`
	Version             int              `json:"processDefinitionVersion,omitempty"`
	Variables           domain.Variables `json:"variables,omitempty"`
	TenantID            string           `json:"tenantId,omitempty"`
}

// UserTaskFilter — фильтр поиска user tasks. Пустые поля не фильтруют.
type UserTaskFilter struct {
	ProcessInstanceKey domain.Key           `json:"processInstanceKey,omitempty"`
	UserTaskKey        domain.Key           `json:"userTaskKey,omitempty"`
	ElementID          string               `json:"elementId,omitempty"`
	Assignee           string               `json:"assignee,omitempty"`
	State              domain.UserTaskState `json:"state,omitempty"`
}

// ProcessInstanceFilter — фильтр поиска process instances.
type ProcessInstanceFilter struct {
	ProcessInstanceKey  domain.Key           `json:"processInstanceKey,omitempty"`
	ProcessDefinitionID string               `json:"processDefinitionId,omitempty"`
	State               domain.InstanceState `json:"state,omitempty"`
}

// ActivateJobsRequest — активация jobs (long polling на стороне брокера).
type ActivateJobsRequest struct {
	// Type — тип job (значение zeebe:taskDefinition type в BPMN).
	Type string

	// Worker — имя воркера, сохраняется брокером в job.
	Worker string

	// Timeout — сколько job остаётся за воркером до повторной выдачи.
	Timeout time.Duration

	// MaxJobs — максимум jobs за один вызов.
	MaxJobs int

	// RequestTimeout — long polling: сколько брокер держит запрос, если jobs нет.
	// 0 — значение брокера по умолчанию.
	RequestTimeout time.Duration
}

// FailJobRequest — отказ от job.
type FailJobRequest struct {
	// Retries — оставшиеся попытки. 0 — брокер создаёт incident, retry не будет.
	Retries int `json:"retries"`

	ErrorMessage string `json:"errorMessage,omitempty"`

	// RetryBackOff — задержка перед повторной выдачей, мс.
	RetryBackOff int64 `json:"retryBackOff,omitempty"`
}

// --- Responses ---

// Topology — состояние кластера брокера.
type Topology struct {
	Brokers           []BrokerInfo `json:"brokers"`
	ClusterSize       int          `json:"clusterSize"`
	PartitionsCount   int          `json:"partitionsCount"`
	ReplicationFactor int          `json:"replicationFactor"`
	GatewayVersion    string       `json:"gatewayVersion"`
}

// BrokerInfo — узел кластера.
type BrokerInfo struct {
	NodeID  int    `json:"nodeId"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
	Version string `json:"version"`
}

// --- Wire types ---

type activateJobsBody struct {
	Type              string `json:"type"`
	Worker            string `json:"worker,omitempty"`
	Timeout           int64  `json:"timeout"`
	MaxJobsToActivate int    `json:"maxJobsToActivate"`
	RequestTimeout    int64  `json:"requestTimeout,omitempty"`
}

type activateJobsResponse struct {
	Jobs []domain.Job `json:"jobs"`
}

type assignBody struct {
	Assignee      string `json:"assignee"`
	AllowOverride bool   `json:"allowOverride"`
}

type variablesBody struct {
	Variables domain.Variables `json:"variables,omitempty"`
}

type searchSort struct {
	Field string `json:"field"`
	Order string `json:"order"`
}

type searchPage struct {
	Limit int `json:"limit,omitempty"`
}

type searchRequest struct {
	Filter any          `json:"filter,omitempty"`
	Sort   []searchSort `json:"sort,omitempty"`
	Page   *searchPage  `json:"page,omitempty"`
}

type userTaskSearchResponse struct {
	Items []domain.UserTask `json:"items"`
}

type instanceSearchResponse struct {
	Items []domain.ProcessInstance `json:"items"`
}

type deploymentResponse struct {
	DeploymentKey domain.Key `json:"deploymentKey"`
	TenantID      string     `json:"tenantId"`
	Deployments   []struct {
		ProcessDefinition *domain.ProcessDefinition `json:"processDefinition,omitempty"`
	} `json:"deployments"`
}

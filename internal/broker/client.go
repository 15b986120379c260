package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/shaiso/camunda-demo/internal/domain"
	"github.com/shaiso/camunda-demo/internal/telemetry"
)

// Default configuration values.
const (
	DefaultAddress = "http://localhost:8080"

	defaultHTTPTimeout = 30 * time.Second
	defaultJobTimeout  = 5 * time.Minute
	defaultMaxJobs     = 32
	searchLimit        = 100
)

// Config — конфигурация клиента.
type Config struct {
	// Address — REST-адрес брокера (scheme://host:port). Default: http://localhost:8080
	Address string

	// Username/Password — basic auth (опционально).
	Username string
	Password string

	// Timeout — таймаут HTTP-клиента. Должен быть больше RequestTimeout
	// активации jobs, иначе long polling обрывается клиентом. Default: 30s
	Timeout time.Duration

	// HTTPClient — внешний клиент (тесты). Если задан, Timeout игнорируется.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Client — HTTP-клиент Camunda REST API v2.
//
// Потокобезопасен: основной поток и горутины воркера используют один Client.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient создаёт клиент для брокера.
func NewClient(cfg Config) *Client {
	address := strings.TrimRight(cfg.Address, "/")
	if address == "" {
		address = DefaultAddress
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    address,
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Address возвращает адрес брокера.
func (c *Client) Address() string {
	return c.baseURL
}

// Close освобождает idle-соединения.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// --- Cluster ---

// Topology возвращает топологию кластера.
func (c *Client) Topology(ctx context.Context) (*Topology, error) {
	var topology Topology
	err := c.get(ctx, "topology", "/v2/topology", &topology)
	if err != nil {
		return nil, err
	}
	return &topology, nil
}

// --- Deployments ---

// Deploy разворачивает ресурс (BPMN, DMN, form) под именем name.
func (c *Client) Deploy(ctx context.Context, name string, resource io.Reader) (*domain.Deployment, error) {
	const op = "deploy"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("resources", name)
	if err != nil {
		return nil, fmt.Errorf("%s: create form file: %w", op, err)
	}
	n, err := io.Copy(part, resource)
	if err != nil {
		return nil, fmt.Errorf("%s: read resource %s: %w", op, name, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrEmptyResource, name)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%s: close multipart: %w", op, err)
	}

	var resp deploymentResponse
	if err := c.send(ctx, op, http.MethodPost, "/v2/deployments", mw.FormDataContentType(), &buf, &resp); err != nil {
		return nil, err
	}

	deployment := &domain.Deployment{
		Key:      resp.DeploymentKey,
		TenantID: resp.TenantID,
	}
	for _, d := range resp.Deployments {
		if d.ProcessDefinition != nil {
			deployment.Processes = append(deployment.Processes, *d.ProcessDefinition)
		}
	}

	return deployment, nil
}

// --- Process instances ---

// CreateProcessInstance создаёт process instance.
func (c *Client) CreateProcessInstance(ctx context.Context, req CreateInstanceRequest) (*domain.ProcessInstance, error) {
	var instance domain.ProcessInstance
	if err := c.post(ctx, "create_instance", "/v2/process-instances", req, &instance); err != nil {
		return nil, err
	}
	if instance.State == "" {
		instance.State = domain.InstanceStateActive
	}
	return &instance, nil
}

// SearchProcessInstances ищет process instances, старые — первыми.
func (c *Client) SearchProcessInstances(ctx context.Context, filter ProcessInstanceFilter) ([]domain.ProcessInstance, error) {
	req := searchRequest{
		Filter: filter,
		Sort:   []searchSort{{Field: "startDate", Order: "ASC"}},
		Page:   &searchPage{Limit: searchLimit},
	}

	var resp instanceSearchResponse
	if err := c.post(ctx, "search_instances", "/v2/process-instances/search", req, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// --- User tasks ---

// SearchUserTasks ищет user tasks в порядке создания.
func (c *Client) SearchUserTasks(ctx context.Context, filter UserTaskFilter) ([]domain.UserTask, error) {
	req := searchRequest{
		Filter: filter,
		Sort:   []searchSort{{Field: "creationDate", Order: "ASC"}},
		Page:   &searchPage{Limit: searchLimit},
	}

	var resp userTaskSearchResponse
	if err := c.post(ctx, "search_user_tasks", "/v2/user-tasks/search", req, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// AssignUserTask назначает user task исполнителю (с перезаписью текущего).
func (c *Client) AssignUserTask(ctx context.Context, key domain.Key, assignee string) error {
	body := assignBody{Assignee: assignee, AllowOverride: true}
	return c.post(ctx, "assign_user_task", "/v2/user-tasks/"+key.String()+"/assignment", body, nil)
}

// CompleteUserTask завершает user task с переменными.
func (c *Client) CompleteUserTask(ctx context.Context, key domain.Key, vars domain.Variables) error {
	body := variablesBody{Variables: vars}
	return c.post(ctx, "complete_user_task", "/v2/user-tasks/"+key.String()+"/completion", body, nil)
}

// --- Jobs ---

// ActivateJobs активирует до req.MaxJobs jobs указанного типа.
// Пустой результат — не ошибка.
func (c *Client) ActivateJobs(ctx context.Context, req ActivateJobsRequest) ([]domain.Job, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	maxJobs := req.MaxJobs
	if maxJobs <= 0 {
		maxJobs = defaultMaxJobs
	}

	body := activateJobsBody{
		Type:              req.Type,
		Worker:            req.Worker,
		Timeout:           timeout.Milliseconds(),
		MaxJobsToActivate: maxJobs,
		RequestTimeout:    req.RequestTimeout.Milliseconds(),
	}

	var resp activateJobsResponse
	if err := c.post(ctx, "activate_jobs", "/v2/jobs/activation", body, &resp); err != nil {
		return nil, err
	}
	return resp.Jobs, nil
}

// CompleteJob завершает job с переменными.
func (c *Client) CompleteJob(ctx context.Context, key domain.Key, vars domain.Variables) error {
	body := variablesBody{Variables: vars}
	return c.post(ctx, "complete_job", "/v2/jobs/"+key.String()+"/completion", body, nil)
}

// FailJob отклоняет job.
func (c *Client) FailJob(ctx context.Context, key domain.Key, req FailJobRequest) error {
	return c.post(ctx, "fail_job", "/v2/jobs/"+key.String()+"/failure", req, nil)
}

// --- HTTP helpers ---

func (c *Client) get(ctx context.Context, op, path string, result any) error {
	return c.send(ctx, op, http.MethodGet, path, "", nil, result)
}

func (c *Client) post(ctx context.Context, op, path string, body any, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: failed to marshal request: %w", op, err)
	}
	return c.send(ctx, op, http.MethodPost, path, "application/json", bytes.NewReader(data), result)
}

// send выполняет запрос, проверяет статус и декодирует тело в result.
// result == nil — тело ответа игнорируется (204 No Content).
func (c *Client) send(ctx context.Context, op, method, path, contentType string, body io.Reader, result any) (err error) {
	started := time.Now()
	defer func() {
		telemetry.ObserveBrokerRequest(op, started, err)
	}()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("broker request",
		"operation", op,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(started),
	)

	if err := checkError(op, resp); err != nil {
		return err
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}

func checkError(op string, resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	apiErr := &APIError{}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if len(data) > 0 {
		if err := json.Unmarshal(data, apiErr); err != nil {
			apiErr.Detail = truncate(strings.TrimSpace(string(data)), 200)
		}
	}

	apiErr.Operation = op
	apiErr.Status = resp.StatusCode
	return apiErr
}

// truncate обрезает строку до указанной длины.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

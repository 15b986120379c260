package demo

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"

	"github.com/shaiso/camunda-demo/internal/broker"
	"github.com/shaiso/camunda-demo/internal/domain"
)

const (
	testDeploymentKey domain.Key = 2251799813685248
	testInstanceKey   domain.Key = 2251799813685249
	testUserTaskKey   domain.Key = 2251799813685260
	testJobKey        domain.Key = 2251799813685270
)

var errRejected = errors.New("broker rejected command")

// fakeBroker — in-memory брокер с моделью sample-process:
// start → user task → service task (job) → end.
type fakeBroker struct {
	mu sync.Mutex

	// Настройки сценария
	taskAfterSearches int   // user task появляется после N пустых поисков
	noUserTask        bool  // процесс без user task
	deliverJob        bool  // выдавать job service task
	deployErr         error // ошибка Deploy
	completeJobErr    error // ошибка CompleteJob

	deployedName string
	deployedBody []byte

	instance     *domain.ProcessInstance
	tasks        []domain.UserTask
	taskSearches int
	assignee     string
	taskVars     domain.Variables
	jobs         []domain.Job

	activations   int
	maxJobsAsked  []int
	completedJobs map[domain.Key]domain.Variables
	failedJobs    map[domain.Key][]broker.FailJobRequest
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{
		deliverJob:    true,
		completedJobs: make(map[domain.Key]domain.Variables),
		failedJobs:    make(map[domain.Key][]broker.FailJobRequest),
	}
}

func (f *fakeBroker) Deploy(_ context.Context, name string, resource io.Reader) (*domain.Deployment, error) {
	if f.deployErr != nil {
		return nil, f.deployErr
	}

	body, err := io.ReadAll(resource)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.deployedName = name
	f.deployedBody = body

	return &domain.Deployment{
		Key: testDeploymentKey,
		Processes: []domain.ProcessDefinition{
			{ID: DefaultProcessID, Version: 1, Key: testDeploymentKey + 1, ResourceName: name},
		},
	}, nil
}

func (f *fakeBroker) CreateProcessInstance(_ context.Context, req broker.CreateInstanceRequest) (*domain.ProcessInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if req.ProcessDefinitionID != DefaultProcessID {
		return nil, errRejected
	}

	f.instance = &domain.ProcessInstance{
		Key:                      testInstanceKey,
		ProcessDefinitionID:      req.ProcessDefinitionID,
		ProcessDefinitionVersion: 1,
		State:                    domain.InstanceStateActive,
		Variables:                req.Variables.Clone(),
	}

	if f.noUserTask {
		f.enqueueJobLocked()
	}

	inst := *f.instance
	return &inst, nil
}

func (f *fakeBroker) SearchProcessInstances(_ context.Context, filter broker.ProcessInstanceFilter) ([]domain.ProcessInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.instance == nil || f.instance.Key != filter.ProcessInstanceKey {
		return nil, nil
	}
	return []domain.ProcessInstance{*f.instance}, nil
}

func (f *fakeBroker) SearchUserTasks(_ context.Context, filter broker.UserTaskFilter) ([]domain.UserTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.taskSearches++
	if f.instance != nil && !f.noUserTask && f.tasks == nil && f.taskSearches > f.taskAfterSearches {
		f.tasks = []domain.UserTask{{
			Key:                testUserTaskKey,
			ElementID:          DefaultUserTaskID,
			Name:               "Review order",
			ProcessInstanceKey: f.instance.Key,
			State:              domain.UserTaskStateCreated,
		}}
	}

	var out []domain.UserTask
	for _, t := range f.tasks {
		if filter.ProcessInstanceKey != 0 && t.ProcessInstanceKey != filter.ProcessInstanceKey {
			continue
		}
		if filter.ElementID != "" && t.ElementID != filter.ElementID {
			continue
		}
		if filter.State != "" && t.State != filter.State {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeBroker) AssignUserTask(_ context.Context, key domain.Key, assignee string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.tasks {
		if f.tasks[i].Key == key {
			f.tasks[i].Assignee = assignee
			f.assignee = assignee
			return nil
		}
	}
	return broker.ErrNotFound
}

func (f *fakeBroker) CompleteUserTask(_ context.Context, key domain.Key, vars domain.Variables) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.tasks {
		if f.tasks[i].Key == key && f.tasks[i].State == domain.UserTaskStateCreated {
			f.tasks[i].State = domain.UserTaskStateCompleted
			f.taskVars = vars
			f.instance.Variables = f.instance.Variables.Merge(vars)
			f.enqueueJobLocked()
			return nil
		}
	}
	return broker.ErrNotFound
}

func (f *fakeBroker) enqueueJobLocked() {
	if !f.deliverJob {
		return
	}
	f.jobs = append(f.jobs, domain.Job{
		Key:                testJobKey,
		Type:               DefaultJobType,
		ProcessInstanceKey: f.instance.Key,
		ElementID:          "service-task",
		Retries:            3,
		Variables:          f.instance.Variables.Clone(),
	})
}

func (f *fakeBroker) ActivateJobs(_ context.Context, req broker.ActivateJobsRequest) ([]domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.activations++
	f.maxJobsAsked = append(f.maxJobsAsked, req.MaxJobs)

	var out, rest []domain.Job
	for _, j := range f.jobs {
		if j.Type == req.Type && len(out) < req.MaxJobs {
			out = append(out, j)
		} else {
			rest = append(rest, j)
		}
	}
	f.jobs = rest
	return out, nil
}

func (f *fakeBroker) CompleteJob(_ context.Context, key domain.Key, vars domain.Variables) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.completeJobErr != nil {
		return f.completeJobErr
	}

	f.completedJobs[key] = vars
	if f.instance != nil {
		f.instance.Variables = f.instance.Variables.Merge(vars)
		f.instance.State = domain.InstanceStateCompleted
	}
	return nil
}

func (f *fakeBroker) FailJob(_ context.Context, key domain.Key, req broker.FailJobRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.failedJobs[key] = append(f.failedJobs[key], req)
	return nil
}

func (f *fakeBroker) requestedMaxJobs() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.maxJobsAsked)
}

func (f *fakeBroker) activationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activations
}

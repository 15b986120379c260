package demo

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shaiso/camunda-demo/internal/domain"
	"github.com/shaiso/camunda-demo/internal/gate"
)

func queuedJob() domain.Job {
	return domain.Job{
		Key:       testJobKey,
		Type:      DefaultJobType,
		Retries:   3,
		Variables: domain.Variables{"orderId": "12345"},
	}
}

func TestRunServiceTask_Completes(t *testing.T) {
	fb := newFakeBroker()
	fb.jobs = []domain.Job{queuedJob()}

	c := testCoordinator(fb, testConfig(), Options{})

	start := time.Now()
	completed, err := c.RunServiceTask(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !completed {
		t.Fatal("expected gate to open")
	}
	if time.Since(start) > time.Second {
		t.Error("wait should return as soon as the job is handled")
	}

	vars := fb.completedJobs[testJobKey]
	if vars["processed"] != true || vars["processedAt"] != testNow.UnixMilli() || vars["orderId"] != "12345" {
		t.Errorf("unexpected completion variables %v", vars)
	}
}

func TestRunServiceTask_ActivatesOneJobAtATime(t *testing.T) {
	fb := newFakeBroker()
	other := queuedJob()
	other.Key = testJobKey + 1
	fb.jobs = []domain.Job{queuedJob(), other}

	c := testCoordinator(fb, testConfig(), Options{})

	completed, err := c.RunServiceTask(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !completed {
		t.Fatal("expected gate to open")
	}

	asked := fb.requestedMaxJobs()
	if len(asked) == 0 {
		t.Fatal("expected at least one activation")
	}
	for _, n := range asked {
		if n != 1 {
			t.Errorf("expected activation of a single job, got maxJobs %v", asked)
			break
		}
	}
	if _, ok := fb.completedJobs[testJobKey]; !ok {
		t.Error("first queued job should be completed")
	}
}

func TestRunServiceTask_ProcessingErrorFailsJob(t *testing.T) {
	fb := newFakeBroker()
	fb.jobs = []domain.Job{queuedJob()}

	c := testCoordinator(fb, testConfig(), Options{
		Processor: func(context.Context, *domain.Job) (domain.Variables, error) {
			return nil, errors.New("boom")
		},
	})

	completed, err := c.RunServiceTask(context.Background())
	if err != nil {
		t.Fatalf("handler failure should not fail the step: %v", err)
	}
	if !completed {
		t.Error("gate should open even when the handler fails")
	}

	assertFailedOnce(t, fb, "boom")
}

func TestRunServiceTask_PanicFailsJob(t *testing.T) {
	fb := newFakeBroker()
	fb.jobs = []domain.Job{queuedJob()}

	c := testCoordinator(fb, testConfig(), Options{
		Processor: func(context.Context, *domain.Job) (domain.Variables, error) {
			panic("unexpected nil")
		},
	})

	completed, err := c.RunServiceTask(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !completed {
		t.Error("gate should open after a panic")
	}

	assertFailedOnce(t, fb, "unexpected nil")
}

func TestRunServiceTask_CompleteErrorFailsJob(t *testing.T) {
	fb := newFakeBroker()
	fb.jobs = []domain.Job{queuedJob()}
	fb.completeJobErr = errors.New("job not activatable")

	c := testCoordinator(fb, testConfig(), Options{})

	completed, err := c.RunServiceTask(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !completed {
		t.Error("gate should open after a failed completion")
	}

	reqs := fb.failedJobs[testJobKey]
	if len(reqs) != 1 || !strings.Contains(reqs[0].ErrorMessage, "job not activatable") {
		t.Errorf("expected one fail request with completion error, got %+v", reqs)
	}
}

func TestRunServiceTask_Timeout(t *testing.T) {
	fb := newFakeBroker()
	logs := &syncBuffer{}

	cfg := testConfig()
	cfg.JobTimeout = 50 * time.Millisecond
	c := testCoordinator(fb, cfg, Options{Logger: slog.New(slog.NewTextHandler(logs, nil))})

	start := time.Now()
	completed, err := c.RunServiceTask(context.Background())
	if err != nil {
		t.Fatalf("timeout should not be an error: %v", err)
	}
	if completed {
		t.Error("expected wait to time out")
	}
	if time.Since(start) < 50*time.Millisecond {
		t.Error("wait returned before timeout")
	}
	if !strings.Contains(logs.String(), "service task job was not completed within timeout") {
		t.Error("expected timeout warning")
	}
	if !strings.Contains(logs.String(), "job worker closed") {
		t.Error("expected worker to be closed")
	}

	// После закрытия воркер больше не активирует jobs
	activations := fb.activationCount()
	time.Sleep(20 * time.Millisecond)
	if fb.activationCount() != activations {
		t.Error("worker kept polling after close")
	}
}

func TestRunServiceTask_ContextCanceled(t *testing.T) {
	fb := newFakeBroker()
	c := testCoordinator(fb, testConfig(), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.RunServiceTask(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestServiceTaskHandler_SignalsOnceEvenOnFailure(t *testing.T) {
	fb := newFakeBroker()
	c := testCoordinator(fb, testConfig(), Options{
		Processor: func(context.Context, *domain.Job) (domain.Variables, error) {
			return nil, errors.New("boom")
		},
	})

	g := gate.New()
	handler := c.serviceTaskHandler(context.Background(), g)

	job := queuedJob()
	if err := handler.Handle(context.Background(), fb, &job); err == nil {
		t.Error("expected handler to report failure")
	}
	if g.Count() != 0 {
		t.Errorf("expected gate count 0, got %d", g.Count())
	}

	// Повторная доставка не уводит счётчик ниже нуля
	handler.Handle(context.Background(), fb, &job)
	if g.Count() != 0 {
		t.Errorf("expected gate count to stay 0, got %d", g.Count())
	}
}

func assertFailedOnce(t *testing.T, fb *fakeBroker, cause string) {
	t.Helper()

	if _, ok := fb.completedJobs[testJobKey]; ok {
		t.Error("failed job must not be completed")
	}

	reqs := fb.failedJobs[testJobKey]
	if len(reqs) != 1 {
		t.Fatalf("expected exactly one fail request, got %d", len(reqs))
	}
	if reqs[0].Retries != 0 {
		t.Errorf("expected retries 0, got %d", reqs[0].Retries)
	}
	if !strings.HasPrefix(reqs[0].ErrorMessage, "Job processing failed: ") || !strings.Contains(reqs[0].ErrorMessage, cause) {
		t.Errorf("unexpected error message %q", reqs[0].ErrorMessage)
	}
}

func TestJobHandler_CompletesWithoutGate(t *testing.T) {
	fb := newFakeBroker()
	c := testCoordinator(fb, testConfig(), Options{})

	job := queuedJob()
	if err := c.JobHandler().Handle(context.Background(), fb, &job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if vars := fb.completedJobs[testJobKey]; vars["processed"] != true {
		t.Errorf("expected processed job, got %v", vars)
	}
}

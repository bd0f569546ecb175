package worker

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fryerbot/internal/config"
	"fryerbot/internal/domain/jobModel"
	"fryerbot/internal/job"
	"fryerbot/pkg/logger_i"
)

// MockRagService to track if jobs are executed
type MockRagService struct {
	ProcessedCount int32
	IngestedCount  int32
}

func (m *MockRagService) ProcessRequest(ctx context.Context, j jobModel.Job, hist []string) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	return j
}

func (m *MockRagService) IngestCatalog(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.IngestedCount, 1)
	j.Status = jobModel.JobStatusComplete
	return j
}

func (m *MockRagService) CountDocuments(ctx context.Context) (uint64, error) {
	return 0, nil
}

type MockJobStore struct {
	OnSaveJob func(ctx context.Context, job jobModel.Job) error
}

func (m *MockJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	return jobModel.Job{}, false
}

func (m *MockJobStore) DeleteJob(ctx context.Context, jobID string) {}

func (m *MockJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	if m.OnSaveJob != nil {
		return m.OnSaveJob(ctx, j)
	}
	return nil
}

// MockMessageStore handles chat history
type MockMessageStore struct {
	OnGetHistory func(ctx context.Context, chatId string) (error, []string)
	OnSaveChat   func(ctx context.Context, chatId string, payload jobModel.JobPayload) error
}

func (m *MockMessageStore) ValidateChatId(ctx context.Context, id string) bool {
	return true
}

func (m *MockMessageStore) InitNewChat(ctx context.Context, id string) error {
	return nil
}

func (m *MockMessageStore) GetMessageHistory(ctx context.Context, id string) (error, []string) {
	if m.OnGetHistory != nil {
		return m.OnGetHistory(ctx, id)
	}
	return nil, []string{}
}
func (m *MockMessageStore) TrySaveChat(ctx context.Context, id string, p jobModel.JobPayload) error {
	if m.OnSaveChat != nil {
		return m.OnSaveChat(ctx, id, p)
	}
	return nil
}

func TestWorkerPool_Flow(t *testing.T) {
	// 1. Setup
	jobSvc := &job.Service{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          &MockJobStore{},
		MessageStore:      &MockMessageStore{},
	}
	mockRag := &MockRagService{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	InitServices(jobSvc, mockRag)
	InitWorkerPool(stopChan, wg)

	// Reset global state for test
	atomic.StoreInt64(&currentWorkerCount, 0)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		// Signal dispatcher to create a worker
		jobSvc.DispatcherChannel <- true

		// Give it a millisecond to spawn
		time.Sleep(50 * time.Millisecond)

		count := atomic.LoadInt64(&currentWorkerCount)
		if count < 1 {
			t.Errorf("Expected at least 1 worker, got %d", count)
		}
	})

	t.Run("Worker processes a query job", func(t *testing.T) {
		testJob := jobModel.Job{Id: "test-1", JobType: jobModel.JobTypeQuery}
		jobSvc.JobChannel <- testJob

		// Wait for worker to pick up and process
		time.Sleep(50 * time.Millisecond)

		processed := atomic.LoadInt32(&mockRag.ProcessedCount)
		if processed != 1 {
			t.Errorf("Expected 1 job processed, got %d", processed)
		}
	})

	t.Run("Worker routes ingest jobs to the catalog pipeline", func(t *testing.T) {
		testJob := jobModel.Job{Id: "test-2", JobType: jobModel.JobTypeIngest}
		jobSvc.JobChannel <- testJob

		time.Sleep(50 * time.Millisecond)

		ingested := atomic.LoadInt32(&mockRag.IngestedCount)
		if ingested != 1 {
			t.Errorf("Expected 1 ingest job processed, got %d", ingested)
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		// Send stop signal
		close(stopChan)

		// Wait for workers to exit
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			// Success
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}

func TestExecuteJob_SavesErrorState(t *testing.T) {
	logger = logger_i.NewLogger("TestWorkerPool")

	var savedStatuses []jobModel.JobStatus
	var mu sync.Mutex
	jobSvc := &job.Service{
		JobStore: &MockJobStore{
			OnSaveJob: func(ctx context.Context, j jobModel.Job) error {
				mu.Lock()
				savedStatuses = append(savedStatuses, j.Status)
				mu.Unlock()
				return nil
			},
		},
		MessageStore: &MockMessageStore{},
	}

	failingRag := &failingRagService{}
	InitServices(jobSvc, failingRag)

	executeJob(jobModel.Job{Id: "failing", JobType: jobModel.JobTypeQuery})

	mu.Lock()
	defer mu.Unlock()
	if len(savedStatuses) != 2 {
		t.Fatalf("Expected 2 state saves (running, final), got %d", len(savedStatuses))
	}
	if savedStatuses[0] != jobModel.JobStatusRunning {
		t.Errorf("First save got %v, want RUNNING", savedStatuses[0])
	}
	if savedStatuses[1] != jobModel.JobStatusError {
		t.Errorf("Final save got %v, want Error: a failed job must not be marked complete", savedStatuses[1])
	}
}

type failingRagService struct{}

func (f *failingRagService) ProcessRequest(ctx context.Context, j jobModel.Job, hist []string) jobModel.Job {
	j.Status = jobModel.JobStatusError
	return j
}

func (f *failingRagService) IngestCatalog(ctx context.Context, j jobModel.Job) jobModel.Job {
	j.Status = jobModel.JobStatusError
	return j
}

func (f *failingRagService) CountDocuments(ctx context.Context) (uint64, error) {
	return 0, nil
}

func TestWorker_IdleTimeout(t *testing.T) {
	atomic.StoreInt64(&currentWorkerCount, 0)
	logger = logger_i.NewLogger("TestWorkerPool")
	jobSvc := &job.Service{
		JobChannel: make(chan jobModel.Job),
	}
	InitServices(jobSvc, &MockRagService{})

	wg := &sync.WaitGroup{}
	stopChan := make(chan bool)
	workerWaitGroup = wg
	stopWorkerChannel = stopChan

	// Grow the pool above the minimum, then let every worker sit idle
	createWorker()
	createWorker()
	time.Sleep(config.IdleWorkerTimeout)

	time.Sleep(100 * time.Millisecond)
	count := atomic.LoadInt64(&currentWorkerCount)
	if count != config.MinWorkerCount {
		t.Errorf("Idle pool should have shrunk back to the minimum of %d, got %d", config.MinWorkerCount, count)
	}

	close(stopChan)
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("Remaining worker did not drain on stop")
	}
}

func TestExecuteJob_LogsTraceId(t *testing.T) {
	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	logger = logger_i.NewLogger("TestWorkerPool")

	jobSvc := &job.Service{
		JobStore:     &MockJobStore{},
		MessageStore: &MockMessageStore{},
	}
	InitServices(jobSvc, &MockRagService{})

	executeJob(jobModel.Job{Id: "traced", JobType: jobModel.JobTypeQuery, TraceId: "trace-worker-1"})

	if !strings.Contains(buf.String(), "trace-worker-1") {
		t.Errorf("Job logs must carry the trace id, got: %s", buf.String())
	}
}

package store_test

import (
	"context"
	"testing"

	"fryerbot/internal/config"
	"fryerbot/internal/data/redisStore"
	"fryerbot/internal/data/store"
	"fryerbot/internal/domain/jobModel"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisJobStore_Lifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	internalStore := redisStore.NewTestStore(client)
	jobStore := store.TestJobStore(internalStore)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	jobID := "job_abc_123"

	testJob := jobModel.Job{
		Id:     jobID,
		Status: jobModel.JobStatusRunning,
		JobPayload: jobModel.JobPayload{
			Question: "Какой аэрогриль с двумя ТЭНами?",
		},
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		err := jobStore.SaveJob(ctx, testJob)
		if err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}

		retrievedJob, found := jobStore.GetJob(ctx, jobID)
		if !found {
			t.Fatal("Job was saved but not found in Redis")
		}

		if retrievedJob.JobPayload.Question != testJob.JobPayload.Question {
			t.Errorf("Data mismatch! Got %s, want %s",
				retrievedJob.JobPayload.Question, testJob.JobPayload.Question)
		}
	})

	t.Run("Ingest fields survive the roundtrip", func(t *testing.T) {
		ingestJob := jobModel.Job{
			Id:      "ingest_1",
			JobType: jobModel.JobTypeIngest,
			JobPayload: jobModel.JobPayload{
				IngestFileName: "catalog.xlsx",
				Recreate:       true,
				IndexedCount:   42,
			},
		}
		if err := jobStore.SaveJob(ctx, ingestJob); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}

		got, found := jobStore.GetJob(ctx, "ingest_1")
		if !found {
			t.Fatal("Ingest job not found")
		}
		if !got.JobPayload.Recreate || got.JobPayload.IndexedCount != 42 {
			t.Errorf("Ingest payload mismatch: %+v", got.JobPayload)
		}
	})

	t.Run("Get Non-Existent Job", func(t *testing.T) {
		_, found := jobStore.GetJob(ctx, "ghost-id")
		if found {
			t.Error("Expected found=false for non-existent key")
		}
	})

	t.Run("Delete Job", func(t *testing.T) {
		jobStore.DeleteJob(ctx, jobID)

		if mr.Exists(jobID) {
			t.Error("Job still exists in Redis after DeleteJob call")
		}
	})
}

func TestRedisJobStore_Race(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	jobStore := store.TestJobStore(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "race-trace")
	job := jobModel.Job{Id: "race-job"}

	const workers = 50
	for i := 0; i < workers; i++ {
		go func() {
			_ = jobStore.SaveJob(ctx, job)
			_, _ = jobStore.GetJob(ctx, "race-job")
		}()
	}
}

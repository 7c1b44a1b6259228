package service_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"chartdesk/internal/domain"
	"chartdesk/internal/storage"
)

// RunJob re-runs the dataset's stored source config. For uploads that
// config points at the copy kept under the data directory, so growing
// that file and running the job must bump the row count. CreateJob
// rejects file sources, so the job is seeded through the store.
func TestRefreshService_RunJobReimports(t *testing.T) {
	db, auth, datasets, _, refresh, emitter := newTestStack(t)
	u, err := auth.Register("u@example.com", "password123")
	if err != nil {
		t.Fatal(err)
	}

	meta, err := datasets.CreateFromUpload(context.Background(), u.ID, "sales.csv",
		strings.NewReader("region,sales\nA,10\n"))
	if err != nil {
		t.Fatal(err)
	}
	if meta.RowCount != 1 {
		t.Fatalf("initial row count = %d, want 1", meta.RowCount)
	}

	stored := filepath.Join(db.DataDir(), "uploads", u.ID, meta.ID+".csv")
	if err := os.WriteFile(stored, []byte(salesCSV), 0644); err != nil {
		t.Fatal(err)
	}

	jobs := storage.NewRefreshJobStore(db)
	job := &domain.RefreshJob{ID: "job-1", OwnerID: u.ID, DatasetID: meta.ID, Schedule: "@hourly", Enabled: true}
	if err := jobs.CreateJob(job); err != nil {
		t.Fatal(err)
	}

	if err := refresh.RunJob(context.Background(), job.ID); err != nil {
		t.Fatalf("run job: %v", err)
	}

	got, err := datasets.Get(u.ID, meta.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.RowCount != 3 {
		t.Errorf("row count after refresh = %d, want 3", got.RowCount)
	}

	updated, err := jobs.GetJob(job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.LastRunAt.IsZero() {
		t.Error("last run timestamp not recorded")
	}
	if updated.LastError != "" {
		t.Errorf("last error = %q, want empty", updated.LastError)
	}

	if len(emitter.Events) == 0 || emitter.Events[len(emitter.Events)-1].Event != "refresh:completed" {
		t.Errorf("events = %v, want trailing refresh:completed", emitter.Events)
	}
}

func TestRefreshService_RunJobRecordsFailure(t *testing.T) {
	db, auth, datasets, _, refresh, emitter := newTestStack(t)
	u, err := auth.Register("u@example.com", "password123")
	if err != nil {
		t.Fatal(err)
	}

	meta, err := datasets.CreateFromUpload(context.Background(), u.ID, "sales.csv",
		strings.NewReader(salesCSV))
	if err != nil {
		t.Fatal(err)
	}

	// Remove the stored file so the reimport fails.
	stored := filepath.Join(db.DataDir(), "uploads", u.ID, meta.ID+".csv")
	if err := os.Remove(stored); err != nil {
		t.Fatal(err)
	}

	jobs := storage.NewRefreshJobStore(db)
	job := &domain.RefreshJob{ID: "job-2", OwnerID: u.ID, DatasetID: meta.ID, Schedule: "@hourly", Enabled: true}
	if err := jobs.CreateJob(job); err != nil {
		t.Fatal(err)
	}

	if err := refresh.RunJob(context.Background(), job.ID); err == nil {
		t.Fatal("expected run to fail")
	}

	updated, err := jobs.GetJob(job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.LastError == "" {
		t.Error("expected last error to be recorded")
	}

	if len(emitter.Events) == 0 || emitter.Events[len(emitter.Events)-1].Event != "refresh:failed" {
		t.Errorf("events = %v, want trailing refresh:failed", emitter.Events)
	}
}

// Job CRUD handlers rebuild the scheduler from concurrent requests, so
// overlapping restarts must not race on the cron instance. Run with
// -race to catch regressions.
func TestRefreshService_ConcurrentSchedulerRestart(t *testing.T) {
	db, auth, datasets, _, refresh, _ := newTestStack(t)
	u, err := auth.Register("u@example.com", "password123")
	if err != nil {
		t.Fatal(err)
	}
	meta, err := datasets.CreateFromUpload(context.Background(), u.ID, "sales.csv",
		strings.NewReader(salesCSV))
	if err != nil {
		t.Fatal(err)
	}

	jobs := storage.NewRefreshJobStore(db)
	job := &domain.RefreshJob{ID: "job-3", OwnerID: u.ID, DatasetID: meta.ID, Schedule: "@hourly", Enabled: true}
	if err := jobs.CreateJob(job); err != nil {
		t.Fatal(err)
	}

	refresh.Start(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			refresh.RestartScheduler()
		}()
	}
	wg.Wait()

	refresh.Stop()
}

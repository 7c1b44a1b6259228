package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"chartdesk/internal/service"
	"chartdesk/internal/storage"
)

// newTestStack builds the full service stack over a throwaway SQLite db.
func newTestStack(t *testing.T) (*storage.DB, *service.AuthService, *service.DatasetService, *service.ChartService, *service.RefreshService, *service.MockEmitter) {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "test.db"), filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := storage.NewUserStore(db)
	datasets := storage.NewDatasetStore(db)
	charts := storage.NewChartStore(db)
	jobs := storage.NewRefreshJobStore(db)

	emitter := &service.MockEmitter{}
	auth := service.NewAuthService(users, []byte("test-secret"))
	datasetSvc := service.NewDatasetService(datasets, charts, jobs, db.DataDir())
	chartSvc := service.NewChartService(datasetSvc, charts)
	refreshSvc := service.NewRefreshService(jobs, datasetSvc, emitter)

	return db, auth, datasetSvc, chartSvc, refreshSvc, emitter
}

// ─────────────────────────────────────────────────────────────
// runningJobsGuard tests
// ─────────────────────────────────────────────────────────────

func TestRunningGuard_TryLock(t *testing.T) {
	var g service.ExportedRunningGuard

	if !g.TryLock("ds-1") {
		t.Fatal("expected first TryLock to succeed")
	}
	if g.TryLock("ds-1") {
		t.Fatal("expected second TryLock for same id to fail")
	}
	if !g.TryLock("ds-2") {
		t.Fatal("expected TryLock for different id to succeed")
	}
	g.Unlock("ds-1")
	g.Unlock("ds-2")

	if !g.TryLock("ds-1") {
		t.Fatal("expected TryLock to succeed after unlock")
	}
	g.Unlock("ds-1")
}

func TestRunningGuard_WaitAll(t *testing.T) {
	var g service.ExportedRunningGuard

	if !g.TryLock("ds-a") {
		t.Fatal("expected lock to succeed")
	}

	done := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		g.WaitAll(ctx)
		close(done)
	}()

	go func() {
		time.Sleep(20 * time.Millisecond)
		g.Unlock("ds-a")
	}()

	select {
	case <-done:
		// success
	case <-time.After(1 * time.Second):
		t.Fatal("WaitAll timed out")
	}
}

// ─────────────────────────────────────────────────────────────
// MockEmitter tests
// ─────────────────────────────────────────────────────────────

func TestMockEmitter_RecordsEvents(t *testing.T) {
	m := &service.MockEmitter{}
	ctx := context.Background()

	m.Emit(ctx, "refresh:completed", "job-1")
	m.Emit(ctx, "inbox:imported", nil)

	if len(m.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(m.Events))
	}
	if m.Events[0].Event != "refresh:completed" {
		t.Errorf("expected 'refresh:completed', got %q", m.Events[0].Event)
	}
}

package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"chartdesk/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Refresh Service — scheduled re-imports and the inbox watcher
// ─────────────────────────────────────────────────────────────

// RefreshService re-runs dataset imports on cron schedules and watches
// an inbox directory for dropped spreadsheet files.
type RefreshService struct {
	store       domain.RefreshJobStore
	datasets    *DatasetService
	emitter     EventEmitter
	runningJobs runningJobsGuard

	// watcher / cron lifecycle. mu guards the fields below: job CRUD
	// handlers restart the scheduler from concurrent requests.
	mu          sync.Mutex
	baseCtx     context.Context
	watchCancel context.CancelFunc
	watcher     *fsnotify.Watcher
	cronSched   *cron.Cron
}

func NewRefreshService(store domain.RefreshJobStore, datasets *DatasetService, emitter EventEmitter) *RefreshService {
	return &RefreshService{store: store, datasets: datasets, emitter: emitter}
}

// ── Job CRUD ───────────────────────────────────────────────

// CreateJob schedules a refresh for a dataset. Only datasets imported
// from a refreshable source can be scheduled; uploads have no source to
// re-run.
func (s *RefreshService) CreateJob(ownerID, datasetID, schedule string) (*domain.RefreshJob, error) {
	meta, err := s.datasets.Get(ownerID, datasetID)
	if err != nil {
		return nil, err
	}
	if meta.SourceType != "database" && meta.SourceType != "mongo" {
		return nil, fmt.Errorf("dataset source %q is not refreshable", meta.SourceType)
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	j := &domain.RefreshJob{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		DatasetID: datasetID,
		Schedule:  schedule,
		Enabled:   true,
	}
	if err := s.store.CreateJob(j); err != nil {
		return nil, fmt.Errorf("create refresh job: %w", err)
	}
	return j, nil
}

func (s *RefreshService) ListJobs(ownerID string) ([]domain.RefreshJob, error) {
	return s.store.ListJobs(ownerID)
}

func (s *RefreshService) SetEnabled(ownerID, jobID string, enabled bool) error {
	if _, err := s.getOwned(ownerID, jobID); err != nil {
		return err
	}
	return s.store.SetJobEnabled(jobID, enabled)
}

func (s *RefreshService) DeleteJob(ownerID, jobID string) error {
	if _, err := s.getOwned(ownerID, jobID); err != nil {
		return err
	}
	return s.store.DeleteJob(jobID)
}

func (s *RefreshService) getOwned(ownerID, jobID string) (*domain.RefreshJob, error) {
	j, err := s.store.GetJob(jobID)
	if err != nil {
		return nil, err
	}
	if j.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	return j, nil
}

// ── Execution ──────────────────────────────────────────────

// RunJob re-imports the job's dataset. Concurrent runs for the same
// dataset are rejected, not queued.
func (s *RefreshService) RunJob(ctx context.Context, jobID string) error {
	j, err := s.store.GetJob(jobID)
	if err != nil {
		return err
	}

	if !s.runningJobs.TryLock(j.DatasetID) {
		return fmt.Errorf("dataset %s is already refreshing", j.DatasetID)
	}
	defer s.runningJobs.Unlock(j.DatasetID)

	runErr := s.datasets.Reimport(ctx, j.DatasetID)

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
	}
	if err := s.store.MarkJobRun(jobID, time.Now(), errMsg); err != nil {
		log.Printf("refresh: mark run failed for job %s: %v", jobID, err)
	}

	if runErr != nil {
		s.emitter.Emit(ctx, "refresh:failed", jobID)
		return runErr
	}
	s.emitter.Emit(ctx, "refresh:completed", jobID)
	return nil
}

// Start pins the lifecycle context used for cron-fired runs and builds
// the initial schedule. Called once at startup, before the HTTP server
// begins serving.
func (s *RefreshService) Start(ctx context.Context) {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()
	s.RestartScheduler()
}

// RestartScheduler tears down the current cron and rebuilds it from the
// enabled jobs. Called at startup and after job CRUD; safe for
// concurrent use.
func (s *RefreshService) RestartScheduler() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := s.baseCtx
	if ctx == nil {
		ctx = context.Background()
	}

	if s.cronSched != nil {
		s.cronSched.Stop()
		s.cronSched = nil
	}

	jobs, err := s.store.ListEnabledJobs()
	if err != nil {
		log.Printf("refresh: failed to list jobs: %v", err)
		return
	}
	if len(jobs) == 0 {
		return
	}

	c := cron.New()
	for _, j := range jobs {
		jid := j.ID
		_, err := c.AddFunc(j.Schedule, func() {
			log.Printf("refresh cron: running job %s", jid)
			if err := s.RunJob(ctx, jid); err != nil {
				log.Printf("refresh cron: job %s failed: %v", jid, err)
			}
		})
		if err != nil {
			log.Printf("refresh cron: invalid expression %q for job %s: %v", j.Schedule, j.ID, err)
		}
	}
	c.Start()
	s.cronSched = c
	log.Printf("refresh cron: scheduled %d job(s)", len(jobs))
}

// ── Inbox watcher ──────────────────────────────────────────

// WatchInbox auto-imports spreadsheet files dropped into dir, creating
// datasets owned by ownerID. Writes are debounced so half-copied files
// are not decoded.
func (s *RefreshService) WatchInbox(ctx context.Context, dir, ownerID string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create inbox dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.watcher = watcher
	s.watchCancel = cancel
	s.mu.Unlock()

	go func() {
		timers := make(map[string]*time.Timer)
		for {
			select {
			case <-watchCtx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				path := event.Name
				if _, err := sourceTypeForFile(path); err != nil {
					continue
				}
				if t, exists := timers[path]; exists {
					t.Stop()
				}
				timers[path] = time.AfterFunc(500*time.Millisecond, func() {
					s.importInboxFile(ctx, path, ownerID)
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("inbox watcher: error: %v", err)
			}
		}
	}()

	log.Printf("inbox watcher: watching %s", dir)
	return nil
}

func (s *RefreshService) importInboxFile(ctx context.Context, path, ownerID string) {
	if !s.runningJobs.TryLock(path) {
		return
	}
	defer s.runningJobs.Unlock(path)

	f, err := os.Open(path)
	if err != nil {
		log.Printf("inbox watcher: open %s: %v", path, err)
		return
	}
	defer f.Close()

	meta, err := s.datasets.CreateFromUpload(ctx, ownerID, filepath.Base(path), f)
	if err != nil {
		log.Printf("inbox watcher: import %s: %v", path, err)
		return
	}
	log.Printf("inbox watcher: imported %s as dataset %s (%d rows)", filepath.Base(path), meta.ID, meta.RowCount)
	s.emitter.Emit(ctx, "inbox:imported", meta.ID)
}

// ── Lifecycle ──────────────────────────────────────────────

// WaitRunning blocks until running refreshes finish or ctx is cancelled.
// Used for graceful shutdown.
func (s *RefreshService) WaitRunning(ctx context.Context) {
	s.runningJobs.WaitAll(ctx)
}

// Stop tears down the watcher and the scheduler.
func (s *RefreshService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}
	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}
	if s.cronSched != nil {
		s.cronSched.Stop()
		s.cronSched = nil
	}
}

package jobs

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/stitch/cms/internal/model"
	"github.com/stitch/cms/internal/service"
)

// ErrorCleanupJob periodically purges resolved error records older than
// the configured retention window, recording each run in the cleanup log.
type ErrorCleanupJob struct {
	errorService *service.ErrorTrackingService
	interval     time.Duration
	stopCh       chan struct{}
	wg           sync.WaitGroup
	running      bool
	mu           sync.Mutex
}

// NewErrorCleanupJob creates a new error cleanup job
func NewErrorCleanupJob(errorService *service.ErrorTrackingService, interval time.Duration) *ErrorCleanupJob {
	if interval == 0 {
		interval = 24 * time.Hour // Default run daily
	}
	return &ErrorCleanupJob{
		errorService: errorService,
		interval:     interval,
		stopCh:       make(chan struct{}),
	}
}

// Start begins the error cleanup job
func (j *ErrorCleanupJob) Start() {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return
	}
	j.running = true
	j.mu.Unlock()

	j.wg.Add(1)
	go j.run()
	log.Printf("Error cleanup job started (interval: %v)", j.interval)
}

// Stop gracefully stops the error cleanup job
func (j *ErrorCleanupJob) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	j.running = false
	j.mu.Unlock()

	close(j.stopCh)
	j.wg.Wait()
	log.Println("Error cleanup job stopped")
}

// run is the main loop
func (j *ErrorCleanupJob) run() {
	defer j.wg.Done()

	// Run immediately on start (but with a short delay to let services initialize)
	time.Sleep(10 * time.Second)
	j.cleanup()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.cleanup()
		case <-j.stopCh:
			return
		}
	}
}

func (j *ErrorCleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := j.RunOnce(ctx); err != nil {
		log.Printf("Error cleanup run failed: %v", err)
	}
}

// RunOnce runs the cleanup once (for testing or manual trigger)
func (j *ErrorCleanupJob) RunOnce(ctx context.Context) error {
	cleanupLog, err := j.errorService.Cleanup(ctx, model.CleanupTypeScheduled)
	if err != nil {
		return err
	}

	log.Printf("Error cleanup purged %d records", cleanupLog.RecordsAffected)
	return nil
}

// IsRunning returns whether the job is running
func (j *ErrorCleanupJob) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}

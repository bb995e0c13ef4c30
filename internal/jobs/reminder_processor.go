package jobs

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/stitch/cms/internal/service"
)

// ReminderProcessor runs scheduled event reminder dispatch.
// Every cycle it scans upcoming events that have reminders enabled and,
// when the days-to-event matches one of the event's configured offsets,
// sends reminder emails to all non-declined RSVPs.
type ReminderProcessor struct {
	eventService        *service.EventService
	notificationService *service.NotificationService
	interval            time.Duration
	stopCh              chan struct{}
	wg                  sync.WaitGroup
	running             bool
	mu                  sync.Mutex
}

// NewReminderProcessor creates a new reminder processor job
func NewReminderProcessor(eventService *service.EventService, notificationService *service.NotificationService, interval time.Duration) *ReminderProcessor {
	if interval == 0 {
		interval = 1 * time.Hour // Default check every hour
	}
	return &ReminderProcessor{
		eventService:        eventService,
		notificationService: notificationService,
		interval:            interval,
		stopCh:              make(chan struct{}),
	}
}

// Start begins the reminder processor job
func (p *ReminderProcessor) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run()
	log.Printf("Reminder processor started (interval: %v)", p.interval)
}

// Stop gracefully stops the reminder processor job
func (p *ReminderProcessor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopCh)
	p.wg.Wait()
	log.Println("Reminder processor stopped")
}

// run is the main loop
func (p *ReminderProcessor) run() {
	defer p.wg.Done()

	// Run immediately on start (but with a short delay to let services initialize)
	time.Sleep(5 * time.Second)
	p.processReminders()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.processReminders()
		case <-p.stopCh:
			return
		}
	}
}

func (p *ReminderProcessor) processReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := p.RunOnce(ctx); err != nil {
		log.Printf("Error processing reminders: %v", err)
	}
}

// RunOnce runs reminder dispatch once (for testing or manual trigger)
func (p *ReminderProcessor) RunOnce(ctx context.Context) error {
	if !p.notificationService.IsEnabled() {
		return nil
	}

	events, err := p.eventService.UpcomingWithReminders(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, event := range events {
		daysToGo := int(event.StartDate.Sub(now).Hours() / 24)
		if !reminderDue(event.ReminderDaysBefore, daysToGo) {
			continue
		}

		result, err := p.notificationService.SendEventReminders(ctx, event.ID)
		if err != nil {
			log.Printf("Reminder run for event %s failed: %v", event.ID, err)
			continue
		}
		log.Printf("Reminders for event %s: sent=%d failed=%d skipped=%d",
			event.ID, result.Sent, result.Failed, result.Skipped)
	}

	return nil
}

// reminderDue reports whether daysToGo matches a configured offset
func reminderDue(offsets []int, daysToGo int) bool {
	for _, offset := range offsets {
		if offset == daysToGo {
			return true
		}
	}
	return false
}

// IsRunning returns whether the processor is running
func (p *ReminderProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Package jobs implements background job processing for the Stitch CMS API.
//
// The jobs package contains scheduled tasks that run independently of HTTP
// request handling.
//
// # Job Types
//
// Available background jobs:
//
//   - ReminderProcessor: Sends event reminder emails on the configured schedule
//   - ErrorCleanupJob: Purges resolved error records past the retention window
//
// # Lifecycle
//
// Jobs run on a ticker and are started and stopped from main:
//
//	processor := jobs.NewReminderProcessor(eventService, notificationService, interval)
//	processor.Start()
//	defer processor.Stop()
//
// # Error Handling
//
// Jobs log errors but don't crash the application. A failed sweep is retried
// on the next tick.
package jobs

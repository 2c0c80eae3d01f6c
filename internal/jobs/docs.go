// Package jobs provides scheduled background tasks for the order service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations of the order lifecycle.
//
// # Available Jobs
//
// 1. AssignmentSweepJob - Runs every second to open confirmed orders for courier assignment
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(startAssignmentHandler, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Scheduling
//
// The sweep uses the cron expression "* * * * * *" which means it runs every
// second, keeping the window between payment confirmation and courier
// assignment short.
//
// # Error Handling
//
// A sweep that promotes zero orders is normal and logs nothing. Any other
// failure is logged and the next tick retries from scratch.
package jobs

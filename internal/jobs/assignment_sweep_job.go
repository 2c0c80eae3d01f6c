package jobs

import (
	"context"
	"log/slog"

	"orderflow/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// AssignmentSweepJob periodically promotes confirmed orders to assigning
// so courier assignment can see them. Runs every second.
type AssignmentSweepJob struct {
	handler commands.StartAssignmentCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewAssignmentSweepJob creates the sweep job over the start assignment handler.
func NewAssignmentSweepJob(handler commands.StartAssignmentCommandHandler, logger *slog.Logger) *AssignmentSweepJob {
	return &AssignmentSweepJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "assignment_sweep_job"),
	}
}

// Start begins the sweep on a one second schedule.
func (j *AssignmentSweepJob) Start() error {
	_, err := j.cron.AddFunc("* * * * * *", func() {
		ctx := context.Background()
		cmd, err := commands.NewStartAssignmentCommand()
		if err != nil {
			j.logger.ErrorContext(ctx, "Assignment sweep failed", "error", err)
			return
		}

		promoted, err := j.handler.Handle(ctx, cmd)
		if err != nil {
			j.logger.ErrorContext(ctx, "Assignment sweep failed", "error", err)
			return
		}
		if promoted > 0 {
			j.logger.InfoContext(ctx, "Orders opened for assignment", "count", promoted)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Assignment sweep job started (running every second)")
	return nil
}

// Stop stops the sweep job.
func (j *AssignmentSweepJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Assignment sweep job stopped")
}

// Package ingestion implements the periodic re-ingestion pipeline (§1's
// non-goal "a function that yields a SchedulingEnvironment is assumed to
// exist upstream" — this package is the concrete, peripheral shape of that
// function): an Asynq-scheduled task fetches a fresh Scheduling Environment
// snapshot from an external source, validates it, and hands it to the
// orchestrator's Reconfigure path.
package ingestion

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/ordinator/ordinator/internal/schedenv"
)

// TypeReingest is the Asynq task type for a full environment refresh.
const TypeReingest = "environment:reingest"

// Source produces a fresh Scheduling Environment snapshot from whatever
// upstream feed the deployment is wired to (an ERP export, a CSV drop, a
// message bus) — deliberately out of scope here, per §1's non-goals.
type Source interface {
	Fetch(ctx context.Context) (schedenv.Snapshot, error)
}

// Scheduler enqueues one-off re-ingestion tasks onto Asynq; it registers no
// periodic schedule.
type Scheduler struct {
	client *asynq.Client
}

// NewScheduler connects to Redis and returns a Scheduler.
func NewScheduler(redisAddr string) (*Scheduler, error) {
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	if err := client.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &Scheduler{client: client}, nil
}

// EnqueueReingest schedules an immediate one-off re-ingestion run.
func (s *Scheduler) EnqueueReingest(ctx context.Context) (*asynq.TaskInfo, error) {
	task := asynq.NewTask(TypeReingest, nil)
	info, err := s.client.EnqueueContext(ctx, task, asynq.MaxRetry(2))
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue reingest task: %w", err)
	}
	return info, nil
}

// Close releases the underlying Redis connection.
func (s *Scheduler) Close() error {
	return s.client.Close()
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/harry7799/heng-studio/internal/logging"
)

// Snapshotter takes an out-of-band backup of a store.
type Snapshotter interface {
	Snapshot(ctx context.Context) error
}

// SnapshotScheduler runs periodic store snapshots on a cron schedule with a
// leading seconds field, e.g. "0 0 3 * * *" for 03:00 daily.
type SnapshotScheduler struct {
	cron    *cron.Cron
	store   Snapshotter
	timeout time.Duration
}

func NewSnapshotScheduler(store Snapshotter, schedule string) (*SnapshotScheduler, error) {
	s := &SnapshotScheduler{
		cron:    cron.New(cron.WithSeconds()),
		store:   store,
		timeout: 30 * time.Second,
	}
	if _, err := s.cron.AddFunc(schedule, s.RunOnce); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *SnapshotScheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running snapshot to finish.
func (s *SnapshotScheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *SnapshotScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	logger := logging.NewLogger(logging.WithRequestID(ctx, "snapshot"))
	if err := s.store.Snapshot(ctx); err != nil {
		logger.LogError("snapshot", err)
		return
	}
	logger.LogInfof("snapshot", "completed")
}

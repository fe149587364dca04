package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/GTDGit/gtd_catalog/internal/utils"
)

const runLockKey = "populate:lock"

// RunLock guarantees at most one populate run at a time across instances.
// The TTL bounds how long a crashed holder blocks new runs.
type RunLock struct {
	kv  KV
	ttl time.Duration
}

// NewRunLock creates a new RunLock.
func NewRunLock(kv KV, ttl time.Duration) *RunLock {
	return &RunLock{kv: kv, ttl: ttl}
}

// Acquire takes the lock for runID. It returns utils.ErrRunInProgress when
// another run holds it, an error wrapping utils.ErrLockUnavailable when the
// store cannot be reached, and a release func otherwise.
func (l *RunLock) Acquire(ctx context.Context, runID string) (func(context.Context) error, error) {
	ok, err := l.kv.SetNX(ctx, runLockKey, runID, l.ttl)
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w: %w", utils.ErrLockUnavailable, err)
	}
	if !ok {
		return nil, utils.ErrRunInProgress
	}
	return func(ctx context.Context) error {
		if _, err := l.kv.DeleteIfValue(ctx, runLockKey, runID); err != nil {
			return fmt.Errorf("release run lock: %w", err)
		}
		return nil
	}, nil
}

// Package notify delivers the "manager notified" signal raised when a task
// gets blocked. Delivery is best-effort.
package notify

//go:generate mockery --case underscore --output notifymock --outpkg notifymock --name Notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/obrahub/obra/internal/log"
)

// TaskBlocked is the notification sent to the project manager when a task
// enters the blocked status.
type TaskBlocked struct {
	TaskID    string    `json:"taskId"`
	TaskTitle string    `json:"taskTitle"`
	Executor  string    `json:"executor"`
	Reason    string    `json:"reason"`
	BlockedBy string    `json:"blockedBy"`
	At        time.Time `json:"at"`
}

// Notifier sends manager notifications.
type Notifier interface {
	NotifyTaskBlocked(ctx context.Context, n TaskBlocked) error
}

// Noop notifier doesn't notify anything.
const Noop = noop(0)

type noop int

func (noop) NotifyTaskBlocked(context.Context, TaskBlocked) error { return nil }

// LogNotifierConfig is the configuration of the log notifier.
type LogNotifierConfig struct {
	Logger log.Logger
}

func (c *LogNotifierConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "notify.Log"})
	return nil
}

// LogNotifier notifies by logging a warning, the operator is the manager.
type LogNotifier struct {
	logger log.Logger
}

// NewLogNotifier returns a new log notifier.
func NewLogNotifier(cfg LogNotifierConfig) (*LogNotifier, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &LogNotifier{logger: cfg.Logger}, nil
}

func (l *LogNotifier) NotifyTaskBlocked(ctx context.Context, n TaskBlocked) error {
	l.logger.WithCtxValues(ctx).WithValues(log.Kv{"task-id": n.TaskID}).
		Warningf("Manager notified: task %q blocked by %s: %s", n.TaskTitle, n.BlockedBy, n.Reason)
	return nil
}

// Multi fans out a notification to all the notifiers, every notifier is tried
// and the first error is returned.
func Multi(ns ...Notifier) Notifier { return multi(ns) }

type multi []Notifier

func (m multi) NotifyTaskBlocked(ctx context.Context, n TaskBlocked) error {
	var firstErr error
	for _, nt := range m {
		if err := nt.NotifyTaskBlocked(ctx, n); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

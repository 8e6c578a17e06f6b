package framework

import (
	"context"
	"fmt"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// Priority is the static priority of a task. Higher values preempt lower
// ones. Zero is reserved for idle.
type Priority int

// PriorityLevels is the number of usable priorities.
const PriorityLevels = 16

// PrIdle is the priority of code outside any task.
const PrIdle Priority = 0

// IsValid checks the priority is within range.
func (p Priority) IsValid() bool {
	return p >= PrIdle && p < PriorityLevels
}

func (p Priority) String() string {
	return fmt.Sprintf("P%d", int(p))
}

// Task is the context of a running task invocation.
type Task struct {
	name      string
	priority  Priority
	ctx       context.Context
	scheduled time.Time
}

// NewTask creates a task context. The scheduler creates one per
// registered task; callers outside the scheduler use it to run task
// bodies directly, e.g. at boot before dispatching starts.
func NewTask(ctx context.Context, name string, priority Priority) *Task {
	if !priority.IsValid() {
		Violate("task %q: invalid priority %d", name, priority)
	}
	return &Task{name: name, priority: priority, ctx: ctx}
}

// Name implements Named.
func (t *Task) Name() string { return t.name }

// Priority returns the static priority.
func (t *Task) Priority() Priority { return t.priority }

// Context returns the context of the dispatcher.
func (t *Task) Context() context.Context { return t.ctx }

// Scheduled is the time the current invocation was scheduled for.
// It is only meaningful for periodic tasks.
func (t *Task) Scheduled() time.Time { return t.scheduled }

// TaskFunc is the body of an interrupt or periodic task.
type TaskFunc func(*Task)

// MessageFunc is the body of a queued task.
type MessageFunc func(*Task, interface{})

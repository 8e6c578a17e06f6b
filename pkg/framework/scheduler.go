package framework

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
)

// Scheduler dispatches a fixed set of tasks, each with a static priority.
//
// Every task runs on its own goroutine so a ready task of higher priority
// never waits for a lower one to finish; the only exclusion between
// priorities comes from Resource critical sections. Invocations of tasks
// at the same priority run to completion without interleaving.
type Scheduler struct {
	runners []Runnable
	levels  [PriorityLevels]sync.Mutex
}

// NewScheduler creates an empty Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Interrupt registers a task invoked once per signal on line.
func (s *Scheduler) Interrupt(name string, priority Priority, line <-chan struct{}, fn TaskFunc) {
	s.add(name, priority)
	s.runners = append(s.runners, &interruptTask{s: s, name: name, priority: priority, line: line, fn: fn})
}

// Periodic registers a task invoked every period. Each invocation is
// scheduled relative to the previous scheduled time, not to the time it
// actually ran, so jitter does not accumulate into drift.
func (s *Scheduler) Periodic(name string, priority Priority, period time.Duration, fn TaskFunc) {
	if period <= 0 {
		Violate("periodic task %q: non-positive period %v", name, period)
	}
	s.add(name, priority)
	s.runners = append(s.runners, &periodicTask{s: s, name: name, priority: priority, period: period, fn: fn})
}

// Queued registers a task invoked once per spawned message, in spawn
// order. At most capacity messages may be pending.
func (s *Scheduler) Queued(name string, priority Priority, capacity int, fn MessageFunc) *QueuedTask {
	if capacity <= 0 {
		Violate("queued task %q: non-positive capacity %d", name, capacity)
	}
	s.add(name, priority)
	q := &QueuedTask{s: s, name: name, priority: priority, queue: make(chan interface{}, capacity), fn: fn}
	s.runners = append(s.runners, q)
	return q
}

// Add adds auxiliary Runnables (e.g. device readers) started with the tasks.
func (s *Scheduler) Add(runnables ...Runnable) *Scheduler {
	s.runners = append(s.runners, runnables...)
	return s
}

// Run starts all tasks and blocks until ctx is done or a runner fails.
func (s *Scheduler) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	runners := make([]Runnable, 0, len(s.runners))
	for _, r := range s.runners {
		runners = append(runners, cancelOnExit(r, cancel))
	}
	return NewRunnerWith(ctx).Go(runners...).Wait()
}

func (s *Scheduler) add(name string, priority Priority) {
	if !priority.IsValid() || priority == PrIdle {
		Violate("task %q: invalid priority %d", name, priority)
	}
	glog.V(2).Infof("task %s registered at %v", name, priority)
}

func (s *Scheduler) dispatch(t *Task, fn func()) {
	level := &s.levels[t.priority]
	level.Lock()
	defer level.Unlock()
	fn()
}

func cancelOnExit(r Runnable, cancel func()) Runnable {
	name := "runner"
	if named, ok := r.(Named); ok {
		name = named.Name()
	}
	return NamedRun(name, RunFunc(func(ctx context.Context) error {
		defer cancel()
		return r.Run(ctx)
	}))
}

type interruptTask struct {
	s        *Scheduler
	name     string
	priority Priority
	line     <-chan struct{}
	fn       TaskFunc
}

func (it *interruptTask) Name() string { return it.name }

func (it *interruptTask) Run(ctx context.Context) error {
	t := NewTask(ctx, it.name, it.priority)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-it.line:
			it.s.dispatch(t, func() { it.fn(t) })
		}
	}
}

type periodicTask struct {
	s        *Scheduler
	name     string
	priority Priority
	period   time.Duration
	fn       TaskFunc
}

func (pt *periodicTask) Name() string { return pt.name }

func (pt *periodicTask) Run(ctx context.Context) error {
	t := NewTask(ctx, pt.name, pt.priority)
	next := time.Now()
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		t.scheduled = next
		pt.s.dispatch(t, func() { pt.fn(t) })
		next = next.Add(pt.period)
		timer.Reset(time.Until(next))
	}
}

// QueuedTask is a task driven by a bounded message queue.
type QueuedTask struct {
	s        *Scheduler
	name     string
	priority Priority
	queue    chan interface{}
	fn       MessageFunc
}

// Name implements Named.
func (q *QueuedTask) Name() string { return q.name }

// Spawn enqueues a message without blocking. It returns ErrQueueFull and
// drops the message when the queue has no room.
func (q *QueuedTask) Spawn(msg interface{}) error {
	select {
	case q.queue <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Len returns the number of pending messages.
func (q *QueuedTask) Len() int {
	return len(q.queue)
}

// Step dispatches one pending message on the caller's goroutine. It
// returns false when nothing was pending.
func (q *QueuedTask) Step(ctx context.Context) bool {
	select {
	case msg := <-q.queue:
		t := NewTask(ctx, q.name, q.priority)
		q.s.dispatch(t, func() { q.fn(t, msg) })
		return true
	default:
		return false
	}
}

// Run implements Runnable.
func (q *QueuedTask) Run(ctx context.Context) error {
	t := NewTask(ctx, q.name, q.priority)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-q.queue:
			q.s.dispatch(t, func() { q.fn(t, msg) })
		}
	}
}

package framework

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func requireViolation(t *testing.T, fn func()) {
	defer func() {
		r := recover()
		require.NotNil(t, r, "expect panic")
		_, ok := r.(*InvariantViolation)
		require.True(t, ok, "expect InvariantViolation, got %v", r)
	}()
	fn()
}

func TestResourceCeiling(t *testing.T) {
	r := NewResource("res", 1, 3)
	require.Equal(t, Priority(3), r.Ceiling())
	require.True(t, r.IsUser(1))
	require.False(t, r.IsUser(2))
	require.True(t, r.IsUser(3))

	var called bool
	r.Lock(NewTask(context.TODO(), "t1", 1), func() { called = true })
	require.True(t, called)

	requireViolation(t, func() {
		r.Lock(NewTask(context.TODO(), "t2", 2), func() {})
	})
}

func TestResourceInvalidUser(t *testing.T) {
	requireViolation(t, func() { NewResource("res", PrIdle) })
	requireViolation(t, func() { NewResource("res", PriorityLevels) })
}

func TestResourceExclusion(t *testing.T) {
	r := NewResource("counter", 1, 2)
	var inside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(p Priority) {
			defer wg.Done()
			task := NewTask(context.TODO(), "worker", p)
			for n := 0; n < 100; n++ {
				r.Lock(task, func() {
					require.Equal(t, int32(1), atomic.AddInt32(&inside, 1))
					atomic.AddInt32(&inside, -1)
				})
			}
		}(Priority(i%2 + 1))
	}
	wg.Wait()
}

func TestQueuedTaskOrderAndCapacity(t *testing.T) {
	s := NewScheduler()
	var got []interface{}
	q := s.Queued("q", 1, 2, func(task *Task, msg interface{}) {
		require.Equal(t, Priority(1), task.Priority())
		got = append(got, msg)
	})
	require.NoError(t, q.Spawn("a"))
	require.NoError(t, q.Spawn("b"))
	require.Equal(t, ErrQueueFull, q.Spawn("c"))
	require.Equal(t, 2, q.Len())

	require.True(t, q.Step(context.TODO()))
	require.True(t, q.Step(context.TODO()))
	require.False(t, q.Step(context.TODO()))
	require.Equal(t, []interface{}{"a", "b"}, got)
}

func TestSchedulerInterrupt(t *testing.T) {
	s := NewScheduler()
	line := make(chan struct{}, 4)
	done := make(chan int, 4)
	var count int
	s.Interrupt("irq", 3, line, func(task *Task) {
		count++
		done <- count
	})
	ctx, cancel := context.WithCancel(context.TODO())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	for i := 1; i <= 3; i++ {
		line <- struct{}{}
		select {
		case n := <-done:
			require.Equal(t, i, n)
		case <-time.After(time.Second):
			t.Fatal("interrupt not dispatched")
		}
	}
	cancel()
	require.NoError(t, <-errCh)
}

func TestSchedulerPeriodicNoDrift(t *testing.T) {
	s := NewScheduler()
	const period = 2 * time.Millisecond
	schedCh := make(chan time.Time, 16)
	s.Periodic("tick", 2, period, func(task *Task) {
		select {
		case schedCh <- task.Scheduled():
		default:
		}
		// jitter inside the task body must not shift later invocations
		time.Sleep(time.Millisecond / 2)
	})
	ctx, cancel := context.WithCancel(context.TODO())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	var times []time.Time
	for len(times) < 5 {
		select {
		case ts := <-schedCh:
			times = append(times, ts)
		case <-time.After(time.Second):
			t.Fatal("periodic task not dispatched")
		}
	}
	cancel()
	require.NoError(t, <-errCh)
	for i := 1; i < len(times); i++ {
		require.Equal(t, period, times[i].Sub(times[i-1]))
	}
}

func TestSchedulerSamePriorityNoInterleave(t *testing.T) {
	s := NewScheduler()
	const rounds = 50
	var inside, overlaps, finished int32
	doneCh := make(chan struct{})
	body := func() {
		if atomic.AddInt32(&inside, 1) > 1 {
			atomic.AddInt32(&overlaps, 1)
		}
		time.Sleep(100 * time.Microsecond)
		atomic.AddInt32(&inside, -1)
		if atomic.AddInt32(&finished, 1) == 2*rounds {
			close(doneCh)
		}
	}
	lineA, lineB := make(chan struct{}, rounds), make(chan struct{}, rounds)
	s.Interrupt("a", 2, lineA, func(*Task) { body() })
	s.Interrupt("b", 2, lineB, func(*Task) { body() })
	for i := 0; i < rounds; i++ {
		lineA <- struct{}{}
		lineB <- struct{}{}
	}
	ctx, cancel := context.WithCancel(context.TODO())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()
	select {
	case <-doneCh:
	case <-time.After(5 * time.Second):
		t.Fatal("interrupts not dispatched")
	}
	cancel()
	require.NoError(t, <-errCh)
	require.Zero(t, atomic.LoadInt32(&overlaps))
}

func TestSchedulerInvalidRegistration(t *testing.T) {
	s := NewScheduler()
	requireViolation(t, func() { s.Periodic("p", 1, 0, func(*Task) {}) })
	requireViolation(t, func() { s.Queued("q", 1, 0, func(*Task, interface{}) {}) })
	requireViolation(t, func() { s.Interrupt("i", PrIdle, nil, func(*Task) {}) })
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil).Aggregate())
	e1 := errors.New("e1")
	require.Equal(t, e1, errs.Add(e1).Aggregate())
	errs.Add(errors.New("e2"))
	require.Equal(t, "Multiple errors:\ne1\ne2", errs.Aggregate().Error())
}

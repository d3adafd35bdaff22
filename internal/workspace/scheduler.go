package workspace

import (
	"container/heap"
	"sync"
	"time"

	"github.com/lalith-99/huddle/internal/clock"
)

// scheduler runs deferred standup flushes.
//
// Pending flushes sit in a min-heap ordered by fire time, and a single
// clock timer is armed for the heap head. Each firing pops every entry
// that is due by then and re-arms for the new head, so an early timer
// (wall clock behind the deadline) just arms again. run is called
// outside the scheduler's lock and takes the engine lock itself.
type scheduler struct {
	mu      sync.Mutex
	clock   clock.Clock
	queue   flushQueue
	run     func(channelID int)
	timer   *clock.Timer
	armedAt time.Time
	closed  bool
}

type flushTask struct {
	at        time.Time
	channelID int
}

type flushQueue []flushTask

func (q flushQueue) Len() int { return len(q) }

func (q flushQueue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].channelID < q[j].channelID
	}
	return q[i].at.Before(q[j].at)
}

func (q flushQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *flushQueue) Push(x any) { *q = append(*q, x.(flushTask)) }

func (q *flushQueue) Pop() any {
	old := *q
	n := len(old)
	task := old[n-1]
	*q = old[:n-1]
	return task
}

func newScheduler(c clock.Clock, run func(channelID int)) *scheduler {
	return &scheduler{clock: c, run: run}
}

func (s *scheduler) schedule(at time.Time, channelID int) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	heap.Push(&s.queue, flushTask{at: at, channelID: channelID})
	s.mu.Unlock()

	s.rearm()
}

// rearm points the timer at the heap head. A head that is already due is
// fired directly instead, since a fake clock would run a zero-delay
// callback synchronously while the lock is held.
func (s *scheduler) rearm() {
	s.mu.Lock()
	if s.closed || s.queue.Len() == 0 {
		s.mu.Unlock()
		return
	}
	head := s.queue[0].at
	d := head.Sub(s.clock.Now())
	if d <= 0 {
		s.mu.Unlock()
		s.fire()
		return
	}
	if s.timer != nil {
		if s.armedAt.Equal(head) {
			s.mu.Unlock()
			return
		}
		s.timer.Stop()
	}
	s.timer = s.clock.AfterFunc(d, s.fire)
	s.armedAt = head
	s.mu.Unlock()
}

func (s *scheduler) fire() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	now := s.clock.Now()
	var due []int
	for s.queue.Len() > 0 && !s.queue[0].at.After(now) {
		due = append(due, heap.Pop(&s.queue).(flushTask).channelID)
	}
	s.mu.Unlock()

	for _, channelID := range due {
		s.run(channelID)
	}
	s.rearm()
}

func (s *scheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

func (s *scheduler) close() {
	s.mu.Lock()
	s.closed = true
	s.queue = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
}

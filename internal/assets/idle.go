package assets

import "time"

// Idle runs deferred work when a frame finishes with time to spare, or
// once its timeout passes regardless.
type Idle struct {
	queue []idleTask
}

type idleTask struct {
	fn       func()
	deadline time.Time
}

// Defer queues fn. It runs on the first idle frame, or at the latest at
// now+timeout.
func (q *Idle) Defer(now time.Time, timeout time.Duration, fn func()) {
	q.queue = append(q.queue, idleTask{fn: fn, deadline: now.Add(timeout)})
}

// Len returns the number of queued tasks.
func (q *Idle) Len() int { return len(q.queue) }

// Run executes queued work. spare is the unused part of the frame budget;
// tasks run while it is positive, each assumed to cost cost. Tasks past
// their deadline run regardless. It returns how many ran.
func (q *Idle) Run(now time.Time, spare, cost time.Duration) int {
	ran := 0
	kept := q.queue[:0]
	for _, t := range q.queue {
		if spare > 0 || !now.Before(t.deadline) {
			t.fn()
			spare -= cost
			ran++
			continue
		}
		kept = append(kept, t)
	}
	for i := len(kept); i < len(q.queue); i++ {
		q.queue[i] = idleTask{}
	}
	q.queue = kept
	return ran
}

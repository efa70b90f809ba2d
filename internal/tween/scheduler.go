package tween

import "time"

// Task interpolates a scalar from From to To over Duration. OnUpdate
// receives the eased value every advance; OnComplete fires once after the
// final OnUpdate(To).
type Task struct {
	Key        string
	From, To   float64
	Duration   time.Duration
	Ease       Ease
	OnUpdate   func(v float64)
	OnComplete func()

	elapsed time.Duration
}

// Progress returns the linear progress in [0, 1].
func (t *Task) Progress() float64 {
	if t.Duration <= 0 {
		return 1
	}
	return Clamp01(float64(t.elapsed) / float64(t.Duration))
}

// Scheduler owns the active tasks and advances them once per tick. Starting
// a task under a key that is already running replaces it: the latest write
// wins and the replaced task never completes.
type Scheduler struct {
	tasks []*Task
	index map[string]*Task
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{index: make(map[string]*Task)}
}

// Start registers t, replacing any running task with the same key.
func (s *Scheduler) Start(t *Task) {
	if t.Ease == nil {
		t.Ease = Linear
	}
	t.elapsed = 0
	if t.Key != "" {
		if old, ok := s.index[t.Key]; ok {
			s.remove(old)
		}
		s.index[t.Key] = t
	}
	s.tasks = append(s.tasks, t)
}

// Cancel drops the task under key without running OnComplete.
func (s *Scheduler) Cancel(key string) bool {
	t, ok := s.index[key]
	if !ok {
		return false
	}
	s.remove(t)
	return true
}

// Active reports whether a task is running under key.
func (s *Scheduler) Active(key string) bool {
	_, ok := s.index[key]
	return ok
}

// Len returns the number of running tasks.
func (s *Scheduler) Len() int { return len(s.tasks) }

// Advance steps every task by dt. Callbacks may start or cancel tasks;
// tasks started during Advance first move on the next call.
func (s *Scheduler) Advance(dt time.Duration) {
	if len(s.tasks) == 0 {
		return
	}
	current := make([]*Task, len(s.tasks))
	copy(current, s.tasks)

	for _, t := range current {
		if !s.owns(t) {
			continue // replaced or cancelled by an earlier callback
		}
		t.elapsed += dt
		p := t.Progress()
		if t.OnUpdate != nil {
			t.OnUpdate(Lerp(t.From, t.To, t.Ease(p)))
		}
		if p >= 1 {
			s.remove(t)
			if t.OnComplete != nil {
				t.OnComplete()
			}
		}
	}
}

func (s *Scheduler) owns(t *Task) bool {
	for _, x := range s.tasks {
		if x == t {
			return true
		}
	}
	return false
}

func (s *Scheduler) remove(t *Task) {
	for i, x := range s.tasks {
		if x == t {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			break
		}
	}
	if t.Key != "" && s.index[t.Key] == t {
		delete(s.index, t.Key)
	}
}

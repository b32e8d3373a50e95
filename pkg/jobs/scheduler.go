package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TaskFunc is one scheduled unit of work. A returned error is logged and the
// task stays on its schedule.
type TaskFunc func(context.Context) error

// Task is a named recurring job.
type Task struct {
	Name     string
	Interval time.Duration
	// RunAtStart fires the task once immediately when the scheduler starts,
	// before the first tick.
	RunAtStart bool
	Fn         TaskFunc
}

// Scheduler runs recurring tasks on fixed intervals, one goroutine per task.
type Scheduler struct {
	tasks  []Task
	logger *zap.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewScheduler builds a scheduler over the given tasks.
func NewScheduler(logger *zap.Logger, tasks ...Task) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{tasks: tasks, logger: logger}
}

// Start launches the task loops. Safe to call once.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	for _, task := range s.tasks {
		if task.Interval <= 0 || task.Fn == nil {
			s.logger.Sugar().Warnw("skipping misconfigured task", "task", task.Name)
			continue
		}
		s.wg.Add(1)
		go s.loop(task)
	}
	s.started = true
	s.logger.Sugar().Infow("scheduler started", "tasks", len(s.tasks))
}

// Stop cancels all task loops and waits for them to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.mu.Unlock()
	s.wg.Wait()
	s.logger.Sugar().Infow("scheduler stopped")
}

func (s *Scheduler) loop(task Task) {
	defer s.wg.Done()

	if task.RunAtStart {
		s.run(task)
	}

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.run(task)
		}
	}
}

func (s *Scheduler) run(task Task) {
	start := time.Now()
	if err := task.Fn(s.ctx); err != nil {
		s.logger.Sugar().Warnw("task failed", "task", task.Name, "elapsed", time.Since(start), "error", err)
		return
	}
	s.logger.Sugar().Infow("task completed", "task", task.Name, "elapsed", time.Since(start))
}

// Package pool provides the fixed-size worker pool behind the executor: a
// FIFO task queue drained by a constant number of goroutines, with
// wait-for-quiescence and panic isolation at the worker boundary.
package pool

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Pool runs queued closures on a fixed set of workers. Submitted tasks are
// never cancelled; Wait blocks until the queue is empty and no task is in
// flight.
type Pool struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    []func()
	stop     bool
	inFlight atomic.Int64
	wg       sync.WaitGroup
	size     int
}

// DefaultSize is the hardware parallelism, or 4 when the platform reports
// nothing usable.
func DefaultSize() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 4
}

// New starts a pool of n workers; n <= 0 means DefaultSize.
func New(n int) *Pool {
	if n <= 0 {
		n = DefaultSize()
	}
	p := &Pool{size: n}
	p.cond = sync.NewCond(&p.mu)
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.worker(i)
	}
	return p
}

// Size returns the worker count.
func (p *Pool) Size() int { return p.size }

// Submit enqueues a task and returns immediately. Submitting after Stop is
// a no-op.
func (p *Pool) Submit(task func()) {
	p.mu.Lock()
	if p.stop {
		p.mu.Unlock()
		return
	}
	p.queue = append(p.queue, task)
	p.inFlight.Add(1)
	p.mu.Unlock()
	p.cond.Signal()
}

// Wait blocks until the queue is drained and every picked-up task has
// finished.
func (p *Pool) Wait() {
	for {
		p.mu.Lock()
		idle := len(p.queue) == 0 && p.inFlight.Load() == 0
		p.mu.Unlock()
		if idle {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// Stop lets queued tasks finish, then shuts the workers down and joins
// them.
func (p *Pool) Stop() {
	p.mu.Lock()
	p.stop = true
	p.mu.Unlock()
	p.cond.Broadcast()
	p.wg.Wait()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.stop {
			p.cond.Wait()
		}
		if len(p.queue) == 0 && p.stop {
			p.mu.Unlock()
			return
		}
		task := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		p.run(id, task)
		p.inFlight.Add(-1)
	}
}

// run executes one task, catching panics so a bad task cannot take the
// pool down.
func (p *Pool) run(id int, task func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Int("worker", id).Any("panic", r).Msg("task panicked")
		}
	}()
	task()
}

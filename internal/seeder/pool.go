package seeder

import (
	"context"
	"sync"
)

type task struct {
	index      int
	descriptor string
}

// pool is a fixed set of worker goroutines draining a bounded task queue.
type pool struct {
	tasks chan task
	wg    sync.WaitGroup
}

func newPool(queueSize int) *pool {
	return &pool{
		tasks: make(chan task, queueSize),
	}
}

// start launches workerCount goroutines, each calling handle for every
// task it receives until the queue is closed.
func (p *pool) start(workerCount int, handle func(workerID int, t task)) {
	for i := 0; i < workerCount; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for t := range p.tasks {
				handle(id, t)
			}
		}(i)
	}
}

// submit blocks while the queue is full. It reports false when ctx is
// done before t was queued.
func (p *pool) submit(ctx context.Context, t task) bool {
	select {
	case p.tasks <- t:
		return true
	case <-ctx.Done():
		return false
	}
}

// stop closes the queue and waits for every worker to drain it.
func (p *pool) stop() {
	close(p.tasks)
	p.wg.Wait()
}

package worker

import (
	"sync"
)

type Handler = func(workerIndex int, job interface{})

// Pool is a fixed-size goroutine pool fed by a buffered job channel.
// Workers run until Stop; the channel is owned by the pool and closed
// with it.
type Pool struct {
	jobs    chan interface{}
	workers int
	do      Handler
	quit    chan struct{}
	wg      sync.WaitGroup
	started bool
	mu      sync.Mutex
}

func NewPool(bufferSize, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		jobs:    make(chan interface{}, bufferSize),
		workers: workers,
		quit:    make(chan struct{}),
	}
}

func (p *Pool) SetHandler(h Handler) {
	p.do = h
}

// Enqueue blocks when the buffer is full.
func (p *Pool) Enqueue(job interface{}) {
	p.jobs <- job
}

// TryEnqueue drops the job when the buffer is full and reports whether it
// was accepted. Callers that coalesce work (a pending job covers the new
// one) use this.
func (p *Pool) TryEnqueue(job interface{}) bool {
	select {
	case p.jobs <- job:
		return true
	default:
		return false
	}
}

func (p *Pool) Pending() int {
	return len(p.jobs)
}

func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.do == nil {
		return
	}
	p.started = true

	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func(index int) {
			defer p.wg.Done()
			for {
				select {
				case job := <-p.jobs:
					p.do(index, job)
				case <-p.quit:
					// Drain what is already queued before exiting.
					for {
						select {
						case job := <-p.jobs:
							p.do(index, job)
						default:
							return
						}
					}
				}
			}
		}(i)
	}
}

// Stop signals all workers and waits for queued jobs to drain.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()

	close(p.quit)
	p.wg.Wait()
	p.quit = make(chan struct{})
}

package dispatch

import (
	"runtime"
	"sync"
)

// Task processes the half-open index range [begin, end).
type Task func(begin, end int)

// TypedTask processes [begin, end) with a per-call context value.
type TypedTask[T any] func(begin, end int, arg T)

type job struct {
	chunk Chunk
	task  Task
	batch *Batch
}

// Batch tracks the chunks of one dispatch call.
type Batch struct {
	wg     sync.WaitGroup
	mu     sync.Mutex
	err    error
	chunks []Chunk
}

// Wait blocks until every chunk of the batch has run and returns the first
// task failure, if any.
func (b *Batch) Wait() error {
	b.wg.Wait()
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Chunks returns the partition the batch was split into.
func (b *Batch) Chunks() []Chunk { return b.chunks }

func (b *Batch) fail(err error) {
	b.mu.Lock()
	if b.err == nil {
		b.err = err
	}
	b.mu.Unlock()
}

// Pool is a fixed set of persistent worker goroutines. Workers start on the
// first dispatch and exit on Close.
type Pool struct {
	workers int

	mu      sync.Mutex
	work    chan job
	wg      sync.WaitGroup
	running bool
	closed  bool
}

// New creates a pool with the given number of workers. A non-positive count
// uses GOMAXPROCS.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{workers: workers}
}

// Workers returns the number of worker goroutines, which is also the number
// of chunks a dispatch is split into.
func (p *Pool) Workers() int { return p.workers }

// Dispatch runs task over [0, count) and blocks until all chunks are done.
func (p *Pool) Dispatch(count int, task Task) error {
	if count < 0 {
		return ErrInvalidRange
	}
	return p.DispatchRange(0, count, task)
}

// DispatchRange runs task over [begin, end) and blocks until all chunks are
// done.
func (p *Pool) DispatchRange(begin, end int, task Task) error {
	b, err := p.submit(begin, end, task)
	if err != nil {
		return err
	}
	return b.Wait()
}

// Submit starts task over [0, count) without waiting for it.
func (p *Pool) Submit(count int, task Task) (*Batch, error) {
	if count < 0 {
		return nil, ErrInvalidRange
	}
	return p.submit(0, count, task)
}

// For runs a typed task over [0, count) on p and blocks until it completes.
func For[T any](p *Pool, count int, arg T, task TypedTask[T]) error {
	return p.Dispatch(count, func(begin, end int) {
		task(begin, end, arg)
	})
}

func (p *Pool) submit(begin, end int, task Task) (*Batch, error) {
	chunks, err := PartitionRange(begin, end, p.workers)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}
	if !p.running {
		p.start()
	}

	b := &Batch{chunks: chunks}
	b.wg.Add(len(chunks))
	for _, c := range chunks {
		p.work <- job{chunk: c, task: task, batch: b}
	}
	return b, nil
}

// start launches the workers. Caller holds p.mu.
func (p *Pool) start() {
	p.work = make(chan job, p.workers)
	p.running = true
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.work {
		run(j)
	}
}

func run(j job) {
	defer j.batch.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			j.batch.fail(&TaskError{Chunk: j.chunk, Value: r})
		}
	}()
	j.task(j.chunk.Begin, j.chunk.End)
}

// Close stops the workers after queued chunks finish. It is safe to call
// more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	running := p.running
	if running {
		close(p.work)
	}
	p.mu.Unlock()

	if running {
		p.wg.Wait()
	}
}

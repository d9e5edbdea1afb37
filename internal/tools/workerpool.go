package tools

import (
	"context"
	"sync"
)

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 4

// WorkerPool runs a fixed batch of tool invocations on a bounded number of
// goroutines.
type WorkerPool[Job any, Result any] struct {
	workers int
}

// NewWorkerPool sizes a pool for numJobs jobs. A non-positive workers count
// means DefaultWorkers, and a pool never has more workers than jobs.
func NewWorkerPool[Job any, Result any](workers, numJobs int) *WorkerPool[Job, Result] {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if numJobs > 0 {
		workers = min(workers, numJobs)
	}
	return &WorkerPool[Job, Result]{workers: workers}
}

// Workers returns the effective number of workers.
func (p *WorkerPool[Job, Result]) Workers() int {
	return p.workers
}

// Run calls fn once per job and collects the results in completion order
// until every job is done or ctx ends. Jobs not started when ctx ends are
// skipped. Run returns the number of jobs left without a result; when it is
// non-zero the error is ctx.Err().
//
// Workers still busy when Run returns finish their current job and exit;
// their results are discarded.
func (p *WorkerPool[Job, Result]) Run(ctx context.Context, jobs []Job, fn func(context.Context, Job) Result) ([]Result, int, error) {
	queue := make(chan Job, len(jobs))
	for _, job := range jobs {
		queue <- job
	}
	close(queue)

	// buffered for every job so late workers never block
	out := make(chan Result, len(jobs))
	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				if ctx.Err() != nil {
					return
				}
				out <- fn(ctx, job)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(out)
	}()

	results := make([]Result, 0, len(jobs))
collect:
	for {
		select {
		case res, ok := <-out:
			if !ok {
				break collect
			}
			results = append(results, res)
		case <-ctx.Done():
			break collect
		}
	}
	if n := len(jobs) - len(results); n > 0 {
		return results, n, ctx.Err()
	}
	return results, 0, nil
}

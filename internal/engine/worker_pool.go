package engine

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/haruquant/swingrisk/pkg/types"
)

// signalJob is one symbol's signal computation for the current cycle.
type signalJob struct {
	Symbol string
}

// signalResult is the outcome of one signal job. Err is an *EngineError
// when the symbol must be skipped this cycle.
type signalResult struct {
	Symbol    string
	Direction types.Direction
	Duration  time.Duration
	Err       error
}

// workerPool fans signal computation out across symbols. Each symbol's
// price series is independent, so jobs never contend; results are gathered
// before the risk engine runs.
type workerPool struct {
	workerCount int
	jobQueue    chan signalJob
	resultQueue chan signalResult
	wg          sync.WaitGroup
	process     func(ctx context.Context, symbol string) signalResult
}

func newWorkerPool(workerCount, jobBufferSize int, process func(ctx context.Context, symbol string) signalResult) *workerPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	return &workerPool{
		workerCount: workerCount,
		jobQueue:    make(chan signalJob, jobBufferSize),
		resultQueue: make(chan signalResult, jobBufferSize),
		process:     process,
	}
}

func (wp *workerPool) start(ctx context.Context) {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx)
	}
}

func (wp *workerPool) stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

func (wp *workerPool) submit(ctx context.Context, job signalJob) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (wp *workerPool) results() <-chan signalResult {
	return wp.resultQueue
}

func (wp *workerPool) worker(ctx context.Context) {
	defer wp.wg.Done()
	for {
		select {
		case job, ok := <-wp.jobQueue:
			if !ok {
				return
			}
			start := time.Now()
			result := wp.process(ctx, job.Symbol)
			result.Duration = time.Since(start)

			select {
			case wp.resultQueue <- result:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
)

// Sequencer funnels all item-pool queries into one FIFO pipeline: query
// N+1 starts only after query N has fully completed, whichever order the
// callers arrived in. The remote store tolerates few concurrent compound
// queries per caller, and unordered queries can observe session state
// mid-mutation; serializing trades latency for correctness.
//
// Each unit is isolated: an error (or panic) inside one query fails only
// that caller, never the pipeline.
type Sequencer struct {
	jobs      chan sequencerJob
	quit      chan struct{}
	closeOnce sync.Once
	nextID    atomic.Int64
}

type sequencerJob struct {
	id   int64
	run  func() error
	done chan error
}

// NewSequencer starts the pipeline goroutine. Call Close when the owning
// context shuts down.
func NewSequencer() *Sequencer {
	s := &Sequencer{
		jobs: make(chan sequencerJob),
		quit: make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *Sequencer) loop() {
	for {
		select {
		case job := <-s.jobs:
			job.done <- s.runJob(job)
		case <-s.quit:
			return
		}
	}
}

func (s *Sequencer) runJob(job sequencerJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Sequencer] query #%d panicked: %v", job.id, r)
			err = fmt.Errorf("sequenced query #%d panicked: %v", job.id, r)
		}
	}()
	return job.run()
}

// Do enqueues fn and blocks until it has run to completion. The returned
// error is fn's own; enqueueing after Close or with a cancelled context
// fails without running fn.
func (s *Sequencer) Do(ctx context.Context, fn func() error) error {
	job := sequencerJob{
		id:   s.nextID.Add(1),
		run:  fn,
		done: make(chan error, 1),
	}
	select {
	case s.jobs <- job:
	case <-s.quit:
		return fmt.Errorf("sequencer closed")
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-job.done
}

// Close stops the pipeline. Queries waiting to be enqueued fail; the
// query currently running finishes.
func (s *Sequencer) Close() {
	s.closeOnce.Do(func() { close(s.quit) })
}

// Sequenced runs a value-producing query through the sequencer.
func Sequenced[T any](ctx context.Context, s *Sequencer, fn func() (T, error)) (T, error) {
	var result T
	err := s.Do(ctx, func() error {
		var fnErr error
		result, fnErr = fn()
		return fnErr
	})
	return result, err
}

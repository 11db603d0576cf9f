/*
	Package pipeline implements an asynchronous, multi-stage processing
	pipeline behind a synchronous API.

	A pipeline is assembled from a payload Source, zero or more stages and
	a payload Sink. Each stage wraps a user-supplied Processor in one of
	the provided dispatch strategies (FIFO, fixed or dynamic worker pools,
	keyed worker pool, broadcast). Payloads flow from the source through
	the stages to the sink; errors raised by any component abort the run
	and are collected into the error returned by Execute.
*/
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Pipeline strings together a set of stage runners that payloads flow
// through on their way from a source to a sink.
type Pipeline struct {
	stages []StageRunner
}

// New returns a pipeline composed of the provided stages.
func New(stages ...StageRunner) *Pipeline {
	return &Pipeline{stages}
}

// Execute reads payloads from src, routes them through each pipeline stage
// in order and delivers the results to sink.
//
// Calls to Execute block until:
//   - every payload from the source has been processed or discarded,
//   - any pipeline component reports an error, or
//   - the supplied context is cancelled.
//
// It is safe to invoke Execute concurrently with different sources and sinks.
func (p *Pipeline) Execute(ctx context.Context, src Source, sink Sink) error {
	var wg sync.WaitGroup
	execCtx, cancel := context.WithCancel(ctx)

	// One channel per stage boundary. The extra channel links the source
	// directly to the sink when the pipeline has no stages.
	stageChans := make([]chan Payload, len(p.stages)+1)
	for i := 0; i < len(stageChans); i++ {
		stageChans[i] = make(chan Payload)
	}

	// Buffered so the source, the sink and every stage can each report one
	// error without blocking.
	errChan := make(chan error, len(p.stages)+2)

	for i := 0; i < len(p.stages); i++ {
		wg.Add(1)

		go func(index int) {
			defer wg.Done()

			p.stages[index].Run(execCtx, stageWiring{
				index: index,
				in:    stageChans[index],
				out:   stageChans[index+1],
				errs:  errChan,
			})

			// Run only returns once its input channel closes or processing
			// fails. Closing the output channel propagates the shutdown to
			// the next stage.
			close(stageChans[index+1])
		}(i)
	}

	wg.Add(2)

	go func() {
		sourceWorker(execCtx, src, stageChans[0], errChan)

		// Closing the first stage channel starts the chain of stage
		// shutdowns once the source runs out of payloads.
		close(stageChans[0])
		wg.Done()
	}()

	go func() {
		sinkWorker(execCtx, sink, stageChans[len(stageChans)-1], errChan)
		wg.Done()
	}()

	go func() {
		wg.Wait()

		close(errChan)
		cancel()
	}()

	var err error
	for workerErr := range errChan {
		err = multierror.Append(err, workerErr)

		// The first error shuts the whole pipeline down.
		cancel()
	}

	return err
}

var _ StageParams = stageWiring{}

// stageWiring carries the channels Execute connects to each stage.
type stageWiring struct {
	index int
	in    <-chan Payload
	out   chan<- Payload
	errs  chan<- error
}

func (w stageWiring) StageIndex() int        { return w.index }
func (w stageWiring) Input() <-chan Payload  { return w.in }
func (w stageWiring) Output() chan<- Payload { return w.out }
func (w stageWiring) Error() chan<- error    { return w.errs }

// sourceWorker pumps payloads from src into the first stage channel until
// the source is exhausted or the context is cancelled.
func sourceWorker(
	ctx context.Context, src Source,
	outChan chan<- Payload, errChan chan<- error,
) {
	for src.Next(ctx) {
		p := src.Payload()

		select {
		case <-ctx.Done():
			return
		case outChan <- p:
		}
	}

	if err := src.Error(); err != nil {
		emitError(fmt.Errorf("pipeline source: %w", err), errChan)
	}
}

// sinkWorker drains the last stage channel into the sink, marking each
// delivered payload as processed.
func sinkWorker(
	ctx context.Context, sink Sink,
	inChan <-chan Payload, errChan chan<- error,
) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-inChan:
			if !ok {
				return
			}

			if err := sink.Consume(ctx, payload); err != nil {
				emitError(fmt.Errorf("pipeline sink: %w", err), errChan)

				return
			}

			payload.MarkAsProcessed()
		}
	}
}

// emitError performs a non-blocking write to errChan. Errors that arrive
// after the channel buffer fills up are dropped; the first error is the one
// that triggers the pipeline shutdown anyway.
func emitError(err error, errChan chan<- error) {
	select {
	case errChan <- err:
	default:
	}
}

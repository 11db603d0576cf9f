package pipeline

import (
	"context"
	"fmt"
	"sync"
)

// fifo processes payloads one at a time in arrival order. It is the
// building block the pooled runners are assembled from.
type fifo struct {
	proc Processor
}

// NewFIFO returns a StageRunner that processes payloads serially in
// first-in first-out order.
func NewFIFO(proc Processor) StageRunner {
	return fifo{proc}
}

// Run reads payloads off the stage input, applies the processor and
// forwards non-nil results to the stage output. Processor errors are
// wrapped with the stage index and reported to the stage error channel.
func (r fifo) Run(ctx context.Context, params StageParams) {
	for {
		select {
		case <-ctx.Done():
			return
		case payloadIn, ok := <-params.Input():
			if !ok {
				return
			}

			payloadOut, err := r.proc.Process(ctx, payloadIn)
			if err != nil {
				emitError(
					fmt.Errorf("pipeline stage %d: %w", params.StageIndex(), err),
					params.Error(),
				)

				return
			}

			// A nil result discards the payload and moves on to the next one.
			if payloadOut == nil {
				payloadIn.MarkAsProcessed()

				continue
			}

			select {
			case <-ctx.Done():
				return
			case params.Output() <- payloadOut:
			}
		}
	}
}

// fixedWorkerPool fans payloads out to a constant number of workers.
type fixedWorkerPool struct {
	fifos []StageRunner
}

// NewFixedWorkerPool returns a StageRunner that distributes payloads
// across numOfWorkers FIFO runners sharing the stage channels.
func NewFixedWorkerPool(proc Processor, numOfWorkers int) StageRunner {
	if numOfWorkers <= 0 {
		panic("FixedWorkerPool: numOfWorkers must be > 0")
	}

	fifos := make([]StageRunner, numOfWorkers)
	for i := 0; i < numOfWorkers; i++ {
		fifos[i] = NewFIFO(proc)
	}

	return fixedWorkerPool{fifos}
}

// Run launches one goroutine per FIFO runner. All workers read from the
// shared input channel, so payloads are balanced to whichever worker is
// free, and all write to the shared output channel.
func (r fixedWorkerPool) Run(ctx context.Context, params StageParams) {
	var wg sync.WaitGroup

	for i := 0; i < len(r.fifos); i++ {
		wg.Add(1)

		go func(index int) {
			r.fifos[index].Run(ctx, params)

			wg.Done()
		}(i)
	}

	wg.Wait()
}

// dynamicWorkerPool spawns a worker per payload, capped by a token pool.
type dynamicWorkerPool struct {
	proc      Processor
	tokenPool chan struct{}
}

// NewDynamicWorkerPool returns a StageRunner that launches a goroutine for
// each incoming payload while never exceeding maxNumOfWorkers in flight.
func NewDynamicWorkerPool(proc Processor, maxNumOfWorkers int) StageRunner {
	if maxNumOfWorkers <= 0 {
		panic("DynamicWorkerPool: maxNumOfWorkers must be > 0")
	}

	tokenPool := make(chan struct{}, maxNumOfWorkers)
	for i := 0; i < maxNumOfWorkers; i++ {
		tokenPool <- struct{}{}
	}

	return dynamicWorkerPool{
		proc:      proc,
		tokenPool: tokenPool,
	}
}

// Run claims a token for every payload before handing it to a new worker
// goroutine. When no token is available the loop blocks until a running
// worker returns its token.
func (r dynamicWorkerPool) Run(ctx context.Context, params StageParams) {
outer:
	for {
		select {
		case <-ctx.Done():
			break outer
		case payloadIn, ok := <-params.Input():
			if !ok {
				break outer
			}

			var token struct{}

			select {
			case <-ctx.Done():
				break outer
			case token = <-r.tokenPool:
			}

			go func(p Payload, token struct{}) {
				defer func() {
					r.tokenPool <- token
				}()

				payloadOut, err := r.proc.Process(ctx, p)
				if err != nil {
					emitError(
						fmt.Errorf("pipeline stage %d: %w", params.StageIndex(), err),
						params.Error(),
					)

					return
				}

				if payloadOut == nil {
					p.MarkAsProcessed()

					return
				}

				select {
				case <-ctx.Done():
				case params.Output() <- payloadOut:
				}
			}(payloadIn, token)
		}
	}

	// Reclaiming every token guarantees all in-flight workers have
	// returned before the stage shuts down.
	for i := 0; i < cap(r.tokenPool); i++ {
		<-r.tokenPool
	}
}

// keyedWorkerPool bounds in-flight payloads both globally and per key.
// Each payload is assigned to a key bucket (for a crawler, typically the
// target host) with its own slot allowance.
type keyedWorkerPool struct {
	proc       Processor
	keyFn      func(Payload) string
	globalPool chan struct{}
	maxPerKey  int

	mu       sync.Mutex
	keyPools map[string]chan struct{}
}

// NewKeyedWorkerPool returns a StageRunner that processes each payload on
// its own goroutine while keeping at most maxNumOfWorkers payloads in
// flight overall and at most maxPerKey in flight for any single value of
// keyFn. A payload waiting for a slot in its key bucket does not hold a
// global slot, so a saturated key never starves the other keys.
func NewKeyedWorkerPool(
	proc Processor, keyFn func(Payload) string,
	maxNumOfWorkers, maxPerKey int,
) StageRunner {
	if maxNumOfWorkers <= 0 {
		panic("KeyedWorkerPool: maxNumOfWorkers must be > 0")
	}
	if maxPerKey <= 0 {
		panic("KeyedWorkerPool: maxPerKey must be > 0")
	}
	if keyFn == nil {
		panic("KeyedWorkerPool: keyFn must be provided")
	}

	globalPool := make(chan struct{}, maxNumOfWorkers)
	for i := 0; i < maxNumOfWorkers; i++ {
		globalPool <- struct{}{}
	}

	return &keyedWorkerPool{
		proc:       proc,
		keyFn:      keyFn,
		globalPool: globalPool,
		maxPerKey:  maxPerKey,
		keyPools:   make(map[string]chan struct{}),
	}
}

// Run hands every payload to a goroutine that first claims a slot in the
// payload's key bucket and only then competes for a global slot. The run
// returns once the input channel closes and all workers have finished.
func (r *keyedWorkerPool) Run(ctx context.Context, params StageParams) {
	var wg sync.WaitGroup

outer:
	for {
		select {
		case <-ctx.Done():
			break outer
		case payloadIn, ok := <-params.Input():
			if !ok {
				break outer
			}

			keyPool := r.keyPool(r.keyFn(payloadIn))
			wg.Add(1)

			go func(p Payload) {
				defer wg.Done()

				// Claim the key slot before the global one so that a
				// payload queued behind its key limit never occupies a
				// global slot another key could use.
				select {
				case <-ctx.Done():
					return
				case <-keyPool:
				}
				defer func() { keyPool <- struct{}{} }()

				select {
				case <-ctx.Done():
					return
				case <-r.globalPool:
				}
				defer func() { r.globalPool <- struct{}{} }()

				payloadOut, err := r.proc.Process(ctx, p)
				if err != nil {
					emitError(
						fmt.Errorf("pipeline stage %d: %w", params.StageIndex(), err),
						params.Error(),
					)

					return
				}

				if payloadOut == nil {
					p.MarkAsProcessed()

					return
				}

				select {
				case <-ctx.Done():
				case params.Output() <- payloadOut:
				}
			}(payloadIn)
		}
	}

	wg.Wait()
}

// keyPool returns the slot pool for key, creating and filling it on first
// use. Buckets are retained for the lifetime of the runner.
func (r *keyedWorkerPool) keyPool(key string) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	pool, ok := r.keyPools[key]
	if !ok {
		pool = make(chan struct{}, r.maxPerKey)
		for i := 0; i < r.maxPerKey; i++ {
			pool <- struct{}{}
		}
		r.keyPools[key] = pool
	}

	return pool
}

// broadcast clones each payload to a set of processors running in parallel.
type broadcast struct {
	fifos []StageRunner
}

// NewBroadcast returns a StageRunner that delivers a copy of every
// incoming payload to each of the provided processors and funnels their
// outputs to the shared stage output.
func NewBroadcast(procs ...Processor) StageRunner {
	if len(procs) == 0 {
		panic("Broadcast: at least one processor must be specified")
	}

	fifos := make([]StageRunner, len(procs))
	for i, p := range procs {
		fifos[i] = NewFIFO(p)
	}

	return broadcast{fifos}
}

// Run starts a FIFO runner per processor, each with a dedicated input
// channel, then forwards every incoming payload to all of them. All but
// the first runner receive clones since processors may mutate payloads.
func (r broadcast) Run(ctx context.Context, params StageParams) {
	var (
		wg      sync.WaitGroup
		inChans = make([]chan Payload, len(r.fifos))
	)

	for i := 0; i < len(r.fifos); i++ {
		wg.Add(1)

		inChans[i] = make(chan Payload)

		go func(index int) {
			defer wg.Done()

			r.fifos[index].Run(ctx, stageWiring{
				index: params.StageIndex(),
				in:    inChans[index],
				out:   params.Output(),
				errs:  params.Error(),
			})
		}(i)
	}

outer:
	for {
		select {
		case <-ctx.Done():
			break outer
		case payload, ok := <-params.Input():
			if !ok {
				break outer
			}

			for i := len(r.fifos) - 1; i >= 0; i-- {
				fifoPayload := payload
				if i != 0 {
					fifoPayload = payload.Clone()
				}

				select {
				case <-ctx.Done():
					break outer
				case inChans[i] <- fifoPayload:
				}
			}
		}
	}

	// Closing the dedicated input channels shuts the FIFO runners down.
	for _, ch := range inChans {
		close(ch)
	}

	wg.Wait()
}

package pipeline_test

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	check "gopkg.in/check.v1"

	"github.com/mycok/kwScout/pipeline"
)

// Register an instance of the stage runner test suite with the check runner.
var _ = check.Suite(new(stageRunnerTestSuite))

type stageRunnerTestSuite struct{}

func (s *stageRunnerTestSuite) TestFIFO(c *check.C) {
	stages := make([]pipeline.StageRunner, 10)
	for i := 0; i < len(stages); i++ {
		stages[i] = pipeline.NewFIFO(passThroughProcessor())
	}

	src := &stubSource{data: makeTextPayloads(3)}
	sink := new(stubSink)
	p := pipeline.New(stages...)

	err := p.Execute(context.TODO(), src, sink)
	c.Assert(err, check.IsNil)
	c.Assert(src.data, check.DeepEquals, sink.data)
	assertProcessed(c, src.data...)
}

func (s *stageRunnerTestSuite) TestFixedWorkerPool(c *check.C) {
	numOfWorkers := 10
	startedChan := make(chan struct{})
	releaseChan := make(chan struct{})
	doneChan := make(chan struct{})
	// Block each worker at a rendezvous point and discard the payload.
	proc := pipeline.ProcessorFunc(
		func(_ context.Context, _ pipeline.Payload) (pipeline.Payload, error) {
			startedChan <- struct{}{}
			<-releaseChan

			return nil, nil
		})

	src := &stubSource{data: makeTextPayloads(numOfWorkers)}
	p := pipeline.New(pipeline.NewFixedWorkerPool(proc, numOfWorkers))

	go func() {
		err := p.Execute(context.TODO(), src, nil)
		c.Assert(err, check.IsNil)

		close(doneChan)
	}()

	// All payloads must be in flight at once before any worker is released.
	for i := 0; i < numOfWorkers; i++ {
		select {
		case <-startedChan:
		case <-time.After(10 * time.Second):
			c.Fatalf("timed out waiting for worker %d to start", i)
		}
	}

	close(releaseChan)

	select {
	case <-doneChan:
		close(startedChan)
	case <-time.After(10 * time.Second):
		c.Fatal("timed out waiting for the pipeline to complete")
	}
}

func (s *stageRunnerTestSuite) TestDynamicWorkerPool(c *check.C) {
	var numOfProcessed int64
	maxNumOfWorkers := 5
	startedChan := make(chan struct{}, maxNumOfWorkers)
	releaseChan := make(chan struct{})
	doneChan := make(chan struct{})
	proc := pipeline.ProcessorFunc(
		func(_ context.Context, _ pipeline.Payload) (pipeline.Payload, error) {
			startedChan <- struct{}{}
			<-releaseChan

			atomic.AddInt64(&numOfProcessed, 1)

			return nil, nil
		})

	src := &stubSource{data: makeTextPayloads(maxNumOfWorkers * 2)}
	p := pipeline.New(pipeline.NewDynamicWorkerPool(proc, maxNumOfWorkers))

	go func() {
		err := p.Execute(context.TODO(), src, nil)
		c.Assert(err, check.IsNil)

		close(doneChan)
	}()

	// Only maxNumOfWorkers payloads may be in flight while the workers are
	// held at the rendezvous point.
	for i := 0; i < maxNumOfWorkers; i++ {
		select {
		case <-startedChan:
		case <-time.After(10 * time.Second):
			c.Fatalf("timed out waiting for worker %d to start", i)
		}
	}

	close(releaseChan)

	select {
	case <-doneChan:
		close(startedChan)
	case <-time.After(10 * time.Second):
		c.Fatal("timed out waiting for the pipeline to complete")
	}

	c.Assert(atomic.LoadInt64(&numOfProcessed), check.Equals, int64(maxNumOfWorkers*2))
	assertProcessed(c, src.data...)
}

func (s *stageRunnerTestSuite) TestKeyedWorkerPoolHonorsPerKeyLimit(c *check.C) {
	var (
		active    int64
		maxActive int64
	)
	releaseChan := make(chan struct{})
	doneChan := make(chan struct{})
	proc := pipeline.ProcessorFunc(
		func(_ context.Context, _ pipeline.Payload) (pipeline.Payload, error) {
			current := atomic.AddInt64(&active, 1)
			for {
				observed := atomic.LoadInt64(&maxActive)
				if current <= observed ||
					atomic.CompareAndSwapInt64(&maxActive, observed, current) {
					break
				}
			}

			<-releaseChan
			atomic.AddInt64(&active, -1)

			return nil, nil
		})

	// Six payloads, all sharing one key, with a per-key limit of 1: the
	// in-flight count must never exceed one even though the global limit
	// would allow four.
	payloads := make([]pipeline.Payload, 6)
	for i := 0; i < len(payloads); i++ {
		payloads[i] = &textPayload{value: fmt.Sprint(i), key: "example.com"}
	}

	src := &stubSource{data: payloads}
	p := pipeline.New(pipeline.NewKeyedWorkerPool(proc, payloadKey, 4, 1))

	go func() {
		err := p.Execute(context.TODO(), src, nil)
		c.Assert(err, check.IsNil)

		close(doneChan)
	}()

	// Unblock the workers one at a time.
	for i := 0; i < len(payloads); i++ {
		select {
		case releaseChan <- struct{}{}:
		case <-time.After(10 * time.Second):
			c.Fatalf("timed out releasing worker %d", i)
		}
	}

	select {
	case <-doneChan:
	case <-time.After(10 * time.Second):
		c.Fatal("timed out waiting for the pipeline to complete")
	}

	c.Assert(atomic.LoadInt64(&maxActive), check.Equals, int64(1))
	assertProcessed(c, payloads...)
}

func (s *stageRunnerTestSuite) TestKeyedWorkerPoolBlockedKeyFreesGlobalSlot(c *check.C) {
	startedChan := make(chan string, 3)
	releaseChan := make(chan struct{})
	doneChan := make(chan struct{})
	proc := pipeline.ProcessorFunc(
		func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
			startedChan <- p.(*textPayload).key
			<-releaseChan

			return nil, nil
		})

	// Two payloads for a.com with a per-key limit of 1 plus one payload for
	// b.com, under a global limit of 2. The second a.com payload queues on
	// its key slot; if it also held a global slot, b.com could never start.
	payloads := []pipeline.Payload{
		&textPayload{value: "0", key: "a.com"},
		&textPayload{value: "1", key: "a.com"},
		&textPayload{value: "2", key: "b.com"},
	}

	src := &stubSource{data: payloads}
	p := pipeline.New(pipeline.NewKeyedWorkerPool(proc, payloadKey, 2, 1))

	go func() {
		err := p.Execute(context.TODO(), src, nil)
		c.Assert(err, check.IsNil)

		close(doneChan)
	}()

	started := make(map[string]int)
	for i := 0; i < 2; i++ {
		select {
		case key := <-startedChan:
			started[key]++
		case <-time.After(10 * time.Second):
			c.Fatal("timed out waiting for both keys to start processing")
		}
	}

	// One payload per key must be in flight simultaneously.
	c.Assert(started, check.DeepEquals, map[string]int{"a.com": 1, "b.com": 1})

	close(releaseChan)

	select {
	case <-doneChan:
	case <-time.After(10 * time.Second):
		c.Fatal("timed out waiting for the pipeline to complete")
	}

	assertProcessed(c, payloads...)
}

func (s *stageRunnerTestSuite) TestBroadcast(c *check.C) {
	numOfProcs := 3
	procs := make([]pipeline.Processor, numOfProcs)
	for i := 0; i < len(procs); i++ {
		procs[i] = suffixingProcessor(i)
	}

	src := &stubSource{data: makeTextPayloads(1)}
	sink := new(stubSink)
	p := pipeline.New(pipeline.NewBroadcast(procs...))

	err := p.Execute(context.TODO(), src, sink)
	c.Assert(err, check.IsNil)

	expected := []pipeline.Payload{
		&textPayload{value: "0_0", processed: true},
		&textPayload{value: "0_1", processed: true},
		&textPayload{value: "0_2", processed: true},
	}

	sort.Slice(sink.data, func(i, j int) bool {
		return sink.data[i].(*textPayload).value < sink.data[j].(*textPayload).value
	})

	c.Assert(sink.data, check.DeepEquals, expected)
}

func payloadKey(p pipeline.Payload) string {
	return p.(*textPayload).key
}

func passThroughProcessor() pipeline.Processor {
	return pipeline.ProcessorFunc(
		func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
			return p, nil
		})
}

func suffixingProcessor(index int) pipeline.Processor {
	return pipeline.ProcessorFunc(
		func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
			// Mutating the value proves each processor received its own copy.
			payload := p.(*textPayload)
			payload.value = fmt.Sprintf("%s_%d", payload.value, index)

			return payload, nil
		})
}

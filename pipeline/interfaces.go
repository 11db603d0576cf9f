package pipeline

import "context"

// Payload is implemented by the values that travel through a pipeline.
type Payload interface {
	// Clone returns a deep copy of the payload. Stages that fan a payload
	// out to multiple processors rely on clones to avoid data races.
	Clone() Payload

	// MarkAsProcessed is invoked once the payload reaches the sink or is
	// discarded by a stage, allowing implementations to release resources.
	MarkAsProcessed()
}

// Source is implemented by types that emit the payloads a pipeline consumes.
type Source interface {
	// Next advances the source to its next payload and returns true. It
	// returns false when no more payloads are available or an error occurs.
	Next(context.Context) bool

	// Payload returns the payload at the current source position.
	Payload() Payload

	// Error returns the last error observed by the source.
	Error() error
}

// Sink is implemented by types that receive the payloads a pipeline emits.
type Sink interface {
	// Consume handles a payload that exited the last pipeline stage.
	Consume(context.Context, Payload) error
}

// Processor is implemented by types that transform payloads within a stage.
type Processor interface {
	// Process transforms the payload and returns the value to forward to
	// the next stage. Returning a nil payload discards the input without
	// treating it as an error.
	Process(context.Context, Payload) (Payload, error)
}

// ProcessorFunc adapts a plain function to the Processor interface.
type ProcessorFunc func(context.Context, Payload) (Payload, error)

// Process calls f(ctx, p).
func (f ProcessorFunc) Process(ctx context.Context, p Payload) (Payload, error) {
	return f(ctx, p)
}

// StageRunner is implemented by the dispatch strategies that can be strung
// together to form a multi-stage pipeline.
type StageRunner interface {
	// Run consumes payloads from the stage input and emits results to the
	// stage output. Calls to Run block until the input channel closes, the
	// context is cancelled or payload processing fails.
	Run(context.Context, StageParams)
}

// StageParams carries the channel wiring and position for a single stage.
type StageParams interface {
	// StageIndex returns the position of this stage in the pipeline.
	StageIndex() int

	// Input returns the channel the stage reads payloads from.
	Input() <-chan Payload

	// Output returns the channel the stage writes processed payloads to.
	Output() chan<- Payload

	// Error returns the channel the stage reports processing errors to.
	Error() chan<- error
}

package fetchmachine

import (
	"log/slog"

	"github.com/amp-labs/fetchsim/future"
)

const defaultMailboxDepth = 16

// Option configures a Machine.
type Option func(*options)

type options struct {
	definition *Definition
	operation  Operation
	inspector  Inspector
	logger     *slog.Logger
	executor   future.Executor
	id         string
	depth      int
}

// WithDefinition replaces the embedded definition. It is validated by New.
func WithDefinition(def *Definition) Option {
	return func(o *options) {
		o.definition = def
	}
}

// WithOperation sets the call invoked on every entry into Loading.
func WithOperation(op Operation) Option {
	return func(o *options) {
		o.operation = op
	}
}

// WithInspector attaches an observer. A nil inspector is ignored.
func WithInspector(inspector Inspector) Option {
	return func(o *options) {
		if inspector != nil {
			o.inspector = inspector
		}
	}
}

// WithLogger sets the logger. The default comes from logger.Get.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithExecutor runs invocations on exec (typically a bgworker.Pool)
// instead of a fresh goroutine each.
func WithExecutor(exec future.Executor) Option {
	return func(o *options) {
		o.executor = exec
	}
}

// WithID sets the machine id. The default is a random UUID.
func WithID(id string) Option {
	return func(o *options) {
		o.id = id
	}
}

// WithMailboxDepth sets the buffer size of the machine's mailbox.
func WithMailboxDepth(depth int) Option {
	return func(o *options) {
		o.depth = depth
	}
}

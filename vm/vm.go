package vm

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

const defaultStackSize = 256

// Option configures an Instance at construction time.
type Option func(*Instance) error

// WithStackSize sets the value stack's initial capacity; the stack grows past
// it as needed. The default is 256, the same as the 256-local ceiling this
// language's compiler enforces.
func WithStackSize(size int) Option {
	return func(i *Instance) error {
		i.stack = make([]Value, 0, size)
		return nil
	}
}

// WithOutput sets the sink that `print` writes to. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(i *Instance) error {
		i.output = w
		return nil
	}
}

// Trace installs a logger used for the side-channel instruction trace.
// Nothing is written through it unless the logger's level is at or below
// logrus.DebugLevel; by default Instance runs with a logger at InfoLevel, so
// wiring Trace costs one level check per instruction and nothing else.
func Trace(logger *logrus.Logger) Option {
	return func(i *Instance) error {
		i.log = logger
		return nil
	}
}

// Instance executes a single Chunk. It owns its value stack, its globals
// table, and the list of string handles allocated while running; Run resets
// all three when it starts, and after it returns they hold the final state of
// that run (see Globals).
type Instance struct {
	stack   []Value
	globals map[string]Value

	allocations []*Object

	output io.Writer
	log    *logrus.Logger
}

// New builds an Instance ready to run chunks, applying opts in order.
func New(opts ...Option) (*Instance, error) {
	i := &Instance{
		globals: make(map[string]Value),
		output:  os.Stdout,
		log:     logrus.New(),
	}
	i.log.SetLevel(logrus.InfoLevel)
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}
	if i.stack == nil {
		i.stack = make([]Value, 0, defaultStackSize)
	}
	return i, nil
}

// Globals exposes the current global-variable table, mainly for tests that
// want to assert on post-run state.
func (i *Instance) Globals() map[string]Value {
	return i.globals
}

package data

import (
	"os"

	"github.com/ardnew/refill/log"
)

// Option configures decoding and compilation.
type Option func(*options)

type options struct {
	logger     log.Logger
	processEnv []string
	filename   string
	format     *Format
	builtins   bool
}

func makeOptions(opts ...Option) options {
	o := options{builtins: true}

	for _, opt := range opts {
		opt(&o)
	}

	if o.processEnv == nil {
		o.processEnv = os.Environ()
	}

	return o
}

// WithLogger sets the structured logger for trace-level debugging.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithProcessEnv sets the KEY=VALUE environment visible to builtins and HCL
// expressions. The default is [os.Environ].
func WithProcessEnv(env []string) Option {
	return func(o *options) { o.processEnv = env }
}

// WithBuiltins controls whether [Compile] merges [Builtins] under the
// compiled tree. It is enabled by default.
func WithBuiltins(enabled bool) Option {
	return func(o *options) { o.builtins = enabled }
}

// WithFormat overrides the format detected from a file extension.
func WithFormat(f Format) Option {
	return func(o *options) { o.format = &f }
}

func withFilename(name string) Option {
	return func(o *options) { o.filename = name }
}

package profile

// Stopper ends a profiling session.
type Stopper interface{ Stop() }

// Config describes a profiling session.
type Config struct {
	// Mode selects the profile kind; see [Modes]. Empty disables profiling.
	Mode string
	// Path is the output directory. Empty uses a temporary directory.
	Path string
	// Quiet suppresses the profiler's own start and stop messages.
	Quiet bool
}

// Option applies a configuration option to Config.
type Option func(Config) Config

// WithMode returns a functional option for setting a profiler's mode.
func WithMode(mode string) Option {
	return func(c Config) Config {
		c.Mode = mode

		return c
	}
}

// WithPath returns a functional option for setting a profiler's output path.
func WithPath(path string) Option {
	return func(c Config) Config {
		c.Path = path

		return c
	}
}

// WithQuiet returns a functional option for setting a profiler's quiet flag.
func WithQuiet(quiet bool) Option {
	return func(c Config) Config {
		c.Quiet = quiet

		return c
	}
}

// Make returns a Config with opts applied.
func Make(opts ...Option) Config {
	var c Config

	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

// Start begins profiling with the given options.
// See [Config.Start].
func Start(opts ...Option) Stopper { return Make(opts...).Start() }

// Start begins profiling and returns a Stopper that ends it.
//
// If the pprof build tag is unset, or Mode is empty or unknown, Start returns
// a no-op implementation. Both Start and Stop are always safely callable.
func (c Config) Start() Stopper {
	if c.Mode == "" {
		return ignore{}
	}

	return start(c)
}

type ignore struct{}

func (ignore) Stop() {}

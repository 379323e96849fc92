package ref

import (
	"strings"

	"github.com/ardnew/refill/log"
)

// DefaultSuggestions is the default maximum number of alternative field names
// attached to an unresolved path error.
const DefaultSuggestions = 3

// Option configures resolution behavior.
type Option func(*options)

type options struct {
	ignored     map[string]struct{}
	logger      log.Logger
	suggestions int
}

func makeOptions(opts ...Option) options {
	o := options{suggestions: DefaultSuggestions}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// WithIgnoredPaths lists dot-separated paths, relative to the root of the
// input tree, whose values are copied verbatim without descriptor parsing or
// recursion. Sequence elements are addressed by decimal index, e.g. "a.0".
func WithIgnoredPaths(paths ...string) Option {
	return func(o *options) {
		if o.ignored == nil {
			o.ignored = make(map[string]struct{}, len(paths))
		}

		for _, p := range paths {
			o.ignored[p] = struct{}{}
		}
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSuggestions sets the maximum number of fuzzy-matched field names
// attached to [ErrUnresolvedPath]. Zero disables suggestions.
func WithSuggestions(n int) Option {
	return func(o *options) {
		o.suggestions = max(n, 0)
	}
}

func (o options) isIgnored(path []string) bool {
	if len(o.ignored) == 0 {
		return false
	}

	_, ok := o.ignored[strings.Join(path, PathSeparator)]

	return ok
}

package ref

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Reference is a validated, resolved descriptor. Its value is produced on
// demand by [Reference.Get].
type Reference struct {
	// Descriptor is the descriptor that was resolved.
	Descriptor Descriptor
	// Target is the value found at the descriptor's path.
	Target any
	// Kind classifies Target.
	Kind Kind

	inv      Invocable
	args     []any
	invoke   bool
	location string
}

// Invokes reports whether [Reference.Get] invokes the target.
func (r Reference) Invokes() bool { return r.invoke }

// Args returns the resolved arguments passed to the target on invocation.
func (r Reference) Args() []any { return r.args }

// Get returns the referenced value: the target itself, or the result of
// invoking it.
func (r Reference) Get(ctx context.Context) (any, error) {
	if !r.invoke {
		return r.Target, nil
	}

	v, err := r.inv.Invoke(ctx, r.args)
	if err != nil {
		return nil, invocationError(err).With(
			slog.String("path", r.Descriptor.Path),
			slog.String("location", r.location),
		)
	}

	return v, nil
}

func invocationError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return ErrInvocation.Wrap(err)
}

// TryResolve resolves d against data.
//
// The boolean result reports whether d is a descriptor at all; when it is
// false, the caller should treat the candidate as ordinary data. Unresolved
// paths, call requests on plain values, and arity mismatches are returned as
// errors.
//
// Nested descriptors in the parameters of structured descriptors are filled
// before validation, so the returned Reference carries final arguments.
func TryResolve(
	ctx context.Context,
	d Descriptor,
	data any,
	opts ...Option,
) (Reference, bool, error) {
	return newResolver(data, opts...).tryResolve(ctx, d, nil)
}

// resolver holds the state of a single fill operation.
type resolver struct {
	data any
	opts options
}

func newResolver(data any, opts ...Option) *resolver {
	return &resolver{data: data, opts: makeOptions(opts...)}
}

func (r *resolver) tryResolve(
	ctx context.Context,
	d Descriptor,
	at []string,
) (Reference, bool, error) {
	if d.IsZero() {
		return Reference{}, false, nil
	}

	if err := ctx.Err(); err != nil {
		return Reference{}, false, err
	}

	loc := strings.Join(at, PathSeparator)

	target, res := lookup(r.data, d.Path)
	if !res.ok {
		attrs := []slog.Attr{
			slog.String("path", d.Path),
			slog.String("segment", res.segment),
			slog.String("location", loc),
		}

		if s := suggest(res.parent, res.segment, r.opts.suggestions); len(s) > 0 {
			attrs = append(attrs, slog.String("suggestions", strings.Join(s, ", ")))
		}

		return Reference{}, false, ErrUnresolvedPath.With(attrs...)
	}

	ref := Reference{
		Descriptor: d,
		Target:     target,
		Kind:       KindValue,
		location:   loc,
	}

	inv, ok := Classify(target)
	if !ok {
		if d.Call.IsSet() {
			return Reference{}, false, ErrNotInvocable.With(
				slog.String("path", d.Path),
				slog.String("call", d.Call.String()),
				slog.String("type", typeName(target)),
				slog.String("location", loc),
			)
		}

		r.trace(ctx, "resolve value", d, ref)

		return ref, true, nil
	}

	ref.Kind = inv.Kind()

	if !d.Call.Or(true) {
		r.trace(ctx, "resolve uninvoked", d, ref)

		return ref, true, nil
	}

	args := d.Parameters

	if d.HostsNested() && len(args) > 0 {
		var err error

		args, err = r.resolveParameters(ctx, args, at)
		if err != nil {
			return Reference{}, false, err
		}
	}

	if len(args) != inv.Arity() {
		return Reference{}, false, ErrArityMismatch.With(
			slog.String("path", d.Path),
			slog.String("kind", inv.Kind().String()),
			slog.Int("expected", inv.Arity()),
			slog.Int("got", len(args)),
			slog.String("location", loc),
		)
	}

	ref.inv = inv
	ref.args = args
	ref.invoke = true

	r.trace(ctx, "resolve invocation", d, ref)

	return ref, true, nil
}

// resolveParameters fills each parameter as an independent tree. Ignored
// paths apply only to the input tree and not inside parameters.
func (r *resolver) resolveParameters(
	ctx context.Context,
	params []any,
	at []string,
) ([]any, error) {
	nested := &resolver{data: r.data, opts: r.opts}
	nested.opts.ignored = nil

	base := joinPath(at, keyParameters)
	args := make([]any, len(params))

	for i, p := range params {
		v, err := nested.fill(ctx, p, joinPath(base, strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}

		args[i] = v
	}

	return args, nil
}

func (r *resolver) trace(ctx context.Context, msg string, d Descriptor, ref Reference) {
	r.opts.logger.TraceContext(ctx, msg,
		slog.String("path", d.Path),
		slog.String("form", d.Form.String()),
		slog.String("kind", ref.Kind.String()),
		slog.Int("args", len(ref.args)),
		slog.String("location", ref.location),
	)
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}

	return fmt.Sprintf("%T", v)
}

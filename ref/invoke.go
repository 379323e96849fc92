package ref

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"reflect"

	"github.com/goccy/go-yaml"
)

// Kind classifies a resolution target.
type Kind int

const (
	// KindValue is a plain value; it cannot be invoked.
	KindValue Kind = iota
	// KindFunction is invoked by calling it.
	KindFunction
	// KindConstructor is invoked by constructing a new instance.
	KindConstructor
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindFunction:
		return "function"
	case KindConstructor:
		return "constructor"
	default:
		return "unknown"
	}
}

// Invocable is a resolution target that can be invoked with an exact number
// of arguments.
type Invocable interface {
	// Kind reports whether invocation calls a function or constructs an
	// instance. It is never KindValue.
	Kind() Kind
	// Arity is the declared parameter count.
	Arity() int
	// Invoke calls or constructs the target with args.
	Invoke(ctx context.Context, args []any) (any, error)
}

// Describe returns a short human-readable description of inv, such as
// "<function/2>".
func Describe(inv Invocable) string {
	return fmt.Sprintf("<%s/%d>", inv.Kind(), inv.Arity())
}

// Classify determines whether target can be invoked.
//
// [Invocable] implementations are returned as-is. Any other non-nil Go func
// is wrapped as a [KindFunction] whose arguments are converted to the
// function's parameter types. All other values are plain values.
func Classify(target any) (Invocable, bool) {
	if inv, ok := target.(Invocable); ok {
		return inv, true
	}

	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, false
	}

	return &function{fn: rv, kind: KindFunction}, true
}

// Func wraps the Go function fn as a [KindFunction] invocable.
//
// A leading context.Context parameter receives the resolution context and is
// not counted in the arity; neither is a variadic tail. Results of the form
// (T), (error), or (T, error) are supported.
//
// Func panics if fn is not a non-nil function.
func Func(fn any) Invocable {
	return &function{fn: mustFunc(fn), kind: KindFunction}
}

// Constructor wraps the Go function fn as a [KindConstructor] invocable.
// The function's first result is the constructed instance.
//
// Constructor panics if fn is not a non-nil function.
func Constructor(fn any) Invocable {
	return &function{fn: mustFunc(fn), kind: KindConstructor}
}

// ClassOf returns a [KindConstructor] invocable for T that has no explicit
// constructor: its arity is zero and each invocation yields a new *T.
func ClassOf[T any]() Invocable { return class[T]{} }

type class[T any] struct{}

func (class[T]) Kind() Kind { return KindConstructor }
func (class[T]) Arity() int { return 0 }

func (c class[T]) Invoke(_ context.Context, args []any) (any, error) {
	if len(args) != 0 {
		return nil, arityError(c, len(args))
	}

	return new(T), nil
}

func mustFunc(fn any) reflect.Value {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		panic(fmt.Sprintf("ref: %T is not a function", fn))
	}

	return rv
}

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// function invokes a Go func through reflection.
type function struct {
	fn   reflect.Value
	kind Kind
}

func (f *function) Kind() Kind { return f.kind }

func (f *function) Arity() int {
	t := f.fn.Type()
	n := t.NumIn()

	if t.IsVariadic() {
		n--
	}

	if takesContext(t) {
		n--
	}

	return n
}

func takesContext(t reflect.Type) bool {
	return t.NumIn() > 0 && t.In(0) == contextType &&
		!(t.IsVariadic() && t.NumIn() == 1)
}

func (f *function) Invoke(ctx context.Context, args []any) (result any, err error) {
	if len(args) != f.Arity() {
		return nil, arityError(f, len(args))
	}

	t := f.fn.Type()
	in := make([]reflect.Value, 0, t.NumIn())
	off := 0

	if takesContext(t) {
		if ctx == nil {
			ctx = context.Background()
		}

		in = append(in, reflect.ValueOf(&ctx).Elem())
		off = 1
	}

	for i, arg := range args {
		pt := t.In(off + i)

		v, err := convertArg(arg, pt)
		if err != nil {
			return nil, ErrArgumentType.Wrap(err).With(
				slog.Int("index", i),
				slog.String("type", pt.String()),
			)
		}

		in = append(in, v)
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = ErrInvocation.Wrap(fmt.Errorf("panic: %v", r)).
				With(slog.String("kind", f.kind.String()))
		}
	}()

	var out []reflect.Value
	if t.IsVariadic() {
		in = append(in, reflect.MakeSlice(t.In(t.NumIn()-1), 0, 0))
		out = f.fn.CallSlice(in)
	} else {
		out = f.fn.Call(in)
	}

	return results(t, out, f.kind)
}

// results maps the return values of a reflected call to a single value.
func results(t reflect.Type, out []reflect.Value, kind Kind) (any, error) {
	if n := len(out); n > 0 && t.Out(n-1) == errorType {
		if e := out[n-1].Interface(); e != nil {
			err, _ := e.(error)

			return nil, ErrInvocation.Wrap(err).
				With(slog.String("kind", kind.String()))
		}

		out = out[:n-1]
	}

	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	default:
		vals := make([]any, len(out))
		for i, v := range out {
			vals[i] = v.Interface()
		}

		return vals, nil
	}
}

func arityError(inv Invocable, got int) error {
	return ErrArityMismatch.With(
		slog.String("kind", inv.Kind().String()),
		slog.Int("expected", inv.Arity()),
		slog.Int("got", got),
	)
}

var (
	errOverflow   = errors.New("value out of range")
	errFractional = errors.New("fractional value")
)

// convertArg converts a tree value to the parameter type t.
func convertArg(arg any, t reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(t), nil
	}

	v := reflect.ValueOf(arg)
	if v.Type().AssignableTo(t) {
		return v, nil
	}

	switch {
	case isNumeric(v.Kind()) && isNumeric(t.Kind()):
		return convertNumber(v, t)

	case v.Kind() == reflect.String && t.Kind() == reflect.String,
		v.Kind() == reflect.Bool && t.Kind() == reflect.Bool:
		return v.Convert(t), nil

	case t.Kind() == reflect.Pointer:
		elem, err := convertArg(arg, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}

		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(elem)

		return ptr, nil

	case t.Kind() == reflect.Slice:
		seq, ok := sequence(arg)
		if !ok {
			break
		}

		out := reflect.MakeSlice(t, len(seq), len(seq))
		for i, e := range seq {
			ev, err := convertArg(e, t.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
			}

			out.Index(i).Set(ev)
		}

		return out, nil

	case t.Kind() == reflect.Map && t.Key().Kind() == reflect.String:
		return convertMap(arg, t)
	}

	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", v.Type(), t)
}

func convertMap(arg any, t reflect.Type) (reflect.Value, error) {
	out := reflect.MakeMap(t)

	set := func(k string, e any) error {
		ev, err := convertArg(e, t.Elem())
		if err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}

		out.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), ev)

		return nil
	}

	switch m := arg.(type) {
	case map[string]any:
		for k, e := range m {
			if err := set(k, e); err != nil {
				return reflect.Value{}, err
			}
		}

	case yaml.MapSlice:
		for _, item := range m {
			if err := set(keyString(item.Key), item.Value); err != nil {
				return reflect.Value{}, err
			}
		}

	default:
		return reflect.Value{}, fmt.Errorf("cannot use %T as %s", arg, t)
	}

	return out, nil
}

func isNumeric(k reflect.Kind) bool {
	return isInt(k) || isUint(k) || isFloat(k)
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func convertNumber(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()

	switch {
	case isFloat(t.Kind()):
		var f float64

		switch {
		case isInt(v.Kind()):
			f = float64(v.Int())
		case isUint(v.Kind()):
			f = float64(v.Uint())
		default:
			f = v.Float()
		}

		if out.OverflowFloat(f) {
			return reflect.Value{}, errOverflow
		}

		out.SetFloat(f)

	case isInt(t.Kind()):
		var i int64

		switch {
		case isInt(v.Kind()):
			i = v.Int()
		case isUint(v.Kind()):
			if v.Uint() > math.MaxInt64 {
				return reflect.Value{}, errOverflow
			}

			i = int64(v.Uint())
		default:
			f := v.Float()
			if f != math.Trunc(f) {
				return reflect.Value{}, errFractional
			}

			if f < math.MinInt64 || f >= math.MaxInt64 {
				return reflect.Value{}, errOverflow
			}

			i = int64(f)
		}

		if out.OverflowInt(i) {
			return reflect.Value{}, errOverflow
		}

		out.SetInt(i)

	default:
		var u uint64

		switch {
		case isInt(v.Kind()):
			if v.Int() < 0 {
				return reflect.Value{}, errOverflow
			}

			u = uint64(v.Int())
		case isUint(v.Kind()):
			u = v.Uint()
		default:
			f := v.Float()
			if f != math.Trunc(f) {
				return reflect.Value{}, errFractional
			}

			if f < 0 || f >= math.MaxUint64 {
				return reflect.Value{}, errOverflow
			}

			u = uint64(f)
		}

		if out.OverflowUint(u) {
			return reflect.Value{}, errOverflow
		}

		out.SetUint(u)
	}

	return out, nil
}

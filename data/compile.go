package data

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/refill/log"
	"github.com/ardnew/refill/ref"
)

// Keys recognized in a definition mapping.
const (
	KeyExpr   = "$expr"
	KeyClass  = "$class"
	KeyParams = "$params"
)

// MaxCallDepth bounds nested invocations between compiled definitions.
const MaxCallDepth = 64

// Compile replaces every definition mapping in tree with an invocable.
//
// A mapping holding [KeyExpr] becomes a [ref.KindFunction] whose arity is the
// length of [KeyParams]. A mapping holding [KeyClass] becomes a
// [ref.KindConstructor] whose instances map each field of the class to the
// value of its expression. Class fields that are not strings are constants.
//
// Expressions see, from outermost to innermost: [Builtins], the compiled
// tree, and the invocation's parameters. Invocables in the tree are callable
// as functions.
//
// Unless disabled with [WithBuiltins], the result is a mapping holding the
// entries of tree followed by every builtin whose name tree does not define.
func Compile(ctx context.Context, tree any, opts ...Option) (any, error) {
	o := makeOptions(opts...)
	s := &scope{logger: o.logger}

	out, err := s.compile(ctx, tree, nil)
	if err != nil {
		return nil, err
	}

	if o.builtins {
		out, err = withBuiltins(out, Builtins(o.processEnv))
		if err != nil {
			return nil, err
		}
	}

	s.root = out

	o.logger.TraceContext(ctx, "compiled", slog.Int("definitions", s.count))

	return out, nil
}

func withBuiltins(tree any, builtins yaml.MapSlice) (any, error) {
	if tree == nil {
		return builtins, nil
	}

	m, ok := tree.(yaml.MapSlice)
	if !ok {
		return nil, ErrNotMapping.With(slog.String("type", fmt.Sprintf("%T", tree)))
	}

	out := slices.Clone(m)

	for _, b := range builtins {
		if !slices.ContainsFunc(m, func(item yaml.MapItem) bool { return item.Key == b.Key }) {
			out = append(out, b)
		}
	}

	return out, nil
}

// scope is shared by every definition compiled from one tree.
type scope struct {
	root   any
	logger log.Logger
	count  int
}

func (s *scope) compile(ctx context.Context, node any, at []string) (any, error) {
	switch x := node.(type) {
	case yaml.MapSlice:
		if isDefinition(x) {
			return s.define(ctx, x, at)
		}

		out := make(yaml.MapSlice, len(x))

		for i, item := range x {
			v, err := s.compile(ctx, item.Value, append(at, fmt.Sprint(item.Key)))
			if err != nil {
				return nil, err
			}

			out[i] = yaml.MapItem{Key: item.Key, Value: v}
		}

		return out, nil

	case []any:
		out := make([]any, len(x))

		for i, e := range x {
			v, err := s.compile(ctx, e, append(at, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}

			out[i] = v
		}

		return out, nil

	default:
		return node, nil
	}
}

func isDefinition(m yaml.MapSlice) bool {
	return slices.ContainsFunc(m, func(item yaml.MapItem) bool {
		return item.Key == KeyExpr || item.Key == KeyClass
	})
}

func (s *scope) define(ctx context.Context, m yaml.MapSlice, at []string) (ref.Invocable, error) {
	loc := slog.String("location", strings.Join(at, ref.PathSeparator))

	var (
		source, class any
		hasExpr       bool
		hasClass      bool
		params        []string
	)

	for _, item := range m {
		switch item.Key {
		case KeyExpr:
			source, hasExpr = item.Value, true
		case KeyClass:
			class, hasClass = item.Value, true
		case KeyParams:
			p, err := paramNames(item.Value)
			if err != nil {
				return nil, ErrDefinition.Wrap(err).With(loc)
			}

			params = p
		default:
			return nil, ErrDefinition.With(loc,
				slog.String("reason", fmt.Sprintf("unexpected key %v", item.Key)))
		}
	}

	if hasExpr && hasClass {
		return nil, ErrDefinition.With(loc,
			slog.String("reason", "both "+KeyExpr+" and "+KeyClass+" given"))
	}

	s.count++

	s.logger.TraceContext(ctx, "define",
		loc, slog.Bool("class", hasClass), slog.Any("params", params))

	if hasExpr {
		src, ok := source.(string)
		if !ok {
			return nil, ErrDefinition.With(loc,
				slog.String("reason", KeyExpr+" must be a string"))
		}

		program, err := compileSource(src)
		if err != nil {
			return nil, err.With(loc)
		}

		return &exprFunc{scope: s, params: params, program: program, source: src}, nil
	}

	fields, ok := class.(yaml.MapSlice)
	if !ok {
		return nil, ErrDefinition.With(loc,
			slog.String("reason", KeyClass+" must be a mapping"))
	}

	c := &exprClass{scope: s, params: params, fields: make([]classField, len(fields))}

	for i, item := range fields {
		f := classField{name: item.Key, value: item.Value}

		if src, ok := item.Value.(string); ok {
			program, err := compileSource(src)
			if err != nil {
				return nil, err.With(loc, slog.String("field", fmt.Sprint(item.Key)))
			}

			f.program = program
		}

		c.fields[i] = f
	}

	return c, nil
}

func paramNames(v any) ([]string, error) {
	seq, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be a sequence", KeyParams)
	}

	names := make([]string, len(seq))

	for i, e := range seq {
		s, ok := e.(string)
		if !ok || s == "" {
			return nil, fmt.Errorf("%s[%d] must be a non-empty string", KeyParams, i)
		}

		if slices.Contains(names[:i], s) {
			return nil, fmt.Errorf("%s[%d] duplicates %q", KeyParams, i, s)
		}

		names[i] = s
	}

	return names, nil
}

func compileSource(src string) (*vm.Program, *ref.Error) {
	program, err := expr.Compile(src, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, ErrExprCompile.Wrap(err).With(slog.String("source", src))
	}

	return program, nil
}

type depthKey struct{}

// enter returns ctx one call deeper, or an error if [MaxCallDepth] is
// exceeded.
func enter(ctx context.Context) (context.Context, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	depth, _ := ctx.Value(depthKey{}).(int)
	if depth >= MaxCallDepth {
		return nil, ErrExprEvaluate.With(slog.Int("depth", depth),
			slog.String("reason", "call depth exceeded"))
	}

	return context.WithValue(ctx, depthKey{}, depth+1), nil
}

// env builds the expression environment for one invocation.
func (s *scope) env(ctx context.Context, params []string, args []any) map[string]any {
	env := make(map[string]any)

	if m, ok := exprValue(ctx, s.root).(map[string]any); ok {
		env = m
	}

	for i, name := range params {
		env[name] = exprValue(ctx, args[i])
	}

	return env
}

// exprValue converts a tree value to a value expressions can operate on.
func exprValue(ctx context.Context, v any) any {
	switch x := v.(type) {
	case yaml.MapSlice:
		m := make(map[string]any, len(x))
		for _, item := range x {
			m[fmt.Sprint(item.Key)] = exprValue(ctx, item.Value)
		}

		return m

	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = exprValue(ctx, x[i])
		}

		return out

	case ref.Invocable:
		return func(args ...any) (any, error) {
			return x.Invoke(ctx, args)
		}

	default:
		return v
	}
}

func checkArity(inv ref.Invocable, args []any) error {
	if len(args) == inv.Arity() {
		return nil
	}

	return ref.ErrArityMismatch.With(
		slog.String("kind", inv.Kind().String()),
		slog.Int("expected", inv.Arity()),
		slog.Int("got", len(args)),
	)
}

func run(program *vm.Program, env map[string]any, src string) (any, error) {
	out, err := expr.Run(program, env)
	if err != nil {
		return nil, ErrExprEvaluate.Wrap(err).With(slog.String("source", src))
	}

	return normalize(out), nil
}

// exprFunc is a function defined by an expression.
type exprFunc struct {
	scope   *scope
	program *vm.Program
	source  string
	params  []string
}

func (f *exprFunc) Kind() ref.Kind { return ref.KindFunction }
func (f *exprFunc) Arity() int     { return len(f.params) }

func (f *exprFunc) Invoke(ctx context.Context, args []any) (any, error) {
	if err := checkArity(f, args); err != nil {
		return nil, err
	}

	ctx, err := enter(ctx)
	if err != nil {
		return nil, err
	}

	return run(f.program, f.scope.env(ctx, f.params, args), f.source)
}

// String returns the expression source.
func (f *exprFunc) String() string { return f.source }

type classField struct {
	name    any
	value   any
	program *vm.Program
}

// exprClass constructs mappings whose fields are computed by expressions.
type exprClass struct {
	scope  *scope
	fields []classField
	params []string
}

func (c *exprClass) Kind() ref.Kind { return ref.KindConstructor }
func (c *exprClass) Arity() int     { return len(c.params) }

func (c *exprClass) Invoke(ctx context.Context, args []any) (any, error) {
	if err := checkArity(c, args); err != nil {
		return nil, err
	}

	ctx, err := enter(ctx)
	if err != nil {
		return nil, err
	}

	env := c.scope.env(ctx, c.params, args)
	out := make(yaml.MapSlice, len(c.fields))

	for i, f := range c.fields {
		v := f.value

		if f.program != nil {
			v, err = run(f.program, env, f.value.(string))
			if err != nil {
				var e *ref.Error
				if errors.As(err, &e) {
					err = e.With(slog.String("field", fmt.Sprint(f.name)))
				}

				return nil, err
			}
		}

		out[i] = yaml.MapItem{Key: f.name, Value: v}
	}

	return out, nil
}

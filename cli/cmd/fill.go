package cmd

import (
	"context"
	"log/slog"
	"slices"

	"github.com/ardnew/refill/data"
	"github.com/ardnew/refill/log"
	"github.com/ardnew/refill/ref"
)

// Fill replaces the reference descriptors in a document with the values they
// resolve to.
type Fill struct {
	DataFlags `embed:""`

	Input       string      `arg:""          default:"-"                                 help:"Input document or '-' for stdin." name:"input"`
	From        string      `default:""      enum:",yaml,yml,json,hcl"                   help:"Input format (default: by file extension)."`
	Ignore      []string    `help:"Dot-separated input path copied verbatim."            placeholder:"PATH" short:"i"`
	Output      data.Format `default:"yaml"  help:"Output format (yaml, json, dump)."    short:"o"`
	Indent      int         `default:"2"     help:"Indent width of the output."`
	Suggestions int         `default:"3"     help:"Alternative names listed for an unresolved path."`
}

// Run executes the fill command.
func (f *Fill) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if f.Input == stdinSource && slices.Contains(f.Data, stdinSource) {
		return ErrStdinReused
	}

	tree, err := f.load(ctx)
	if err != nil {
		return err
	}

	input, err := f.decodeInput(ctx)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "fill",
		slog.String("input", f.Input),
		slog.Any("ignore", f.Ignore),
	)

	out, err := ref.Fill(ctx, input, tree,
		ref.WithIgnoredPaths(f.Ignore...),
		ref.WithSuggestions(f.Suggestions),
		ref.WithLogger(log.Default()),
	)
	if err != nil {
		return err
	}

	return data.Encode(ctx, stdoutFrom(ctx), out, f.Output, f.Indent)
}

func (f *Fill) decodeInput(ctx context.Context) (any, error) {
	opts := []data.Option{data.WithLogger(log.Default())}

	format := data.DefaultFormat
	if f.From != "" {
		if err := format.UnmarshalText([]byte(f.From)); err != nil {
			return nil, err
		}

		opts = append(opts, data.WithFormat(format))
	}

	if f.Input == stdinSource {
		return data.Decode(ctx, stdinFrom(ctx), format, opts...)
	}

	return data.DecodeFile(ctx, f.Input, opts...)
}

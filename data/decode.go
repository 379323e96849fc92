package data

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"

	"github.com/ardnew/refill/ref"
)

// Decode reads a single document in format f from r.
//
// Mappings decode as [yaml.MapSlice] so insertion order survives every later
// stage. Integers decode as int64, except for unsigned values that do not fit.
// An empty document decodes as nil.
//
// Decoded trees are cached by content; see [ClearCache].
func Decode(ctx context.Context, r io.Reader, f Format, opts ...Option) (any, error) {
	if !f.Decodable() {
		return nil, ErrUnknownFormat.With(slog.String("format", f.String()))
	}

	o := makeOptions(opts...)

	src, err := readAll(r)
	if err != nil {
		return nil, ErrDecode.Wrap(err)
	}

	o.logger.TraceContext(ctx, "decode",
		slog.String("format", f.String()),
		slog.Int("source_bytes", len(src)),
	)

	return decodeCached(ctx, src, f, o)
}

// readAll reads r to EOF through an asynchronous read-ahead buffer.
func readAll(r io.Reader) ([]byte, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	return io.ReadAll(ra)
}

func decodeSource(ctx context.Context, src []byte, f Format, o options) (any, error) {
	if f == FormatHCL {
		return decodeHCL(src, o.filename, o.processEnv)
	}

	return decodeYAML(ctx, bytes.NewReader(src))
}

// DecodeFile decodes the file at path. The format is taken from the file
// extension unless [WithFormat] is given.
func DecodeFile(ctx context.Context, path string, opts ...Option) (any, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, ErrDecode.Wrap(err).With(slog.String("path", path))
	}
	defer file.Close()

	o := makeOptions(opts...)

	f := FormatOf(path)
	if o.format != nil {
		f = *o.format
	}

	v, err := Decode(ctx, file, f, append(opts, withFilename(path))...)
	if err != nil {
		return nil, wrapPath(err, path)
	}

	return v, nil
}

func decodeYAML(ctx context.Context, r io.Reader) (any, error) {
	var v any

	err := yaml.NewDecoder(r, yaml.UseOrderedMap()).DecodeContext(ctx, &v)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}

	if err != nil {
		return nil, ErrDecode.Wrap(err)
	}

	return normalize(v), nil
}

// normalize converts decoded integers to int64 and unordered mappings to
// [yaml.MapSlice].
func normalize(v any) any {
	switch x := v.(type) {
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x)
		}

		return x

	case int:
		return int64(x)

	case yaml.MapSlice:
		for i := range x {
			x[i].Value = normalize(x[i].Value)
		}

		return x

	case []any:
		for i := range x {
			x[i] = normalize(x[i])
		}

		return x

	default:
		return v
	}
}

func wrapPath(err error, path string) error {
	var e *ref.Error
	if errors.As(err, &e) {
		return e.With(slog.String("path", path))
	}

	return err
}

package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/refill/data"
	"github.com/ardnew/refill/log"
	"github.com/ardnew/refill/ref"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, _ := ctx.Value(contextKey{}).(*kong.Context)

	return ktx
}

// kongVar returns the kong variable name, or def if it is undefined.
func kongVar(ctx context.Context, name, def string) string {
	if ktx := kongContextFrom(ctx); ktx != nil {
		if v, ok := ktx.Model.Vars()[name]; ok {
			return v
		}
	}

	return def
}

type (
	stdinKey  struct{}
	stdoutKey struct{}
)

// WithStdio returns a new context.Context whose commands read standard input
// from r and write results to w. Nil values keep the process streams.
func WithStdio(ctx context.Context, r io.Reader, w io.Writer) context.Context {
	if r != nil {
		ctx = context.WithValue(ctx, stdinKey{}, r)
	}

	if w != nil {
		ctx = context.WithValue(ctx, stdoutKey{}, w)
	}

	return ctx
}

func stdinFrom(ctx context.Context) io.Reader {
	if r, ok := ctx.Value(stdinKey{}).(io.Reader); ok {
		return r
	}

	return os.Stdin
}

func stdoutFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(stdoutKey{}).(io.Writer); ok {
		return w
	}

	return os.Stdout
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// uniqueSources removes duplicate paths from sources, comparing resolved
// device/inode pairs. All occurrences of "-" collapse into one stdin source
// placed last so it reads after all regular files.
func uniqueSources(sources []string) (paths []string, stdin bool) {
	seen := make(map[fileKey]struct{}, len(sources))

	for _, src := range sources {
		if src == stdinSource {
			stdin = true

			continue
		}

		key, ok := sourceKey(src)
		if ok {
			if _, dup := seen[key]; dup {
				continue
			}

			seen[key] = struct{}{}
		}

		// Unreadable paths are kept so decoding reports them.
		paths = append(paths, src)
	}

	return paths, stdin
}

func sourceKey(path string) (fileKey, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fileKey{}, false
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return fileKey{}, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return fileKey{}, false
	}

	return makeFileKey(info)
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// DataFlags select and prepare the data map references resolve against.
type DataFlags struct {
	Data     []string `help:"Data file(s) merged left to right, or '-' for stdin" placeholder:"FILE" short:"d"`
	Builtins bool     `default:"true"                                             help:"Include built-in values and functions." negatable:""`
}

// load decodes, merges, and compiles the data files.
func (f DataFlags) load(ctx context.Context) (any, error) {
	paths, stdin := uniqueSources(f.Data)
	trees := make([]any, 0, len(paths)+1)

	for _, p := range paths {
		t, err := data.DecodeFile(ctx, p, data.WithLogger(log.Default()))
		if err != nil {
			return nil, err
		}

		trees = append(trees, t)
	}

	if stdin {
		t, err := data.Decode(ctx, stdinFrom(ctx), data.DefaultFormat,
			data.WithLogger(log.Default()))
		if err != nil {
			return nil, err
		}

		trees = append(trees, t)
	}

	merged, err := data.Merge(trees...)
	if err != nil {
		return nil, err
	}

	var tree any
	if merged != nil {
		tree = merged
	}

	compiled, err := data.Compile(ctx, tree,
		data.WithBuiltins(f.Builtins),
		data.WithLogger(log.Default()),
	)
	if err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "data loaded",
		slog.Int("files", len(paths)),
		slog.Bool("stdin", stdin),
		slog.Int("keys", len(ref.Keys(compiled))),
	)

	return compiled, nil
}

package cmd

import (
	"context"
	"encoding"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/refill/data"
	"github.com/ardnew/refill/log"
	"github.com/ardnew/refill/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	file := slog.String("file", confPath)

	if _, err := os.Stat(confPath); err == nil && !i.Force {
		return ErrWriteConfig.With(file, slog.Bool("exists", true)).Wrap(ErrFileExists)
	}

	f, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.With(file).Wrap(err)
	}
	defer f.Close()

	tree := yaml.MapSlice{{Key: ConfigIdentifier, Value: i.flagValues(ktx)}}

	if err := data.Encode(ctx, f, tree, data.FormatYAML, defaultConfigIndent); err != nil {
		return ErrWriteConfig.With(file).Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file", file)

	return nil
}

// flagValues collects the set, non-empty values of the application's
// top-level flags.
func (i *Init) flagValues(ktx *kong.Context) yaml.MapSlice {
	skip := []string{"help", profile.Tag}

	var out yaml.MapSlice

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(skip, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if v := configValue(ktx.FlagValue(flag)); v != nil {
			out = append(out, yaml.MapItem{Key: flag.Name, Value: v})
		}
	}

	return out
}

// configValue converts a flag value to a configuration file value, or nil if
// the value is empty.
func configValue(v any) any {
	if m, ok := v.(encoding.TextMarshaler); ok {
		text, err := m.MarshalText()
		if err != nil || len(text) == 0 {
			return nil
		}

		return string(text)
	}

	switch x := v.(type) {
	case nil:
		return nil

	case bool, int, int64, uint, uint64, float64:
		return x

	case string:
		if x == "" {
			return nil
		}

		return x
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return fmt.Sprint(v)
	}

	if rv.Len() == 0 {
		return nil
	}

	out := make([]any, rv.Len())
	for i := range out {
		out[i] = configValue(rv.Index(i).Interface())
	}

	return out
}

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/refill/data"
	"github.com/ardnew/refill/log"
	"github.com/ardnew/refill/ref"
)

// resolve returns a [kong.ConfigurationLoader] that reads YAML config files.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx, "config"), "/path/to/config")
//
// The whole file is compiled as a data map, with built-ins, and the mapping
// under key name is filled against it. The filled mapping is converted as
// follows:
//   - Nested mappings are flattened, joining keys with hyphens
//   - Flag names with hyphens (e.g., "log-level") may use underscores
//     in the config file (e.g., "log_level")
//   - Numbers are converted to strings for kong to parse
//   - Sequences are converted to lists
//
// Example config file:
//
//	config:
//	  log:
//	    level: '{env;["REFILL_LOG"]}'
//	  log_format: json
//	  indent: 4
//
// This configuration will be applied to Kong flags:
//
//	--log-level=$REFILL_LOG
//	--log-format=json
//	--indent=4
//
// Command-line flags override config file values. A config file that cannot
// be loaded is reported and ignored.
func resolve(ctx context.Context, name string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		section, err := load(ctx, r, name)
		if err != nil {
			log.WarnContext(ctx, "ignoring configuration file",
				slog.String("section", name),
				slog.Any("error", err),
			)

			return config{}, nil
		}

		out := config{}
		out.flatten("", section)

		return out, nil
	}
}

// load returns the filled mapping under key name, or nil if there is none.
func load(ctx context.Context, r io.Reader, name string) (yaml.MapSlice, error) {
	tree, err := data.Decode(ctx, r, data.FormatYAML, data.WithLogger(log.Default()))
	if err != nil {
		return nil, err
	}

	compiled, err := data.Compile(ctx, tree, data.WithLogger(log.Default()))
	if err != nil {
		return nil, err
	}

	section, ok := ref.Field(compiled, name)
	if !ok {
		return nil, nil
	}

	filled, err := ref.Fill(ctx, section, compiled, ref.WithLogger(log.Default()))
	if err != nil {
		return nil, err
	}

	m, _ := filled.(yaml.MapSlice)

	return m, nil
}

// config implements [kong.Resolver] for YAML configs.
type config map[string]any

func (r config) flatten(prefix string, m yaml.MapSlice) {
	for _, item := range m {
		key := strings.ReplaceAll(fmt.Sprint(item.Key), "_", "-")
		if prefix != "" {
			key = prefix + "-" + key
		}

		if sub, ok := item.Value.(yaml.MapSlice); ok {
			r.flatten(key, sub)

			continue
		}

		r[key] = flagValue(item.Value)
	}
}

// flagValue converts a filled config value to a form kong can parse.
func flagValue(v any) any {
	switch x := v.(type) {
	case int64:
		return strconv.FormatInt(x, 10)

	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)

	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = flagValue(e)
		}

		return out
	}

	if inv, ok := ref.Classify(v); ok {
		return ref.Describe(inv)
	}

	return v
}

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	// Config keys are stored with underscores replaced by hyphens.
	if value, ok := r[strings.ReplaceAll(flag.Name, "_", "-")]; ok {
		return value, nil
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil
}

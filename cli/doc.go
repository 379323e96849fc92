// Package cli contains the command line interface for refill.
//
// # Usage
//
// The default command fills the reference descriptors of a document against
// one or more data files:
//
//	refill -d data.yaml input.yaml
//	refill fill -d base.yaml -d override.json -o json - < input.yaml
//
// The remaining commands are:
//
//	refill parse '{users.alice;[1];true}'
//	refill repl -d data.yaml
//	refill init --force
//
// # Configuration Loader
//
// Flag defaults are read from $XDG_CONFIG_HOME/refill/config (YAML) and its
// JSON sibling config.json. The YAML file is itself a data map: the mapping
// under the "config" key is filled against the rest of the file and the
// built-ins before its values are applied, so flags may be set from
// descriptors such as '{env;["REFILL_LOG"]}'. Environment variables named
// REFILL_<FLAG> are honored as well.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o refill .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/refill/pprof)
package cli

// Package profile provides optional runtime profiling for refill.
//
// Profiling is backed by [github.com/pkg/profile] and must be enabled at
// build time with the "pprof" build tag. Without the tag, [Modes] is empty
// and [Start] always returns a no-op [Stopper].
//
//	stop := profile.Start(
//		profile.WithMode("cpu"),
//		profile.WithPath("/tmp/refill"),
//	)
//	defer stop.Stop()
//
// Profiles are written to the configured directory with names matching the
// mode (cpu.pprof, mem.pprof, and so on) and can be inspected with
// "go tool pprof".
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`

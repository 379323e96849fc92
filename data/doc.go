// Package data reads, compiles, and writes the trees that references are
// filled from and into.
//
// Trees are built from nil, bool, int64, float64, string, []any, and
// [yaml.MapSlice]. [Decode] produces them from YAML, JSON, or HCL, keeping
// mapping order. Identical sources are decoded once per process; see
// [ClearCache]. [Compile] turns declarative definitions into invocables:
//
//	greet:
//	  $params: [name]
//	  $expr: '"hello " + name'
//	point:
//	  $params: [x, y]
//	  $class:
//	    x: x
//	    y: y
//	    norm: x*x + y*y
//
// [Encode] writes a filled tree back out as YAML, JSON, or a Go value dump.
package data

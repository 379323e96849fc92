// Package ref resolves reference descriptors embedded in a tree of data.
//
// A descriptor names a location in a data map by a dot-separated path and
// optionally asks for the value found there to be invoked. [Fill] walks an
// input tree and replaces every descriptor with the value it resolves to.
//
// # Descriptor forms
//
// The structured form is any mapping with a string "path" key:
//
//	path: math.add
//	parameters: [1, 2]
//	call: true
//
// Extra keys are ignored. The "parameters" value must be a sequence and the
// "call" value a boolean; otherwise the mapping is ordinary data. Parameters
// of a structured descriptor may themselves be descriptors, which are filled
// before the outer target is invoked.
//
// The compact form is a single string:
//
//	{math.add;[1,2];true}
//	{math.add;[1,2]}
//	{users.alice}
//	{factory;;false}
//
// The optional parameters are a JSON array literal and are never searched for
// nested descriptors. A string that does not match the compact grammar
// exactly is ordinary data.
//
// # Targets
//
// A path may end at a plain value, a function, or a constructor. Go funcs are
// classified as functions automatically; constructors and custom invocables
// implement [Invocable]. When call is unset, invocable targets are invoked and
// plain values are returned as-is. An explicit call on a plain value is an
// error, as is a parameter count that differs from the target's arity.
//
// # Traversal
//
// Sequences are walked in index order, [github.com/goccy/go-yaml.MapSlice]
// entries in insertion order, and map[string]any entries in sorted key order.
// Invocations therefore happen in a deterministic order. Resolution is
// sequential; the context is checked before each descriptor is resolved and
// is passed to invocables that accept it.
package ref

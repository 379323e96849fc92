package data

import (
	"fmt"
	"iter"
	"path/filepath"
	"strings"
)

// Format identifies a serialization of a data tree.
type Format int

const (
	FormatYAML Format = iota // yaml
	FormatJSON               // json
	FormatHCL                // hcl
	FormatDump               // dump
)

// DefaultFormat is used when no format is given or detected.
const DefaultFormat = FormatYAML

var formatNames = map[Format]string{
	FormatYAML: "yaml",
	FormatJSON: "json",
	FormatHCL:  "hcl",
	FormatDump: "dump",
}

// String returns the name of the format.
func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}

	return fmt.Sprintf("Format(%d)", int(f))
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (f *Format) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))

	switch s {
	case "yml":
		s = "yaml"
	case "":
		*f = DefaultFormat

		return nil
	}

	for k, v := range formatNames {
		if v == s {
			*f = k

			return nil
		}
	}

	return ErrUnknownFormat.Wrap(fmt.Errorf("%q", string(text)))
}

// MarshalText implements [encoding.TextMarshaler].
func (f Format) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// Decodable reports whether [Decode] accepts f.
func (f Format) Decodable() bool { return f == FormatYAML || f == FormatJSON || f == FormatHCL }

// Encodable reports whether [Encode] accepts f.
func (f Format) Encodable() bool { return f == FormatYAML || f == FormatJSON || f == FormatDump }

// OutputFormats returns the names of all formats accepted by [Encode].
func OutputFormats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, f := range []Format{FormatYAML, FormatJSON, FormatDump} {
			if !yield(f.String()) {
				return
			}
		}
	}
}

// FormatOf returns the format implied by the extension of path, or
// [DefaultFormat] if the extension is not recognized.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".hcl":
		return FormatHCL
	default:
		return DefaultFormat
	}
}

package data

import (
	"fmt"
	"log/slog"

	"github.com/goccy/go-yaml"
)

// Merge combines the top-level entries of each mapping in trees, from left to
// right. A key keeps the position of its first occurrence and the value of
// its last. Nil trees are skipped; any other non-mapping yields
// [ErrNotMapping].
func Merge(trees ...any) (yaml.MapSlice, error) {
	var (
		out   yaml.MapSlice
		index = make(map[string]int)
	)

	for i, t := range trees {
		if t == nil {
			continue
		}

		m, ok := t.(yaml.MapSlice)
		if !ok {
			return nil, ErrNotMapping.With(
				slog.Int("index", i),
				slog.String("type", fmt.Sprintf("%T", t)),
			)
		}

		for _, item := range m {
			key := fmt.Sprint(item.Key)

			if j, ok := index[key]; ok {
				out[j].Value = item.Value

				continue
			}

			index[key] = len(out)
			out = append(out, item)
		}
	}

	return out, nil
}

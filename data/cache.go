package data

import (
	"bytes"
	"context"
	"encoding/gob"
	"log/slog"
	"strconv"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/zeebo/xxh3"
)

// decodeCache stores decoded trees keyed by a hash of the source content and
// the options that affect decoding.
var decodeCache sync.Map

// cacheEntry decodes its source at most once.
type cacheEntry struct {
	once sync.Once
	tree any
	err  error
}

// cacheKey hashes src together with the decode options relevant to f.
func cacheKey(src []byte, f Format, o options) string {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)

	_ = enc.Encode(f)
	_ = enc.Encode(o.filename)

	if f == FormatHCL {
		_ = enc.Encode(o.processEnv)
	}

	return strconv.FormatUint(xxh3.Hash(src)^xxh3.Hash(buf.Bytes()), 36)
}

func decodeCached(ctx context.Context, src []byte, f Format, o options) (any, error) {
	key := cacheKey(src, f, o)

	v, hit := decodeCache.LoadOrStore(key, new(cacheEntry))
	entry, _ := v.(*cacheEntry)

	o.logger.TraceContext(ctx, "cache lookup",
		slog.String("key", key),
		slog.Bool("cache_hit", hit),
	)

	entry.once.Do(func() {
		entry.tree, entry.err = decodeSource(ctx, src, f, o)
	})

	if entry.err != nil {
		decodeCache.CompareAndDelete(key, entry)

		return nil, entry.err
	}

	return clone(entry.tree), nil
}

// clone copies the mappings and sequences of tree so callers never share
// them with the cache.
func clone(tree any) any {
	switch x := tree.(type) {
	case yaml.MapSlice:
		out := make(yaml.MapSlice, len(x))
		for i, item := range x {
			out[i] = yaml.MapItem{Key: item.Key, Value: clone(item.Value)}
		}

		return out

	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = clone(e)
		}

		return out

	default:
		return tree
	}
}

// ClearCache removes all cached decoded trees.
func ClearCache() {
	decodeCache.Clear()
}

package values

import (
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"
)

// LookupFunc resolves an environment variable by name.
type LookupFunc func(key string) (string, bool)

// Overlay returns a copy of ctx where every existing key that lookup resolves
// is replaced by the looked-up string. Keys not already in ctx are never
// added. The overridden keys are returned in sorted order.
func Overlay(ctx Context, lookup LookupFunc) (Context, []string) {
	merged := make(Context, len(ctx))
	var overridden []string

	for key, value := range ctx {
		if env, ok := lookup(key); ok {
			merged[key] = env
			overridden = append(overridden, key)
			continue
		}
		merged[key] = value
	}

	sort.Strings(overridden)
	return merged, overridden
}

// ChainLookup returns a LookupFunc that tries each lookup in order and
// returns the first hit.
func ChainLookup(lookups ...LookupFunc) LookupFunc {
	return func(key string) (string, bool) {
		for _, lookup := range lookups {
			if lookup == nil {
				continue
			}
			if v, ok := lookup(key); ok {
				return v, true
			}
		}
		return "", false
	}
}

// MapLookup adapts a map to a LookupFunc.
func MapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

// DotenvLookup reads a dotenv file and returns a lookup that prefers the
// process environment over the file, the same precedence godotenv.Load uses.
// The process environment is not modified.
func DotenvLookup(path string) (LookupFunc, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	return ChainLookup(os.LookupEnv, MapLookup(env)), nil
}

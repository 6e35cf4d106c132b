package cyq

import (
	"maps"
	"regexp"
	"strconv"
)

// Params maps parameter names to bound values. Every name referenced as
// $name in a built query has exactly one entry.
type Params map[string]any

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// normalizeName maps each run of characters outside [A-Za-z0-9_] to "_".
func normalizeName(key string) string {
	return unsafeNameChars.ReplaceAllString(key, "_")
}

// paramName joins prefix and the normalized key.
func paramName(prefix, key string) string {
	key = normalizeName(key)
	if prefix == "" {
		return key
	}

	return prefix + "_" + key
}

// allocate binds value under the first unused name out of base, base_2,
// base_3, ... and returns that name. Existing entries are never overwritten.
func (p Params) allocate(prefix, key string, value any) string {
	base := paramName(prefix, key)
	name := base

	for attempt := 2; ; attempt++ {
		if _, taken := p[name]; !taken {
			break
		}

		name = base + "_" + strconv.Itoa(attempt)
	}

	p[name] = value

	return name
}

// put binds value under name directly. A repeated name keeps the last value.
func (p Params) put(name string, value any) {
	p[name] = value
}

// Clone returns a shallow copy.
func (p Params) Clone() Params {
	if p == nil {
		return Params{}
	}

	return maps.Clone(p)
}

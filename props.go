package cyq

import (
	"fmt"
	"slices"
)

// Prop is a single key/value pair of an ordered property map.
type Prop struct {
	Key   string
	Value any
}

// Props is an ordered property map. Expansion into conditions, SET items
// or inline pattern properties follows slice order.
type Props []Prop

// P builds Props from alternating keys and values:
//
//	cyq.P("name", "Alice", "age", 30)
//
// It panics when given an odd number of arguments or a non-string key, the
// same way regexp.MustCompile panics on a bad literal.
func P(pairs ...any) Props {
	if len(pairs)%2 != 0 {
		panic(fmt.Sprintf("cyq: P expects key/value pairs, got %d arguments", len(pairs)))
	}

	props := make(Props, 0, len(pairs)/2)

	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("cyq: P key at position %d is %T, want string", i, pairs[i]))
		}

		props = append(props, Prop{Key: key, Value: pairs[i+1]})
	}

	return props
}

// PropsFromMap converts a map into Props ordered by key.
func PropsFromMap(m map[string]any) Props {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	props := make(Props, len(keys))
	for i, k := range keys {
		props[i] = Prop{Key: k, Value: m[k]}
	}

	return props
}

// Keys returns the keys in order.
func (p Props) Keys() []string {
	keys := make([]string, len(p))
	for i, prop := range p {
		keys[i] = prop.Key
	}

	return keys
}

// Get returns the value of the first entry with key.
func (p Props) Get(key string) (any, bool) {
	for _, prop := range p {
		if prop.Key == key {
			return prop.Value, true
		}
	}

	return nil, false
}

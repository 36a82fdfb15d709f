package cache

import (
	"fmt"
	"sort"
	"strings"
)

// AllTendersKey is the key under which the full tender snapshot is published.
var AllTendersKey = Key{Resource: "tenders", Scope: "all"}

// Key represents a unique identifier for a cached value.
type Key struct {
	// Resource is the kind of value cached (e.g., "tenders")
	Resource string

	// Scope narrows the resource (e.g., "all")
	Scope string

	// Params are optional qualifiers (e.g., {"country": "pl"})
	Params map[string]string
}

// String generates a deterministic cache key string.
// Format: resource:scope:param1=val1:param2=val2
//
// Example:
//
//	tenders:all
func (k Key) String() string {
	parts := make([]string, 0, 2+len(k.Params))

	if r := strings.Trim(k.Resource, ":"); r != "" {
		parts = append(parts, r)
	}
	if s := strings.Trim(k.Scope, ":"); s != "" {
		parts = append(parts, s)
	}

	// Add params (sorted for determinism)
	if len(k.Params) > 0 {
		keys := make([]string, 0, len(k.Params))
		for key := range k.Params {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.Params[key]))
		}
	}

	return strings.Join(parts, ":")
}

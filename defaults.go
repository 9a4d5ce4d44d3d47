package goacornstash

import "time"

// DefaultTTL is the freshness window used when WithTTL is not supplied.
const DefaultTTL = 5 * time.Minute

// DefaultOptions returns the recommended set of options for production use.
// Currently this includes a modest per-key trigger budget; additional
// defaults may be added in future versions.
func DefaultOptions() []Option {
	return []Option{
		WithTriggerLimit(1, 3),
	}
}

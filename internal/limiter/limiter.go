// Package limiter trims result lists to a window: the first N after an
// offset, or the last N.
package limiter

import "fmt"

// Config holds the windowing parameters.
type Config struct {
	Limit  int // keep at most this many records (0 = unlimited)
	Offset int // skip the first N records
	Tail   int // keep only the last N records; excludes Limit and overrides Offset
}

// Validate rejects negative values and Limit combined with Tail.
func (c Config) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must be non-negative, got %d", c.Limit)
	}
	if c.Offset < 0 {
		return fmt.Errorf("--offset must be non-negative, got %d", c.Offset)
	}
	if c.Tail < 0 {
		return fmt.Errorf("--tail must be non-negative, got %d", c.Tail)
	}
	if c.Limit > 0 && c.Tail > 0 {
		return fmt.Errorf("--limit and --tail are mutually exclusive")
	}
	return nil
}

// IsActive reports whether any windowing is configured.
func (c Config) IsActive() bool {
	return c.Limit > 0 || c.Offset > 0 || c.Tail > 0
}

// Window returns the [start, end) bounds the config selects out of n items.
func (c Config) Window(n int) (start, end int) {
	if c.Tail > 0 {
		return max(n-c.Tail, 0), n
	}
	start = min(c.Offset, n)
	end = n
	if c.Limit > 0 {
		end = min(start+c.Limit, n)
	}
	return start, end
}

// Apply returns the selected window of items. The result shares the backing
// array of items.
func Apply[T any](c Config, items []T) []T {
	if !c.IsActive() {
		return items
	}
	start, end := c.Window(len(items))
	return items[start:end]
}

// Truncated reports how many of n items the window drops.
func (c Config) Truncated(n int) int {
	start, end := c.Window(n)
	return n - (end - start)
}

// Package retention implements the count and age bounds applied to clipboard
// stores. Everything here is a pure function over an ordered, newest-first
// sequence: inputs are never modified and relative order is always kept.
package retention

import "time"

// Policy bundles the two independent bounds of a store.
// A zero MaxItems or MaxAge disables that bound.
type Policy struct {
	MaxItems int
	MaxAge   time.Duration
}

// Truncate keeps the first limit items and returns the rest as evicted.
// Sequences are newest first, so the evicted tail holds the oldest entries.
func Truncate[T any](items []T, limit int) (kept, evicted []T) {
	if limit <= 0 || len(items) <= limit {
		return clone(items), nil
	}
	return clone(items[:limit]), clone(items[limit:])
}

// Expire splits items into those younger than or exactly maxAge and those
// strictly older. stamp reports an item's creation time; items without one
// never expire.
func Expire[T any](items []T, now time.Time, maxAge time.Duration, stamp func(T) (time.Time, bool)) (kept, expired []T) {
	if maxAge <= 0 {
		return clone(items), nil
	}
	kept = make([]T, 0, len(items))
	for _, item := range items {
		created, ok := stamp(item)
		if ok && now.Sub(created) > maxAge {
			expired = append(expired, item)
			continue
		}
		kept = append(kept, item)
	}
	return kept, expired
}

// Apply runs age expiry followed by count truncation under p.
func Apply[T any](p Policy, items []T, now time.Time, stamp func(T) (time.Time, bool)) (kept, removed []T) {
	kept, removed = Expire(items, now, p.MaxAge, stamp)
	kept, evicted := Truncate(kept, p.MaxItems)
	return kept, append(removed, evicted...)
}

func clone[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}

// Package metric provides value tracking for automatic state registration
package metric

import (
	"reflect"
)

// Category names a class of tracked values
type Category string

const (
	// CategoryVariables tracks state variables
	CategoryVariables Category = "variables"
	// CategoryMetrics tracks child metrics
	CategoryMetrics Category = "metrics"
)

// rule pairs a predicate with the action taken on a match
type rule struct {
	category Category
	matches  func(any) bool
	record   func(any)
}

// Tracker classifies arbitrary values and records each match into its
// category registry exactly once, keyed by identity. It is the explicit
// counterpart of attribute-assignment interception: metric constructors call
// Track (or the Register helpers on Base) for every piece of state they own.
// PRINCIPLES:
// - SRP: Only classifies and de-duplicates, storage lives on Base
// - OCP: New categories are added as rules, not code changes here
type Tracker struct {
	rules []rule
	seen  map[Category]map[any]struct{}
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		seen: make(map[Category]map[any]struct{}),
	}
}

// AddRule registers a category with its predicate and record action
func (t *Tracker) AddRule(category Category, matches func(any) bool, record func(any)) {
	t.rules = append(t.rules, rule{category: category, matches: matches, record: record})
	if t.seen[category] == nil {
		t.seen[category] = make(map[any]struct{})
	}
}

// Track classifies value and records first-time matches. Slices and maps are
// walked so that nested state is found regardless of how it is grouped. The
// value is returned unchanged so call sites can track and assign in one step.
// Tracked values are expected to be pointers; de-duplication keys on identity,
// and a non-comparable value is recorded on every call instead.
func (t *Tracker) Track(value any) any {
	t.track(value)
	return value
}

func (t *Tracker) track(value any) {
	if value == nil {
		return
	}
	for _, r := range t.rules {
		if r.matches(value) {
			if t.MarkSeen(r.category, value) {
				r.record(value)
			}
			return
		}
	}

	// Not a tracked value itself: descend into containers
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			t.track(rv.Index(i).Interface())
		}
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			t.track(iter.Value().Interface())
		}
	}
}

// MarkSeen records the identity of value under category and reports whether
// it was seen for the first time. Tracking is idempotent through this set.
// Non-comparable values cannot key the set and are treated as first-time
// on every call.
func (t *Tracker) MarkSeen(category Category, value any) bool {
	if !isComparable(value) {
		return true
	}
	set, ok := t.seen[category]
	if !ok {
		set = make(map[any]struct{})
		t.seen[category] = set
	}
	if _, dup := set[value]; dup {
		return false
	}
	set[value] = struct{}{}
	return true
}

// Seen reports whether value was already recorded under category
func (t *Tracker) Seen(category Category, value any) bool {
	if !isComparable(value) {
		return false
	}
	_, ok := t.seen[category][value]
	return ok
}

// isComparable reports whether value can be used as a map key. Struct values
// carrying slices or maps, passed by value instead of by pointer, fail this.
func isComparable(value any) bool {
	if value == nil {
		return true
	}
	return reflect.TypeOf(value).Comparable()
}

// Package naming provides snake-case conversion and process-wide unique
// auto-naming for metrics and state variables that are created without an
// explicit name.
package naming

import (
	"fmt"
	"strings"
	"sync"
	"unicode"
)

// counters tracks how many times each base name has been handed out.
var (
	mu       sync.Mutex
	counters = map[string]int{}
)

// ToSnakeCase converts a CamelCase type name to snake_case
// ("BinaryAccuracy" -> "binary_accuracy").
func ToSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			// Insert a separator at lower->Upper and Upper->Upper+lower boundaries
			if i > 0 && (unicode.IsLower(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// AutoName returns a unique snake_case name derived from prefix. The first
// call for a prefix returns the bare name; subsequent calls append an
// increasing suffix ("sum", "sum_1", "sum_2", ...).
func AutoName(prefix string) string {
	base := ToSnakeCase(prefix)
	if base == "" {
		base = "metric"
	}

	mu.Lock()
	defer mu.Unlock()

	n := counters[base]
	counters[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s_%d", base, n)
}

// Reset clears the auto-name counters. Intended for tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	counters = map[string]int{}
}

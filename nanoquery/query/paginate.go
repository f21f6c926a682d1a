package query

// Skip drops the first n items. A non-positive n is a no-op and skipping
// past the end yields an empty slice.
func Skip[T any](items []T, n int) []T {
	if n <= 0 {
		return items
	}
	if n >= len(items) {
		return items[:0]
	}
	return items[n:]
}

// Limit keeps at most n items. A limit of zero means "no limit", not "no
// rows"; existing callers depend on that.
func Limit[T any](items []T, n int) []T {
	if n <= 0 || n >= len(items) {
		return items
	}
	return items[:n]
}

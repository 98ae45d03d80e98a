package util

import "strconv"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxWindow bounds from+limit, matching the search index result window.
	MaxWindow = 10000
)

// Calculate turns a 1-based page and a page size into an offset and limit.
// Pages past MaxWindow are clamped to the last reachable one.
func Calculate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	if last := MaxWindow / size; page > last {
		page = last
	}
	from = (page - 1) * size
	return from, size
}

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

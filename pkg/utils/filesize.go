package utils

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// IEC size units
const (
	KB = 1 << (10 * (iota + 1))
	MB
	GB
)

// FormatBytes renders n with IEC units ("1.5 MiB"). Negative sizes print as
// zero.
func FormatBytes(n int64) string {
	return humanize.IBytes(uint64(max(n, 0)))
}

// ParseSize accepts plain byte counts and both SI ("64KB") and IEC
// ("64KiB") suffixes.
func ParseSize(size string) (int64, error) {
	s := strings.TrimSpace(size)
	if s == "" {
		return 0, fmt.Errorf("invalid size format: %q", size)
	}

	n, err := humanize.ParseBytes(s)
	switch {
	case err != nil:
		return 0, fmt.Errorf("invalid size format: %s: %w", size, err)
	case n > math.MaxInt64:
		return 0, fmt.Errorf("size out of range: %s", size)
	}
	return int64(n), nil
}

// SumSizes totals sizes
func SumSizes(sizes []int64) int64 {
	var total int64
	for _, s := range sizes {
		total += s
	}
	return total
}

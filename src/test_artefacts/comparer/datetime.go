package comparer

import (
	"time"

	"github.com/google/go-cmp/cmp"
)

func TimeWithinTolerance(toleranceMs int) cmp.Option {
	tolerance := time.Duration(toleranceMs) * time.Millisecond

	return cmp.Comparer(func(x, y time.Time) bool {
		diff := x.Sub(y)
		if diff < 0 {
			diff = -diff
		}
		return diff <= tolerance
	})
}

// StampWithin reports whether stamp is an RFC 3339 timestamp no further than
// tolerance away from expected.
func StampWithin(stamp any, expected time.Time, tolerance time.Duration) bool {
	text, ok := stamp.(string)
	if !ok {
		return false
	}

	parsed, err := time.Parse(time.RFC3339, text)
	if err != nil {
		return false
	}

	return cmp.Equal(parsed, expected, TimeWithinTolerance(int(tolerance/time.Millisecond)))
}

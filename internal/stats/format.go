package stats

import (
	"strconv"
	"strings"
)

const (
	// Binary unit multipliers (1024-based).
	kib = 1024
	mib = kib * 1024
)

// Format renders a byte count for an interval file.
//
// With scaling disabled the result is the plain decimal count. With scaling
// enabled, counts above 1 MiB are shown in MB and counts above 1 KiB in KB, with
// the fraction truncated (not rounded) to one digit; smaller counts get a "B"
// suffix. The comparisons are strict, so exactly 1024 is "1024B" and exactly
// 1048576 is "1024KB".
func Format(bytes uint64, scaling bool) string {
	if !scaling {
		return strconv.FormatUint(bytes, 10)
	}

	switch {
	case bytes > mib:
		return truncateFraction(float64(bytes)/mib) + "MB"
	case bytes > kib:
		return truncateFraction(float64(bytes)/kib) + "KB"
	default:
		return strconv.FormatUint(bytes, 10) + "B"
	}
}

// truncateFraction formats v in its shortest decimal form and cuts everything
// after the first fractional digit. Integral values have no decimal point and
// are returned unchanged.
func truncateFraction(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if dot := strings.IndexByte(s, '.'); dot >= 0 && len(s) > dot+2 {
		s = s[:dot+2]
	}
	return s
}

// Package state persists counter values between ticks as small text files.
//
// Reads are best-effort: a missing or malformed file counts as zero so that a
// first run or a deleted file never stops the probe. Writes report every
// failure, because a lost write leaves the next delta without a valid baseline.
package state

import (
	"os"
	"strconv"
	"strings"
)

// LoadCounter returns the decimal counter stored in path, or 0 if the file
// cannot be read or does not hold a non-negative integer.
func LoadCounter(path string) uint64 {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from local configuration
	if err != nil {
		return 0
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// StoreCounter replaces the content of path with the decimal text of value.
func StoreCounter(path string, value uint64) error {
	return StoreText(path, strconv.FormatUint(value, 10))
}

// StoreText replaces the content of path with text. No newline is appended.
func StoreText(path, text string) error {
	return replaceFile(path, []byte(text))
}

package stats

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultSourcePath is the kernel interface statistics table.
const DefaultSourcePath = "/proc/net/dev"

// Column positions of the byte counters in a whitespace-split table line.
// Index 0 is the interface name ("eth0:"), 1 is rx bytes, 9 is tx bytes.
const (
	recvField = 1
	sendField = 9
)

var (
	// ErrDeviceNotFound means no table line starts with the interface name.
	ErrDeviceNotFound = errors.New("device not found")
	// ErrTooFewFields means the matched line ends before the send counter.
	ErrTooFewFields = errors.New("too few fields")
	// ErrBadField means a counter column is not a non-negative decimal integer.
	ErrBadField = errors.New("bad counter field")
	// ErrSourceUnavailable means the statistics table could not be read.
	ErrSourceUnavailable = errors.New("statistics source unavailable")
)

// ParseError describes why counters for a device could not be obtained.
// Kind is one of the Err* sentinels above and can be matched with errors.Is.
type ParseError struct {
	Kind   error
	Device string
	// Path is the statistics table, empty when parsing in-memory data.
	Path string
	// Field is the column index for ErrBadField, otherwise -1.
	Field int
	Err   error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())
	if e.Device != "" {
		fmt.Fprintf(&b, " for device %q", e.Device)
	}
	if e.Field >= 0 {
		fmt.Fprintf(&b, " (column %d)", e.Field)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Source reads byte counters from a /proc/net/dev style table.
type Source struct {
	path string
}

// NewSource creates a Source reading the table at path.
// If path is empty, DefaultSourcePath is used.
func NewSource(path string) *Source {
	if path == "" {
		path = DefaultSourcePath
	}
	return &Source{path: path}
}

// Path returns the table the source reads from.
func (s *Source) Path() string {
	return s.path
}

// Read returns the current counters of iface.
func (s *Source) Read(iface string) (ByteState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ByteState{}, &ParseError{Kind: ErrSourceUnavailable, Device: iface, Path: s.path, Field: -1, Err: err}
	}

	state, err := Parse(data, iface)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = s.path
		}
		return ByteState{}, err
	}
	return state, nil
}

// Parse extracts the counters of iface from the text of a statistics table.
//
// The first line whose trimmed content starts with iface is used. Column 1 of
// that line is the received byte count and column 9 the sent byte count; the
// remaining columns are not inspected.
func Parse(data []byte, iface string) (ByteState, error) {
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), iface) {
			continue
		}
		return parseLine(line, iface)
	}
	return ByteState{}, &ParseError{Kind: ErrDeviceNotFound, Device: iface, Field: -1}
}

func parseLine(line, iface string) (ByteState, error) {
	fields := strings.Fields(line)

	if len(fields) <= recvField {
		return ByteState{}, &ParseError{Kind: ErrTooFewFields, Device: iface, Field: -1}
	}
	recv, err := parseCounter(fields, recvField, iface)
	if err != nil {
		return ByteState{}, err
	}

	if len(fields) <= sendField {
		return ByteState{}, &ParseError{Kind: ErrTooFewFields, Device: iface, Field: -1}
	}
	send, err := parseCounter(fields, sendField, iface)
	if err != nil {
		return ByteState{}, err
	}

	return ByteState{Recv: recv, Send: send}, nil
}

func parseCounter(fields []string, idx int, iface string) (uint64, error) {
	v, err := strconv.ParseUint(fields[idx], 10, 64)
	if err != nil {
		return 0, &ParseError{Kind: ErrBadField, Device: iface, Field: idx, Err: err}
	}
	return v, nil
}

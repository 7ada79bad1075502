// Package stats reads interface byte counters from the kernel statistics table
// and renders byte counts for the interval files.
package stats

// ByteState holds the cumulative receive and send byte counters of one interface.
type ByteState struct {
	// Recv is the number of bytes received.
	Recv uint64
	// Send is the number of bytes transmitted.
	Send uint64
}

// Sub returns the field-wise difference s - prev. A field whose previous value
// exceeds the current one yields 0, so a counter reset never wraps around.
func (s ByteState) Sub(prev ByteState) ByteState {
	return ByteState{
		Recv: clampedSub(s.Recv, prev.Recv),
		Send: clampedSub(s.Send, prev.Send),
	}
}

func clampedSub(cur, prev uint64) uint64 {
	if cur < prev {
		return 0
	}
	return cur - prev
}

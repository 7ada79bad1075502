// Package probe turns consecutive counter samples of one interface into
// per-interval byte counts and persists both the totals and the interval values.
package probe

import (
	"github.com/shini4i/netrate/internal/state"
	"github.com/shini4i/netrate/internal/stats"
)

// CounterSource provides the current cumulative counters of an interface.
type CounterSource interface {
	Read(iface string) (stats.ByteState, error)
}

// Engine computes deltas against the totals persisted by the previous tick.
type Engine struct {
	source CounterSource
}

// NewEngine creates an Engine reading counters from source.
func NewEngine(source CounterSource) *Engine {
	return &Engine{source: source}
}

// Sample loads the previous totals, reads the current counters of iface,
// stores them as the new totals and returns the difference.
//
// A read failure aborts before anything is written. The send total is written
// before the receive total; if the second write fails the files disagree until
// the next successful tick rewrites both.
func (e *Engine) Sample(iface, totalSendPath, totalRecvPath string) (stats.ByteState, error) {
	previous := stats.ByteState{
		Send: state.LoadCounter(totalSendPath),
		Recv: state.LoadCounter(totalRecvPath),
	}

	current, err := e.source.Read(iface)
	if err != nil {
		return stats.ByteState{}, err
	}

	if err := state.StoreCounter(totalSendPath, current.Send); err != nil {
		return stats.ByteState{}, err
	}
	if err := state.StoreCounter(totalRecvPath, current.Recv); err != nil {
		return stats.ByteState{}, err
	}

	return current.Sub(previous), nil
}

package probe

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/shini4i/netrate/internal/state"
	"github.com/shini4i/netrate/internal/stats"
)

// Files holds the absolute paths of the four output files.
type Files struct {
	TotalSend    string
	TotalRecv    string
	IntervalSend string
	IntervalRecv string
}

// Config describes what a Probe samples and where it writes.
type Config struct {
	Interface string
	// Scaling selects human-readable B/KB/MB values for the interval files.
	Scaling bool
	Files   Files
}

// Interval is the outcome of one tick.
type Interval struct {
	Delta stats.ByteState
	// Recv and Send are the values written to the interval files.
	Recv string
	Send string
}

// Probe performs one sampling step per call to Tick.
type Probe struct {
	cfg    Config
	engine *Engine
}

// New creates a Probe for cfg reading counters from source.
func New(cfg Config, source CounterSource) *Probe {
	return &Probe{
		cfg:    cfg,
		engine: NewEngine(source),
	}
}

// Tick samples the interface, updates the totals and writes the interval files.
// Any error leaves the interval files from the previous tick untouched.
func (p *Probe) Tick() (Interval, error) {
	delta, err := p.engine.Sample(p.cfg.Interface, p.cfg.Files.TotalSend, p.cfg.Files.TotalRecv)
	if err != nil {
		return Interval{}, fmt.Errorf("sample %s: %w", p.cfg.Interface, err)
	}

	iv := Interval{
		Delta: delta,
		Recv:  stats.Format(delta.Recv, p.cfg.Scaling),
		Send:  stats.Format(delta.Send, p.cfg.Scaling),
	}

	if err := state.StoreText(p.cfg.Files.IntervalSend, iv.Send); err != nil {
		return Interval{}, err
	}
	if err := state.StoreText(p.cfg.Files.IntervalRecv, iv.Recv); err != nil {
		return Interval{}, err
	}

	slog.Debug("Interval written",
		"interface", p.cfg.Interface,
		"recv", humanize.IBytes(delta.Recv),
		"send", humanize.IBytes(delta.Send),
	)
	return iv, nil
}

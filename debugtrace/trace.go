// Package debugtrace implements the probe bookkeeping and trace dump
// described in spec.md §4.10: a DebugProbe step in a schedule records the
// value of its source slot, and the Controller collects one ValueSummary
// per probe per frame for the debug UI to read by id. The compiler in this
// tree emits no DebugProbe steps; a port's slot is found through
// CompiledProgram.DebugIndex instead.
package debugtrace

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
)

// LevelTrace is a custom slog level above Info, the same convention the
// teacher uses for its waveform/trace logging.
const LevelTrace slog.Level = slog.LevelInfo + 1

// ValueSummary is one probe's recorded value for one frame.
type ValueSummary struct {
	ProbeID string
	FrameID uint64
	TAbsMs  float64
	Value   any
}

// Controller collects ValueSummary records per probe id. Probes carry zero
// cost when disabled: Record is a no-op unless the probe was Enable'd.
type Controller struct {
	mu      sync.Mutex
	enabled map[string]bool
	latest  map[string]ValueSummary
	history map[string][]ValueSummary
	maxKeep int
}

// NewController creates a controller that keeps up to maxKeep history
// entries per probe (0 keeps only the latest).
func NewController(maxKeep int) *Controller {
	return &Controller{
		enabled: make(map[string]bool),
		latest:  make(map[string]ValueSummary),
		history: make(map[string][]ValueSummary),
		maxKeep: maxKeep,
	}
}

// Enable arms a probe id so Record actually stores values for it.
func (c *Controller) Enable(probeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled[probeID] = true
}

// Disable disarms a probe id; subsequent Record calls for it are free.
func (c *Controller) Disable(probeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.enabled, probeID)
}

// Record stores a frame's value for a probe if it is enabled.
func (c *Controller) Record(s ValueSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled[s.ProbeID] {
		return
	}
	c.latest[s.ProbeID] = s
	if c.maxKeep > 0 {
		h := append(c.history[s.ProbeID], s)
		if len(h) > c.maxKeep {
			h = h[len(h)-c.maxKeep:]
		}
		c.history[s.ProbeID] = h
	}
	slog.Log(context.Background(), LevelTrace, "probe",
		slog.String("probeId", s.ProbeID), slog.Uint64("frameId", s.FrameID), slog.Any("value", s.Value))
}

// Latest returns the most recent summary for a probe id, and whether one
// exists yet.
func (c *Controller) Latest(probeID string) (ValueSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.latest[probeID]
	return v, ok
}

// History returns the kept history for a probe id, oldest first.
func (c *Controller) History(probeID string) []ValueSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ValueSummary(nil), c.history[probeID]...)
}

// DumpTable renders every probe's latest value as a table, the same
// go-pretty usage the teacher's PrintState uses for its register/buffer
// dumps.
func (c *Controller) DumpTable() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := table.NewWriter()
	t.SetTitle("Debug Probes")
	t.AppendHeader(table.Row{"Probe", "Frame", "tAbsMs", "Value"})
	for id, s := range c.latest {
		t.AppendRow(table.Row{id, s.FrameID, fmt.Sprintf("%.2f", s.TAbsMs), fmt.Sprintf("%v", s.Value)})
	}
	return t.Render()
}

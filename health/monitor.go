// Package health supplements spec.md §7's "a health monitor counts these
// [NaN/Infinity signal writes] and may surface via a status bus" with a
// concrete implementation: a non-finite counter plus gopsutil system-wide
// memory/CPU stats, returned together as one Status snapshot on demand.
package health

import (
	"sync/atomic"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"github.com/sarchlab/patchflow/ir"
)

// Status is one frame's snapshot of health counters.
type Status struct {
	FrameID        uint64
	NonFiniteCount uint64
	ProcessMemMB   float64
	ProcessCPUPct  float64
}

// Monitor counts non-finite signal writes across frames and samples
// system-wide resource usage on demand. It is safe for concurrent use: NaNCounter may
// be called from the executor's frame loop while Snapshot is read from a
// debugserver handler on a different goroutine.
type Monitor struct {
	nonFinite    atomic.Uint64
	lastOffender atomic.Int64 // last ir.ValueSlot that went non-finite, biased by 1
}

// NewMonitor creates an empty monitor.
func NewMonitor() *Monitor { return &Monitor{} }

// NaNCounter is the callback runtime.ExecutorBuilder.WithNaNCounter expects:
// it increments the non-finite counter and records the offending slot.
func (m *Monitor) NaNCounter(slot ir.ValueSlot) {
	m.nonFinite.Add(1)
	m.lastOffender.Store(int64(slot) + 1)
}

// Count returns the total number of non-finite signal writes observed.
func (m *Monitor) Count() uint64 { return m.nonFinite.Load() }

// LastOffender returns the most recent slot that went non-finite, and
// whether any has yet.
func (m *Monitor) LastOffender() (ir.ValueSlot, bool) {
	v := m.lastOffender.Load()
	if v == 0 {
		return 0, false
	}
	return ir.ValueSlot(v - 1), true
}

// Snapshot samples system-wide used memory and CPU percentage via gopsutil
// (not this process's own usage) and combines it
// with the running non-finite count into one Status record.
func (m *Monitor) Snapshot(frameID uint64) Status {
	s := Status{FrameID: frameID, NonFiniteCount: m.nonFinite.Load()}

	if vm, err := mem.VirtualMemory(); err == nil {
		s.ProcessMemMB = float64(vm.Used) / (1024 * 1024)
	}
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		s.ProcessCPUPct = pct[0]
	}
	return s
}

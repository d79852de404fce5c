// Package gas bounds the work spent resolving types.
package gas

import (
	"math"
	"sync/atomic"

	"github.com/wippyai/modcache/errors"
)

// Meter is charged at every resolution step. Charge fails once the budget is
// exhausted, leaving the remaining budget untouched.
type Meter interface {
	Charge(units uint64) error
	Remaining() uint64
}

// BoundedMeter is a Meter with a fixed budget. It is safe for concurrent use.
type BoundedMeter struct {
	remaining atomic.Uint64
	consumed  atomic.Uint64
}

// NewMeter returns a meter holding budget units.
func NewMeter(budget uint64) *BoundedMeter {
	m := &BoundedMeter{}
	m.remaining.Store(budget)
	return m
}

func (m *BoundedMeter) Charge(units uint64) error {
	for {
		cur := m.remaining.Load()
		if units > cur {
			return errors.OutOfGas(units, cur)
		}
		if m.remaining.CompareAndSwap(cur, cur-units) {
			m.consumed.Add(units)
			return nil
		}
	}
}

func (m *BoundedMeter) Remaining() uint64 { return m.remaining.Load() }

// Consumed returns the units charged so far.
func (m *BoundedMeter) Consumed() uint64 { return m.consumed.Load() }

type unmetered struct{}

func (unmetered) Charge(uint64) error { return nil }
func (unmetered) Remaining() uint64   { return math.MaxUint64 }

// Unmetered never runs out. Resolution under it is unbounded for recursive
// declarations, so use it only with trusted modules.
var Unmetered Meter = unmetered{}

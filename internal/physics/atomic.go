package physics

import (
	"math"
	"sync/atomic"
)

// AtomicFloat is a float64 that pilots write while integration reads it.
type AtomicFloat struct {
	bits atomic.Uint64
}

func (f *AtomicFloat) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

func (f *AtomicFloat) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}

// StoreMax keeps the larger of the current and the given value.
func (f *AtomicFloat) StoreMax(v float64) {
	for {
		old := f.bits.Load()
		if math.Float64frombits(old) >= v {
			return
		}
		if f.bits.CompareAndSwap(old, math.Float64bits(v)) {
			return
		}
	}
}

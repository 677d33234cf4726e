package fastid

import (
	"sync"
	"time"
)

// DefaultEpoch is the reference instant for tick 0, in nanoseconds since
// the Unix epoch (2018-06-01 00:00:00 UTC). With the default 40-bit tick
// field and the 2^20ns tick resolution this does not wrap until the 2050s.
const DefaultEpoch int64 = 1527811200000000000

// Default bit layout: 40 bits of tick, 16 bits of machine ID, 7 bits of
// sequence. The sum is 63, so IDs packed with this layout are always
// non-negative as signed 64-bit values.
const (
	DefaultTimeBits     = 40
	DefaultMachineBits  = 16
	DefaultSequenceBits = 7
)

// tickShift is the base-2 log of the tick resolution: one tick is
// 2^20 nanoseconds (~1.048576ms). The 40-bit default time field covers
// roughly 36 years at this resolution, so the divisor is load-bearing
// and must not be "rounded" to a millisecond.
const tickShift = 20

// Worker generates unique, roughly time-ordered 64-bit IDs. Each ID packs
// a tick (quantized time since the epoch), a per-tick sequence number and
// the worker's machine ID into one non-negative int64.
//
// A Worker is safe for concurrent use by multiple goroutines. Uniqueness
// across workers depends entirely on each being configured with a
// distinct machine ID; the library does not verify this.
type Worker struct {
	timeBits     uint64
	machineBits  uint64
	sequenceBits uint64

	timeMask     uint64
	machineMask  uint64
	sequenceMask uint64

	machineID uint64
	epoch     time.Time

	now func() time.Time // replaced in tests

	mu       sync.Mutex
	lastTick uint64
	sequence uint64
}

// New creates a Worker with the default bit layout (40/16/7) and the
// default epoch.
func New(machineID uint64) *Worker {
	return WithBits(DefaultTimeBits, DefaultMachineBits, DefaultSequenceBits, machineID)
}

// WithBits creates a Worker with a custom bit layout and the default
// epoch. The widths are not validated: a layout whose sum exceeds 63 can
// produce negative IDs, and a machineID wider than machineBits is
// silently truncated when packed.
func WithBits(timeBits, machineBits, sequenceBits uint64, machineID uint64) *Worker {
	return WithBitsAndEpoch(timeBits, machineBits, sequenceBits, machineID, DefaultEpoch)
}

// WithBitsAndEpoch creates a fully configured Worker. epoch is the
// instant of tick 0, in nanoseconds since the Unix epoch.
func WithBitsAndEpoch(timeBits, machineBits, sequenceBits uint64, machineID uint64, epoch int64) *Worker {
	return &Worker{
		timeBits:     timeBits,
		machineBits:  machineBits,
		sequenceBits: sequenceBits,

		timeMask:     mask(timeBits),
		machineMask:  mask(machineBits),
		sequenceMask: mask(sequenceBits),

		machineID: machineID,
		epoch:     time.Unix(0, epoch),
		now:       time.Now,
	}
}

// mask returns a value with the low b bits set. mask(0) is 0 and any
// width of 64 or more saturates to all ones, sidestepping the undefined
// shift-by-width behavior a naive (1<<b)-1 would hit.
func mask(b uint64) uint64 {
	if b == 0 {
		return 0
	}
	if b >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << b) - 1
}

// currentTick quantizes the wall clock into ticks since the epoch.
// Readings before the epoch clamp to tick 0.
func (w *Worker) currentTick() uint64 {
	elapsed := w.now().Sub(w.epoch)
	if elapsed < 0 {
		return 0
	}
	return uint64(elapsed.Nanoseconds()) >> tickShift
}

// Generate returns the next identifier. It is safe to call from any
// number of goroutines.
//
// When the per-tick sequence space is exhausted, Generate busy-waits
// (releasing the lock between attempts) until the clock reaches the next
// tick; it never fails and never returns early. When the clock regresses
// below the last observed tick, IDs keep being issued against that stale
// maximum tick so that raw values stay monotonic; the time field then
// runs ahead of the wall clock until it catches up.
func (w *Worker) Generate() ID {
	tick, seq := w.next()
	return w.pack(tick, seq)
}

// next advances the compound {lastTick, sequence} state and returns the
// pair to pack. Both fields live under one mutex and are only ever read
// or written together; splitting them under separate locks would let one
// caller reset the sequence while another is mid-decision.
func (w *Worker) next() (tick, seq uint64) {
	for {
		now := w.currentTick()

		w.mu.Lock()
		switch {
		case now > w.lastTick:
			w.lastTick = now
			w.sequence = 0
		case w.sequence < w.sequenceMask:
			w.sequence++
		default:
			// Sequence space for this tick is spent: retry with a
			// fresh clock reading.
			w.mu.Unlock()
			continue
		}
		tick, seq = w.lastTick, w.sequence
		w.mu.Unlock()
		return tick, seq
	}
}

// pack assembles the three fields into a signed 64-bit ID.
func (w *Worker) pack(tick, seq uint64) ID {
	return ID((tick&w.timeMask)<<(w.machineBits+w.sequenceBits) |
		(seq&w.sequenceMask)<<w.machineBits |
		w.machineID&w.machineMask)
}

// MachineID returns the configured machine ID, truncated to the
// machine-bits field exactly as it is packed into every ID.
func (w *Worker) MachineID() uint64 {
	return w.machineID & w.machineMask
}

package fastid

import "time"

// Decompose splits an ID produced by this worker (or one sharing its bit
// layout) back into its tick, sequence and machine-ID fields.
func (w *Worker) Decompose(id ID) (tick, seq, machine uint64) {
	v := uint64(id)
	tick = v >> (w.machineBits + w.sequenceBits) & w.timeMask
	seq = v >> w.machineBits & w.sequenceMask
	machine = v & w.machineMask
	return tick, seq, machine
}

// TickTime returns the wall-clock instant at which the given tick began.
func (w *Worker) TickTime(tick uint64) time.Time {
	return w.epoch.Add(time.Duration(tick << tickShift))
}

// Time returns the instant recorded in the ID's time field. During a
// clock regression this is the worker's maximum observed tick, which may
// run slightly ahead of the actual generation time.
func (w *Worker) Time(id ID) time.Time {
	tick, _, _ := w.Decompose(id)
	return w.TickTime(tick)
}

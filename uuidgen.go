package fastid

import "encoding/binary"

// GenerateUUID generates an identifier and returns it as a UUID-shaped
// 128-bit value. The layout follows the version-1 wire format:
//
//	time_low   tick bits 0..31
//	time_mid   tick bits 32..47
//	time_high  tick bits 48..59, version nibble 1 above them
//	clock_seq  sequence folded with low tick bits (14 bits, variant 10)
//	node       low 48 bits of the machine ID, big-endian
//
// The fields come from the tick and sequence captured by this generation,
// not from re-parsing a packed ID: a tick wider than the configured time
// field is not recoverable from the 64-bit form.
//
// GenerateUUID draws from the same sequence space as Generate, so the
// two can be mixed on one worker without colliding.
func (w *Worker) GenerateUUID() UUID {
	tick, seq := w.next()
	return w.buildUUID(tick, seq)
}

func (w *Worker) buildUUID(tick, seq uint64) UUID {
	var u UUID

	binary.BigEndian.PutUint32(u[0:4], uint32(tick))
	binary.BigEndian.PutUint16(u[4:6], uint16(tick>>32))
	binary.BigEndian.PutUint16(u[6:8], 0x1000|uint16(tick>>48)&0x0fff)

	// The clock-seq field is 14 bits. Whatever the sequence field does
	// not occupy is filled with low tick bits for extra entropy. Wider
	// sequence configurations clamp the placeholder to zero so the fold
	// stays total.
	placeholder := uint64(0)
	if w.sequenceBits < 14 {
		placeholder = 14 - w.sequenceBits
	}
	clockSeq := (seq<<placeholder | tick&mask(placeholder)) & 0x3fff

	u[8] = byte(clockSeq>>8)&0x3f | 0x80 // variant 10
	u[9] = byte(clockSeq)

	node := w.machineID & mask(48)
	u[10] = byte(node >> 40)
	u[11] = byte(node >> 32)
	u[12] = byte(node >> 24)
	u[13] = byte(node >> 16)
	u[14] = byte(node >> 8)
	u[15] = byte(node)

	return u
}

// Package fastid generates unique, roughly time-ordered 64-bit identifiers
// locally, without coordinating with a central allocator.
//
// Each identifier packs three fields into one non-negative int64, high to
// low: a tick (time quantized to 2^20 nanoseconds since a configurable
// epoch), a per-tick sequence counter, and an operator-assigned machine ID.
// Any number of workers can mint IDs concurrently as long as each carries
// a distinct machine ID, making the IDs ideal for:
//   - Database primary keys (time-ordered, index-friendly)
//   - Distributed systems that cannot afford an allocation round-trip
//   - Event logs and message IDs where rough chronological order matters
//
// Basic Usage:
//
//	worker := fastid.New(1)
//	id := worker.Generate()
//	fmt.Println(id.Int64())
//	fmt.Println(id.Base62())
//
// Custom Layout:
//
//	// 40 bits of time, 16 bits of machine ID, 7 bits of sequence is the
//	// default; any split can be configured, along with the epoch.
//	worker := fastid.WithBits(41, 10, 12, machineID)
//	id := worker.Generate()
//
// Output Formats:
//
// An ID is canonically a signed 64-bit integer. Independently selectable
// derived forms are available: the unsigned reinterpretation, decimal and
// binary text, fixed-width base62 and base64 text, and a UUID-shaped
// 128-bit value produced at generation time via Worker.GenerateUUID.
//
// Thread Safety:
//
// All generation methods are safe for concurrent use. A worker's mutable
// state is one compound {lastTick, sequence} pair guarded by a single
// mutex; when a tick's sequence space is exhausted, callers spin until
// the clock advances rather than failing.
//
// Machine IDs:
//
// Uniqueness across workers depends entirely on distinct machine IDs,
// which the core does not verify. The machineid subpackage provides
// allocators (static, ZooKeeper-registered, MySQL lease) for assigning
// them operationally.
package fastid

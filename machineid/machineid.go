// Package machineid assigns machine IDs to fastid workers.
//
// The fastid core treats distinct machine IDs as an operational
// precondition: two workers sharing an ID silently mint colliding
// identifiers. This package provides the collaborators that uphold that
// precondition, from a fixed operator-assigned value to allocators backed
// by ZooKeeper registration or a MySQL lease table.
package machineid

import "context"

// Allocator hands out a machine ID for one worker instance. Allocate may
// block on network round-trips; implementations honor ctx cancellation.
type Allocator interface {
	Allocate(ctx context.Context) (uint64, error)
	Close() error
}

// Static is an Allocator that always returns a fixed, operator-assigned
// machine ID. It is the zero-infrastructure option for deployments that
// manage assignment out of band.
type Static uint64

// Allocate returns the configured machine ID.
func (s Static) Allocate(ctx context.Context) (uint64, error) {
	return uint64(s), nil
}

// Close is a no-op.
func (s Static) Close() error {
	return nil
}

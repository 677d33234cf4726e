package machineid

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strconv"
	"sync"
	"time"

	"github.com/go-zookeeper/zk"
)

const (
	defaultZKRoot      = "/fastid"
	defaultSessionTTL  = 5 * time.Second
	defaultHeartbeat   = 3 * time.Second
	memberNodePrefix   = "member-"
	sequenceSuffixLen  = 10 // zk appends a zero-padded 10-digit sequence
)

// ZooKeeperConfig configures a ZooKeeper-backed allocator.
type ZooKeeperConfig struct {
	// Servers is the list of ZooKeeper host:port addresses.
	Servers []string

	// Root is the chroot-style path registrations live under.
	// Defaults to "/fastid".
	Root string

	// Service namespaces registrations so independent deployments do
	// not compete for the same ID space.
	Service string

	// Instance identifies this process within the service, e.g.
	// "host:port". Used for the recovery cache file name.
	Instance string

	// MachineBits bounds the assigned ID: the sequence number handed
	// out by ZooKeeper is reduced modulo 2^MachineBits. Defaults to 16.
	MachineBits uint64

	// CacheDir is where the local recovery file is written. Defaults to
	// the current directory.
	CacheDir string

	// SessionTimeout and HeartbeatInterval tune the ZooKeeper session.
	SessionTimeout    time.Duration
	HeartbeatInterval time.Duration
}

// nodeState is the payload stored in ZooKeeper and mirrored to the local
// cache file so an instance can recover its assignment after a restart.
type nodeState struct {
	MachineID  uint64 `json:"machine_id"`
	LastSeenMs int64  `json:"last_seen_ms"`
	CreatedMs  int64  `json:"created_ms"`
}

// ZooKeeper allocates machine IDs by registering a sequential node under
// a per-service path. The sequence number ZooKeeper assigns becomes the
// machine ID. A local cache file lets the instance recover the same ID
// when ZooKeeper already knows it, and a heartbeat goroutine keeps the
// registration's last-seen time fresh so clock rollback is detectable.
type ZooKeeper struct {
	cfg  ZooKeeperConfig
	conn *zk.Conn

	mu        sync.Mutex
	machineID uint64
	createdMs int64
	allocated bool
	stop      chan struct{}
	done      chan struct{}
}

// NewZooKeeper connects to the configured ensemble. The machine ID is
// not claimed until Allocate is called.
func NewZooKeeper(cfg ZooKeeperConfig) (*ZooKeeper, error) {
	if cfg.Root == "" {
		cfg.Root = defaultZKRoot
	}
	if cfg.MachineBits == 0 {
		cfg.MachineBits = 16
	}
	if cfg.SessionTimeout == 0 {
		cfg.SessionTimeout = defaultSessionTTL
	}
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = defaultHeartbeat
	}

	conn, _, err := zk.Connect(cfg.Servers, cfg.SessionTimeout)
	if err != nil {
		return nil, fmt.Errorf("machineid: connect zookeeper: %w", err)
	}

	return &ZooKeeper{
		cfg:  cfg,
		conn: conn,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}, nil
}

// Allocate claims (or recovers) this instance's machine ID and starts
// the heartbeat. It is idempotent: repeated calls return the same ID.
func (z *ZooKeeper) Allocate(ctx context.Context) (uint64, error) {
	z.mu.Lock()
	defer z.mu.Unlock()

	if z.allocated {
		return z.machineID, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	servicePath := path.Join(z.cfg.Root, z.cfg.Service)
	if err := z.ensurePath(servicePath); err != nil {
		return 0, err
	}

	statePath := path.Join(servicePath, z.cfg.Instance)

	state, exists, err := z.recover(statePath)
	if err != nil {
		return 0, err
	}
	if !exists {
		id, err := z.claimSequence(servicePath)
		if err != nil {
			return 0, err
		}
		now := time.Now().UnixMilli()
		state = nodeState{MachineID: id, LastSeenMs: now, CreatedMs: now}
	}

	if err := z.writeState(statePath, state, exists); err != nil {
		return 0, err
	}
	z.writeCache(state)

	z.machineID = state.MachineID
	z.createdMs = state.CreatedMs
	z.allocated = true
	go z.heartbeat(statePath)
	return z.machineID, nil
}

// recover looks for a previous assignment, first in ZooKeeper and then
// in the local cache file, and rejects it when the wall clock has moved
// behind the recorded last-seen time.
func (z *ZooKeeper) recover(statePath string) (nodeState, bool, error) {
	var state nodeState

	data, _, err := z.conn.Get(statePath)
	switch err {
	case nil:
		if err := json.Unmarshal(data, &state); err != nil {
			return state, false, fmt.Errorf("machineid: decode node state: %w", err)
		}
		if now := time.Now().UnixMilli(); now < state.LastSeenMs {
			return state, false, fmt.Errorf("machineid: clock moved backwards: %d < %d", now, state.LastSeenMs)
		}
		return state, true, nil
	case zk.ErrNoNode:
	default:
		return state, false, fmt.Errorf("machineid: read node state: %w", err)
	}

	cached, err := z.readCache()
	if err != nil {
		return state, false, nil // no previous assignment anywhere
	}
	if now := time.Now().UnixMilli(); now < cached.LastSeenMs {
		return state, false, fmt.Errorf("machineid: clock moved backwards: %d < %d", now, cached.LastSeenMs)
	}
	return cached, false, nil
}

// claimSequence creates a sequential member node and derives the machine
// ID from the sequence number ZooKeeper assigned, reduced to the
// configured bit width.
func (z *ZooKeeper) claimSequence(servicePath string) (uint64, error) {
	name, err := z.conn.Create(
		path.Join(servicePath, memberNodePrefix),
		nil,
		zk.FlagEphemeral|zk.FlagSequence,
		zk.WorldACL(zk.PermAll),
	)
	if err != nil {
		return 0, fmt.Errorf("machineid: create member node: %w", err)
	}
	seq, err := sequenceFromNode(name)
	if err != nil {
		return 0, err
	}
	if z.cfg.MachineBits >= 64 {
		return uint64(seq), nil
	}
	return uint64(seq) % (uint64(1) << z.cfg.MachineBits), nil
}

// ensurePath creates the registration path, parents first, tolerating
// nodes that already exist.
func (z *ZooKeeper) ensurePath(p string) error {
	for _, node := range parentPaths(p) {
		exists, _, err := z.conn.Exists(node)
		if err != nil {
			return fmt.Errorf("machineid: check path %s: %w", node, err)
		}
		if exists {
			continue
		}
		_, err = z.conn.Create(node, nil, 0, zk.WorldACL(zk.PermAll))
		if err != nil && err != zk.ErrNodeExists {
			return fmt.Errorf("machineid: create path %s: %w", node, err)
		}
	}
	return nil
}

// parentPaths expands an absolute path into the chain of nodes to
// create, shallowest first: "/a/b/c" yields "/a", "/a/b", "/a/b/c".
func parentPaths(p string) []string {
	p = path.Clean(p)
	if p == "/" || p == "." {
		return nil
	}
	var chain []string
	for node := p; node != "/" && node != "."; node = path.Dir(node) {
		chain = append(chain, node)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// sequenceFromNode extracts the zero-padded sequence number ZooKeeper
// appends to a sequential node name.
func sequenceFromNode(name string) (int64, error) {
	base := path.Base(name)
	if len(base) < sequenceSuffixLen {
		return 0, fmt.Errorf("machineid: malformed sequential node %q", name)
	}
	seq, err := strconv.ParseInt(base[len(base)-sequenceSuffixLen:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("machineid: malformed sequential node %q", name)
	}
	return seq, nil
}

func (z *ZooKeeper) writeState(statePath string, state nodeState, exists bool) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if exists {
		_, err = z.conn.Set(statePath, data, -1)
	} else {
		_, err = z.conn.Create(statePath, data, 0, zk.WorldACL(zk.PermAll))
	}
	if err != nil {
		return fmt.Errorf("machineid: write node state: %w", err)
	}
	return nil
}

// heartbeat refreshes the registration's last-seen time until Close.
// Write failures are tolerated: a transiently unavailable ensemble must
// not take down ID generation.
func (z *ZooKeeper) heartbeat(statePath string) {
	defer close(z.done)

	ticker := time.NewTicker(z.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-z.stop:
			return
		case <-ticker.C:
		}

		state := z.heartbeatState(time.Now().UnixMilli())
		if data, err := json.Marshal(state); err == nil {
			z.conn.Set(statePath, data, -1)
			z.writeCache(state)
		}
	}
}

// heartbeatState is the registration payload for one beat: a fresh
// last-seen time against the assignment's original creation time.
func (z *ZooKeeper) heartbeatState(nowMs int64) nodeState {
	return nodeState{
		MachineID:  z.machineID,
		LastSeenMs: nowMs,
		CreatedMs:  z.createdMs,
	}
}

func (z *ZooKeeper) cachePath() string {
	return path.Join(z.cfg.CacheDir, fmt.Sprintf(".fastid_machine_%s_%s", z.cfg.Service, z.cfg.Instance))
}

func (z *ZooKeeper) writeCache(state nodeState) {
	if data, err := json.Marshal(state); err == nil {
		os.WriteFile(z.cachePath(), data, 0o644)
	}
}

func (z *ZooKeeper) readCache() (nodeState, error) {
	var state nodeState
	data, err := os.ReadFile(z.cachePath())
	if err != nil {
		return state, err
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return state, err
	}
	return state, nil
}

// Close stops the heartbeat and closes the ZooKeeper session, releasing
// the ephemeral member node.
func (z *ZooKeeper) Close() error {
	z.mu.Lock()
	allocated := z.allocated
	z.allocated = false
	z.mu.Unlock()

	if allocated {
		close(z.stop)
		<-z.done
	}
	z.conn.Close()
	return nil
}

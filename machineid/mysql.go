package machineid

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

const (
	defaultLeaseTable = "fastid_machine_leases"
	defaultLeaseTTL   = 30 * time.Second
)

// ErrNoFreeMachineID is returned when every lease row up to the capacity
// limit is held by a live owner.
var ErrNoFreeMachineID = errors.New("machineid: no free machine ID")

// MySQLConfig configures a lease-table allocator.
type MySQLConfig struct {
	// DSN is the go-sql-driver/mysql data source name.
	DSN string

	// Table is the lease table name. Defaults to
	// "fastid_machine_leases". Expected schema:
	//
	//	CREATE TABLE fastid_machine_leases (
	//	    machine_id BIGINT UNSIGNED NOT NULL PRIMARY KEY,
	//	    owner      VARCHAR(255)    NOT NULL,
	//	    expires_at TIMESTAMP       NOT NULL
	//	);
	Table string

	// Owner identifies this process, e.g. "host:port". An owner that
	// restarts reclaims its previous lease instead of consuming a new ID.
	Owner string

	// Capacity bounds the ID space, normally 2^machine_bits of the
	// worker layout. Zero means 1<<16.
	Capacity uint64

	// TTL is the lease duration; the allocator renews at TTL/3.
	TTL time.Duration
}

// MySQL allocates machine IDs from a shared lease table. A claim takes
// the first row that is unowned or expired inside one transaction, so
// concurrent processes cannot take the same ID, and a background
// goroutine renews the lease until Close releases it.
type MySQL struct {
	cfg MySQLConfig
	db  *sql.DB

	mu        sync.Mutex
	machineID uint64
	allocated bool
	stop      chan struct{}
	done      chan struct{}
}

// NewMySQL opens the database and verifies connectivity.
func NewMySQL(cfg MySQLConfig) (*MySQL, error) {
	if cfg.Table == "" {
		cfg.Table = defaultLeaseTable
	}
	if cfg.Capacity == 0 {
		cfg.Capacity = 1 << 16
	}
	if cfg.TTL == 0 {
		cfg.TTL = defaultLeaseTTL
	}

	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("machineid: open mysql: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("machineid: ping mysql: %w", err)
	}

	return &MySQL{
		cfg:  cfg,
		db:   db,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}, nil
}

// Allocate claims a lease and starts renewal. It is idempotent: repeated
// calls return the same ID.
func (m *MySQL) Allocate(ctx context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.allocated {
		return m.machineID, nil
	}

	id, err := m.claim(ctx)
	if err != nil {
		return 0, err
	}

	m.machineID = id
	m.allocated = true
	go m.renewLoop()
	return id, nil
}

// claim runs one transaction that either renews this owner's previous
// lease, takes over an expired one, or inserts the next unused ID.
func (m *MySQL) claim(ctx context.Context) (id uint64, err error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("machineid: begin claim: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	expiry := time.Now().Add(m.cfg.TTL)

	// Reclaim a lease this owner already holds (restart case).
	row := tx.QueryRowContext(ctx,
		fmt.Sprintf("SELECT machine_id FROM %s WHERE owner = ? LIMIT 1 FOR UPDATE", m.cfg.Table),
		m.cfg.Owner)
	switch err = row.Scan(&id); err {
	case nil:
		if err = m.takeRow(ctx, tx, id, expiry); err != nil {
			return 0, err
		}
		return id, tx.Commit()
	case sql.ErrNoRows:
	default:
		return 0, fmt.Errorf("machineid: reclaim lease: %w", err)
	}

	// Take over the lowest expired lease.
	row = tx.QueryRowContext(ctx,
		fmt.Sprintf("SELECT machine_id FROM %s WHERE expires_at < NOW() ORDER BY machine_id LIMIT 1 FOR UPDATE", m.cfg.Table))
	switch err = row.Scan(&id); err {
	case nil:
		if err = m.takeRow(ctx, tx, id, expiry); err != nil {
			return 0, err
		}
		return id, tx.Commit()
	case sql.ErrNoRows:
	default:
		return 0, fmt.Errorf("machineid: scan expired lease: %w", err)
	}

	// Nothing reusable: append the next unused ID.
	row = tx.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COALESCE(MAX(machine_id)+1, 0) FROM %s FOR UPDATE", m.cfg.Table))
	if err = row.Scan(&id); err != nil {
		return 0, fmt.Errorf("machineid: next machine id: %w", err)
	}
	if id >= m.cfg.Capacity {
		err = ErrNoFreeMachineID
		return 0, err
	}
	_, err = tx.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (machine_id, owner, expires_at) VALUES (?, ?, ?)", m.cfg.Table),
		id, m.cfg.Owner, expiry)
	if err != nil {
		return 0, fmt.Errorf("machineid: insert lease: %w", err)
	}
	return id, tx.Commit()
}

func (m *MySQL) takeRow(ctx context.Context, tx *sql.Tx, id uint64, expiry time.Time) error {
	_, err := tx.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET owner = ?, expires_at = ? WHERE machine_id = ?", m.cfg.Table),
		m.cfg.Owner, expiry, id)
	if err != nil {
		return fmt.Errorf("machineid: update lease: %w", err)
	}
	return nil
}

// renewLoop extends the lease until Close. A failed renewal is retried
// on the next tick; the lease only lapses if the database stays
// unreachable for the full TTL.
func (m *MySQL) renewLoop() {
	defer close(m.done)

	ticker := time.NewTicker(m.cfg.TTL / 3)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.TTL/3)
		m.db.ExecContext(ctx,
			fmt.Sprintf("UPDATE %s SET expires_at = ? WHERE machine_id = ? AND owner = ?", m.cfg.Table),
			time.Now().Add(m.cfg.TTL), m.machineID, m.cfg.Owner)
		cancel()
	}
}

// Close stops renewal, expires the lease so another process can claim it
// promptly, and closes the database.
func (m *MySQL) Close() error {
	m.mu.Lock()
	allocated := m.allocated
	m.allocated = false
	m.mu.Unlock()

	if allocated {
		close(m.stop)
		<-m.done

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		m.db.ExecContext(ctx,
			fmt.Sprintf("UPDATE %s SET expires_at = NOW() WHERE machine_id = ? AND owner = ?", m.cfg.Table),
			m.machineID, m.cfg.Owner)
		cancel()
	}
	return m.db.Close()
}

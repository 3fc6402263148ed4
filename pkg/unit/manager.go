package unit

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/gibbs"
	"github.com/aretw0/gibbs/internal/logging"
	"github.com/aretw0/gibbs/pkg/domain"
	"github.com/aretw0/gibbs/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed unit lock may be held.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager owns named reactors and guards each one with its own lock.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.RunStore

	mu    sync.Mutex
	units map[string]*gibbs.Reactor

	lockMu sync.Mutex
	locks  map[string]*lockEntry

	locker   ports.DistributedLocker
	lockTTL  time.Duration
	defaults []gibbs.Option
	logger   *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithUnitOptions sets options applied to every unit before its own options,
// e.g. a shared thermodynamic model or metrics hooks.
func WithUnitOptions(opts ...gibbs.Option) Option {
	return func(m *Manager) {
		m.defaults = append(m.defaults, opts...)
	}
}

// NewManager creates a Manager persisting runs to store.
func NewManager(store ports.RunStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		units:   make(map[string]*gibbs.Reactor),
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create registers a new unit named id.
func (m *Manager) Create(id string, opts ...gibbs.Option) (*gibbs.Reactor, error) {
	if id == "" {
		return nil, domain.NewError(domain.KindInvalidArgument, "unit id is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.units[id]; exists {
		return nil, domain.NewError(domain.KindInvalidArgument, "unit %q already exists", id)
	}

	all := make([]gibbs.Option, 0, len(m.defaults)+len(opts)+2)
	all = append(all, gibbs.WithName(id), gibbs.WithLogger(m.logger))
	all = append(all, m.defaults...)
	all = append(all, opts...)

	r := gibbs.New(all...)
	m.units[id] = r
	return r, nil
}

// Get returns the unit named id.
// Callers mutating the unit concurrently must go through Do.
func (m *Manager) Get(id string) (*gibbs.Reactor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.units[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnitNotFound, id)
	}
	return r, nil
}

// Remove terminates and forgets the unit.
func (m *Manager) Remove(ctx context.Context, id string) error {
	return m.Do(ctx, id, func(_ context.Context, r *gibbs.Reactor) error {
		r.Terminate()

		m.mu.Lock()
		delete(m.units, id)
		m.mu.Unlock()
		return nil
	})
}

// IDs lists registered units in sorted order.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.units))
	for id := range m.units {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Store returns the underlying run store.
func (m *Manager) Store() ports.RunStore {
	return m.store
}

// Do runs fn while holding the lock for the unit.
func (m *Manager) Do(ctx context.Context, id string, fn func(context.Context, *gibbs.Reactor) error) error {
	r, err := m.Get(id)
	if err != nil {
		return err
	}

	return m.withLock(ctx, id, func(ctx context.Context) error {
		return fn(ctx, r)
	})
}

// Calculate runs the unit's calculation and persists the resulting record.
// Validation and calculation errors come back unchanged; the store is only
// written on success.
func (m *Manager) Calculate(ctx context.Context, id string) (domain.RunRecord, error) {
	var record domain.RunRecord
	err := m.Do(ctx, id, func(ctx context.Context, r *gibbs.Reactor) error {
		if err := r.Calculate(); err != nil {
			return err
		}

		var err error
		record, err = r.Record()
		if err != nil {
			return err
		}

		if m.store == nil {
			return nil
		}
		if err := m.store.Save(ctx, record); err != nil {
			return fmt.Errorf("failed to persist run: %w", err)
		}
		return nil
	})
	return record, err
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.lockMu.Lock()
	defer m.lockMu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.lockMu.Lock()
	defer m.lockMu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

func (m *Manager) withLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"unit", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

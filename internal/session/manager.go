package session

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/secretshows/secretshows-server/internal/clock"
	"github.com/secretshows/secretshows-server/internal/logger"
)

// DefaultIdleTTL is how long an unused store stays in memory.
const DefaultIdleTTL = 24 * time.Hour

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	Factory RepositoryFactory
	IdleTTL time.Duration
	Clock   clock.Clock
	Logger  *logger.Logger

	// StoreOptions are applied to every store the manager opens. Each store
	// logs through Logger scoped to its profile, whatever these options set.
	StoreOptions []Option

	// OnEvict is called with the number of stores dropped by each eviction pass.
	OnEvict func(count int)
}

type managedStore struct {
	store    *Store
	lastUsed time.Time
}

// Manager keeps one Store per browser profile, opening them on first use.
// Stores idle for longer than IdleTTL are dropped; their state lives on in the repository.
type Manager struct {
	factory RepositoryFactory
	idleTTL time.Duration
	clock   clock.Clock
	logger  *logger.Logger
	opts    []Option
	onEvict func(int)

	mu     sync.Mutex
	stores map[string]*managedStore
}

// NewManager creates a Manager.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.NewSystem()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	return &Manager{
		factory: cfg.Factory,
		idleTTL: cfg.IdleTTL,
		clock:   cfg.Clock,
		logger:  cfg.Logger,
		opts:    cfg.StoreOptions,
		onEvict: cfg.OnEvict,
		stores:  make(map[string]*managedStore),
	}
}

// Get returns the store for profileID, rehydrating it from its repository if needed.
func (m *Manager) Get(ctx context.Context, profileID string) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if ms, ok := m.stores[profileID]; ok {
		ms.lastUsed = now
		return ms.store, nil
	}

	repo, err := m.factory(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("open repository for profile %s: %w", profileID, err)
	}

	opts := append(slices.Clone(m.opts), WithLogger(m.logger.WithProfile(profileID)))
	store, err := Open(ctx, repo, opts...)
	if err != nil {
		return nil, err
	}

	m.stores[profileID] = &managedStore{store: store, lastUsed: now}
	return store, nil
}

// Len returns the number of stores held in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}

// EvictIdle drops stores not used within the idle TTL and returns how many went.
func (m *Manager) EvictIdle() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.clock.Now().Add(-m.idleTTL)
	evicted := 0
	for profileID, ms := range m.stores {
		if ms.lastUsed.Before(cutoff) {
			delete(m.stores, profileID)
			evicted++
		}
	}
	return evicted
}

// RunEviction calls EvictIdle every interval until ctx is done.
func (m *Manager) RunEviction(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := m.EvictIdle()
			if n == 0 {
				continue
			}
			m.logger.Debug("evicted idle sessions", "count", n, "remaining", m.Len())
			if m.onEvict != nil {
				m.onEvict(n)
			}
		}
	}
}

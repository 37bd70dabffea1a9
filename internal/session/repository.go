package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/secretshows/secretshows-server/internal/domain"
)

// Keys under which each slice of session state is persisted.
const (
	KeyUser     = "secretshows_user"
	KeyBookings = "secretshows_bookings"
	KeySaved    = "secretshows_saved"
)

// Keys lists every persisted key.
var Keys = []string{KeyUser, KeyBookings, KeySaved}

var (
	// ErrKeyNotFound is returned by a KV when the key has never been written or was deleted.
	ErrKeyNotFound = errors.New("session: key not found")

	// ErrCorruptState is returned by Load when a stored value cannot be decoded.
	// The snapshot returned alongside it holds defaults for the unreadable slices.
	ErrCorruptState = errors.New("session: corrupt persisted state")
)

// Snapshot is the full observable state of a session.
type Snapshot struct {
	User     *domain.User     `json:"user"`
	Bookings []domain.Booking `json:"bookings"`
	Saved    []string         `json:"saved"`
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Bookings: slices.Clone(s.Bookings),
		Saved:    slices.Clone(s.Saved),
	}
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	if out.Bookings == nil {
		out.Bookings = []domain.Booking{}
	}
	if out.Saved == nil {
		out.Saved = []string{}
	}
	return out
}

// Repository persists the three independent slices of one profile's session.
type Repository interface {
	// Load returns the persisted state. Missing keys load as the empty default.
	Load(ctx context.Context) (Snapshot, error)
	SaveUser(ctx context.Context, user domain.User) error
	DeleteUser(ctx context.Context) error
	SaveBookings(ctx context.Context, bookings []domain.Booking) error
	SaveSaved(ctx context.Context, saved []string) error
}

// RepositoryFactory opens the repository for a browser profile.
type RepositoryFactory func(ctx context.Context, profileID string) (Repository, error)

// KV is the durable key-value namespace of a single profile.
type KV interface {
	// Get returns ErrKeyNotFound when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type kvRepository struct {
	kv KV
}

// NewRepository stores each slice as JSON under its own key in kv.
func NewRepository(kv KV) Repository {
	return &kvRepository{kv: kv}
}

func (r *kvRepository) Load(ctx context.Context) (Snapshot, error) {
	var (
		snap    Snapshot
		corrupt []error
	)

	var user domain.User
	found, err := r.read(ctx, KeyUser, &user)
	switch {
	case errors.Is(err, ErrCorruptState):
		corrupt = append(corrupt, err)
	case err != nil:
		return Snapshot{}, err
	case found:
		snap.User = &user
	}

	if _, err := r.read(ctx, KeyBookings, &snap.Bookings); err != nil {
		if !errors.Is(err, ErrCorruptState) {
			return Snapshot{}, err
		}
		snap.Bookings = nil
		corrupt = append(corrupt, err)
	}

	if _, err := r.read(ctx, KeySaved, &snap.Saved); err != nil {
		if !errors.Is(err, ErrCorruptState) {
			return Snapshot{}, err
		}
		snap.Saved = nil
		corrupt = append(corrupt, err)
	}

	return snap.Clone(), errors.Join(corrupt...)
}

func (r *kvRepository) read(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.kv.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrCorruptState, key, err)
	}
	return true, nil
}

func (r *kvRepository) write(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := r.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (r *kvRepository) SaveUser(ctx context.Context, user domain.User) error {
	return r.write(ctx, KeyUser, user)
}

func (r *kvRepository) DeleteUser(ctx context.Context) error {
	if err := r.kv.Delete(ctx, KeyUser); err != nil && !errors.Is(err, ErrKeyNotFound) {
		return fmt.Errorf("delete %s: %w", KeyUser, err)
	}
	return nil
}

func (r *kvRepository) SaveBookings(ctx context.Context, bookings []domain.Booking) error {
	if bookings == nil {
		bookings = []domain.Booking{}
	}
	return r.write(ctx, KeyBookings, bookings)
}

func (r *kvRepository) SaveSaved(ctx context.Context, saved []string) error {
	if saved == nil {
		saved = []string{}
	}
	return r.write(ctx, KeySaved, saved)
}

// MemoryKV is an in-process KV. Safe for concurrent use.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryKV returns an empty in-memory namespace.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

// Get implements KV.
func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return slices.Clone(v), nil
}

// Set implements KV.
func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = slices.Clone(value)
	return nil
}

// Delete implements KV.
func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Keys returns the keys currently present, sorted.
func (m *MemoryKV) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.data))
}

// NewMemoryRepository returns a repository that lives only as long as the process.
func NewMemoryRepository() Repository {
	return NewRepository(NewMemoryKV())
}

// MemoryFactory hands out one in-memory repository per profile and keeps it for
// the life of the factory, so evicted stores rehydrate from it.
type MemoryFactory struct {
	mu    sync.Mutex
	repos map[string]Repository
}

// NewMemoryFactory returns an empty MemoryFactory.
func NewMemoryFactory() *MemoryFactory {
	return &MemoryFactory{repos: make(map[string]Repository)}
}

// Open returns the repository for profileID, creating it on first use.
func (f *MemoryFactory) Open(_ context.Context, profileID string) (Repository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.repos[profileID]
	if !ok {
		r = NewMemoryRepository()
		f.repos[profileID] = r
	}
	return r, nil
}

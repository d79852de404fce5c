package state

import (
	"slices"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/modcache/bytecode"
	"github.com/wippyai/modcache/errors"
)

// Version identifies a committed state snapshot.
type Version uint64

// View is read-only access to state at one version. Get returns nil, nil
// when nothing is stored at the path.
type View interface {
	Get(p AccessPath) ([]byte, error)
}

type entry struct {
	value   []byte
	version Version
	deleted bool
}

// Store is an in-memory multi-version store. Writes append a new version of
// a key; older versions stay readable through views.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]entry
	latest  Version
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[string][]entry)}
}

// Put writes value at p as of version. Versions of a key must not decrease.
func (s *Store) Put(version Version, p AccessPath, value []byte) error {
	return s.write(version, p, entry{value: slices.Clone(value), version: version})
}

// Delete removes p as of version.
func (s *Store) Delete(version Version, p AccessPath) error {
	return s.write(version, p, entry{version: version, deleted: true})
}

func (s *Store) write(version Version, p AccessPath, e entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := p.Key()
	hist := s.entries[k]
	if n := len(hist); n > 0 && hist[n-1].version > version {
		return errors.New(errors.PhaseState, errors.KindInvalidInput).
			Path(p.String()).
			Value(version).
			Detail("write at version %d precedes version %d", version, hist[n-1].version).
			Build()
	}
	if n := len(hist); n > 0 && hist[n-1].version == version {
		hist[n-1] = e
	} else {
		s.entries[k] = append(hist, e)
	}
	if version > s.latest {
		s.latest = version
	}
	Logger().Debug("state write",
		zap.Stringer("path", p),
		zap.Uint64("version", uint64(version)),
		zap.Bool("deleted", e.deleted),
		zap.Int("size", len(e.value)))
	return nil
}

// PublishModule stores the encoded module under its code path.
func (s *Store) PublishModule(version Version, m *bytecode.CompiledModule) error {
	raw, err := m.Encode()
	if err != nil {
		return err
	}
	return s.Put(version, ModuleAccessPath(m.SelfID()), raw)
}

// Latest returns the highest version written.
func (s *Store) Latest() Version {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// View returns a snapshot reading the newest value at or below version.
func (s *Store) View(version Version) View {
	return &snapshot{store: s, version: version}
}

type snapshot struct {
	store   *Store
	version Version
}

func (v *snapshot) Get(p AccessPath) ([]byte, error) {
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()

	hist := v.store.entries[p.Key()]
	i := sort.Search(len(hist), func(i int) bool { return hist[i].version > v.version })
	if i == 0 {
		return nil, nil
	}
	e := hist[i-1]
	if e.deleted {
		return nil, nil
	}
	return slices.Clone(e.value), nil
}

// MapView is a single-version View over a fixed map. It is intended for
// tests and tools.
type MapView map[string][]byte

func (m MapView) Get(p AccessPath) ([]byte, error) {
	return m[p.Key()], nil
}

// Set stores value at p.
func (m MapView) Set(p AccessPath, value []byte) {
	m[p.Key()] = value
}

package loader

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/modcache/bytecode"
	"github.com/wippyai/modcache/state"
)

// ModuleFetcher supplies raw module bytes. A false result means the module is
// not published; it is not an error.
type ModuleFetcher interface {
	FetchModule(id bytecode.ModuleID) ([]byte, bool)
}

type nullFetcher struct{}

func (nullFetcher) FetchModule(bytecode.ModuleID) ([]byte, bool) { return nil, false }

// NullFetcher knows no modules.
var NullFetcher ModuleFetcher = nullFetcher{}

// FakeFetcher serves modules from memory. It is safe for concurrent use and
// counts fetches per module.
type FakeFetcher struct {
	mu      sync.Mutex
	modules map[bytecode.ModuleID][]byte
	calls   map[bytecode.ModuleID]int
	total   int
}

// NewFakeFetcher creates a fetcher serving modules.
func NewFakeFetcher(modules ...*bytecode.CompiledModule) (*FakeFetcher, error) {
	f := &FakeFetcher{
		modules: make(map[bytecode.ModuleID][]byte),
		calls:   make(map[bytecode.ModuleID]int),
	}
	for _, m := range modules {
		if err := f.Add(m); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Add encodes m and serves it under its own identifier.
func (f *FakeFetcher) Add(m *bytecode.CompiledModule) error {
	raw, err := m.Encode()
	if err != nil {
		return err
	}
	f.AddRaw(m.SelfID(), raw)
	return nil
}

// AddRaw serves raw under id without decoding it.
func (f *FakeFetcher) AddRaw(id bytecode.ModuleID, raw []byte) {
	f.mu.Lock()
	f.modules[id] = raw
	f.mu.Unlock()
}

// Remove stops serving id.
func (f *FakeFetcher) Remove(id bytecode.ModuleID) {
	f.mu.Lock()
	delete(f.modules, id)
	f.mu.Unlock()
}

// Clear stops serving every module. Call counters are kept.
func (f *FakeFetcher) Clear() {
	f.mu.Lock()
	f.modules = make(map[bytecode.ModuleID][]byte)
	f.mu.Unlock()
}

func (f *FakeFetcher) FetchModule(id bytecode.ModuleID) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[id]++
	f.total++
	raw, ok := f.modules[id]
	return raw, ok
}

// Calls returns how many times id was fetched.
func (f *FakeFetcher) Calls(id bytecode.ModuleID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

// TotalCalls returns the number of fetches across all modules.
func (f *FakeFetcher) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}

// StateFetcher reads module code from a state view.
type StateFetcher struct {
	view state.View
}

// NewStateFetcher creates a fetcher over view.
func NewStateFetcher(view state.View) *StateFetcher {
	return &StateFetcher{view: view}
}

// FetchModule reads the code path of id. Read failures are logged and
// reported as an absent module.
func (f *StateFetcher) FetchModule(id bytecode.ModuleID) ([]byte, bool) {
	raw, err := f.view.Get(state.ModuleAccessPath(id))
	if err != nil {
		Logger().Warn("state read failed, treating module as unpublished",
			zap.Stringer("module", id),
			zap.Error(err))
		return nil, false
	}
	if raw == nil {
		return nil, false
	}
	return raw, true
}

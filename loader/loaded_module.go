package loader

import (
	"sync/atomic"

	"github.com/wippyai/modcache/bytecode"
	"github.com/wippyai/modcache/types"
)

// LoadedModule is a verified module registered in a cache scope, with name
// indexes over its definitions and a memo of resolved struct shapes.
//
// The memo only ever goes from empty to filled. Two resolutions racing on the
// same slot produce equal shapes; the first stored wins.
type LoadedModule struct {
	verified     *bytecode.VerifiedModule
	functionDefs map[string]bytecode.FunctionDefinitionIndex
	structDefs   map[string]bytecode.StructDefinitionIndex
	memo         []atomic.Pointer[types.StructDef]
}

func newLoadedModule(v *bytecode.VerifiedModule) LoadedModule {
	m := v.Module()
	lm := LoadedModule{
		verified:     v,
		functionDefs: make(map[string]bytecode.FunctionDefinitionIndex, len(m.FunctionDefs)),
		structDefs:   make(map[string]bytecode.StructDefinitionIndex, len(m.StructDefs)),
		memo:         make([]atomic.Pointer[types.StructDef], len(m.StructDefs)),
	}
	for i := range m.FunctionDefs {
		idx := bytecode.FunctionDefinitionIndex(i)
		lm.functionDefs[m.FunctionDefName(idx)] = idx
	}
	for i := range m.StructDefs {
		idx := bytecode.StructDefinitionIndex(i)
		lm.structDefs[m.StructDefName(idx)] = idx
	}
	return lm
}

// Verified returns the verified module.
func (m *LoadedModule) Verified() *bytecode.VerifiedModule { return m.verified }

// Module returns the module tables. Callers must not mutate them.
func (m *LoadedModule) Module() *bytecode.CompiledModule { return m.verified.Module() }

// ID returns the identifier the module is registered under.
func (m *LoadedModule) ID() bytecode.ModuleID { return m.verified.SelfID() }

// FunctionDefIndex looks up a function defined in this module by name.
func (m *LoadedModule) FunctionDefIndex(name string) (bytecode.FunctionDefinitionIndex, bool) {
	idx, ok := m.functionDefs[name]
	return idx, ok
}

// StructDefIndex looks up a struct defined in this module by name.
func (m *LoadedModule) StructDefIndex(name string) (bytecode.StructDefinitionIndex, bool) {
	idx, ok := m.structDefs[name]
	return idx, ok
}

// Function returns a reference to the function defined at idx.
func (m *LoadedModule) Function(idx bytecode.FunctionDefinitionIndex) *FunctionRef {
	return &FunctionRef{Module: m, Index: idx}
}

// CachedStructDef returns the memoized shape of the struct defined at idx,
// or nil if it has not been resolved yet.
func (m *LoadedModule) CachedStructDef(idx bytecode.StructDefinitionIndex) *types.StructDef {
	if int(idx) >= len(m.memo) {
		return nil
	}
	return m.memo[idx].Load()
}

func (m *LoadedModule) cacheStructDef(idx bytecode.StructDefinitionIndex, def *types.StructDef) *types.StructDef {
	if m.memo[idx].CompareAndSwap(nil, def) {
		return def
	}
	return m.memo[idx].Load()
}

func (m *LoadedModule) String() string { return m.ID().String() }

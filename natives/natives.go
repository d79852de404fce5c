// Package natives maps (module, struct name) pairs to struct layouts the host
// provides instead of declaring fields in bytecode.
package natives

import (
	"sync"

	"github.com/wippyai/modcache/bytecode"
	"github.com/wippyai/modcache/types"
)

// NativeStruct describes a host-provided struct.
type NativeStruct struct {
	TypeFormals []bytecode.Kind
	Tag         types.NativeStructTag
}

// Arity returns the number of type formals.
func (n *NativeStruct) Arity() int { return len(n.TypeFormals) }

// Instantiate builds the struct shape for the given type actuals.
func (n *NativeStruct) Instantiate(actuals []types.Type) *types.StructDef {
	return types.NewNativeStructDef(types.NativeStructType{
		Tag:         n.Tag,
		TypeActuals: actuals,
	})
}

// Registry looks up native struct layouts.
type Registry interface {
	Lookup(id bytecode.ModuleID, name string) (*NativeStruct, bool)
}

type key struct {
	module bytecode.ModuleID
	name   string
}

// MapRegistry is a concurrency-safe Registry backed by a map.
type MapRegistry struct {
	mu      sync.RWMutex
	entries map[key]*NativeStruct
}

// NewRegistry returns an empty registry.
func NewRegistry() *MapRegistry {
	return &MapRegistry{entries: make(map[key]*NativeStruct)}
}

// Register adds or replaces the layout for id::name.
func (r *MapRegistry) Register(id bytecode.ModuleID, name string, ns *NativeStruct) {
	r.mu.Lock()
	r.entries[key{module: id, name: name}] = ns
	r.mu.Unlock()
}

func (r *MapRegistry) Lookup(id bytecode.ModuleID, name string) (*NativeStruct, bool) {
	r.mu.RLock()
	ns, ok := r.entries[key{module: id, name: name}]
	r.mu.RUnlock()
	return ns, ok
}

// Len returns the number of registered layouts.
func (r *MapRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// VectorModule is the core module that declares the native vector.
var VectorModule = bytecode.NewModuleID(bytecode.CoreAddress, "Vector")

// VectorStruct is the name of the native vector struct in VectorModule.
const VectorStruct = "T"

var (
	defaultOnce     sync.Once
	defaultRegistry *MapRegistry
)

// Default returns the shared registry holding the core natives.
func Default() *MapRegistry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		defaultRegistry.Register(VectorModule, VectorStruct, &NativeStruct{
			Tag:         types.NativeVector,
			TypeFormals: []bytecode.Kind{bytecode.KindAll},
		})
	})
	return defaultRegistry
}

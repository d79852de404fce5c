package loader

import (
	"github.com/wippyai/modcache/bytecode"
	"github.com/wippyai/modcache/gas"
	"github.com/wippyai/modcache/types"
)

// ModuleCache is the contract shared by every cache tier.
//
// A nil result with a nil error means a dependency is not published
// anywhere visible to the tier. Callers decide how to surface that; it is
// never cached, so a later lookup can succeed once the module appears.
type ModuleCache interface {
	// ResolveFunctionRef resolves a function handle of caller to its definition.
	ResolveFunctionRef(caller *LoadedModule, idx bytecode.FunctionHandleIndex) (*FunctionRef, error)
	// ResolveStructDef resolves the shape of a struct defined in module.
	ResolveStructDef(module *LoadedModule, idx bytecode.StructDefinitionIndex, meter gas.Meter) (*types.StructDef, error)
	// ResolveFunctionSignature resolves a function's argument and return
	// types for one instantiation.
	ResolveFunctionSignature(fn *FunctionRef, typeActuals []types.Type, meter gas.Meter) (*FunctionSignature, error)
	// GetLoadedModule returns the module registered or loadable under id.
	GetLoadedModule(id bytecode.ModuleID) (*LoadedModule, error)
	// CacheModule registers an already verified module.
	CacheModule(m *bytecode.VerifiedModule)
	// ReclaimCachedModules moves modules from a shorter-lived scope into this one.
	ReclaimCachedModules(mods []*LoadedModule)
}

var (
	_ ModuleCache = (*VMModuleCache)(nil)
	_ ModuleCache = (*BlockModuleCache)(nil)
	_ ModuleCache = (*TransactionModuleCache)(nil)
)

package loader

import (
	"github.com/wippyai/modcache/bytecode"
	"github.com/wippyai/modcache/gas"
	"github.com/wippyai/modcache/types"
)

// BlockModuleCache is the view of a VMModuleCache used while executing one
// block. Misses are loaded through the block's fetcher into the VM cache, so
// modules outlive the block.
type BlockModuleCache struct {
	vm      *VMModuleCache
	fetcher ModuleFetcher
}

// NewBlockModuleCache creates a block view over vm that loads misses through fetcher.
func NewBlockModuleCache(vm *VMModuleCache, fetcher ModuleFetcher) *BlockModuleCache {
	if fetcher == nil {
		fetcher = NullFetcher
	}
	return &BlockModuleCache{vm: vm, fetcher: fetcher}
}

// VM returns the process-wide cache behind the block.
func (b *BlockModuleCache) VM() *VMModuleCache { return b.vm }

func (b *BlockModuleCache) GetLoadedModule(id bytecode.ModuleID) (*LoadedModule, error) {
	return b.vm.GetLoadedModuleWithFetcher(id, b.fetcher)
}

func (b *BlockModuleCache) ResolveFunctionRef(caller *LoadedModule, idx bytecode.FunctionHandleIndex) (*FunctionRef, error) {
	return b.vm.ResolveFunctionRefWithFetcher(caller, idx, b.fetcher)
}

func (b *BlockModuleCache) ResolveStructDef(module *LoadedModule, idx bytecode.StructDefinitionIndex, meter gas.Meter) (*types.StructDef, error) {
	return b.vm.ResolveStructDefWithFetcher(module, idx, meter, b.fetcher)
}

func (b *BlockModuleCache) ResolveFunctionSignature(fn *FunctionRef, typeActuals []types.Type, meter gas.Meter) (*FunctionSignature, error) {
	return b.vm.ResolveFunctionSignatureWithFetcher(fn, typeActuals, meter, b.fetcher)
}

// ResolveSignatureToken resolves tok as it appears in module.
func (b *BlockModuleCache) ResolveSignatureToken(module *LoadedModule, tok bytecode.SignatureToken, ctx types.TypeContext, meter gas.Meter) (types.Type, bool, error) {
	return b.vm.ResolveSignatureTokenWithFetcher(module, tok, ctx, meter, b.fetcher)
}

func (b *BlockModuleCache) CacheModule(m *bytecode.VerifiedModule) {
	b.vm.CacheModule(m)
}

func (b *BlockModuleCache) ReclaimCachedModules(mods []*LoadedModule) {
	b.vm.ReclaimCachedModules(mods)
}

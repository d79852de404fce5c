package loader

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/modcache/bytecode"
	"github.com/wippyai/modcache/errors"
	"github.com/wippyai/modcache/gas"
	"github.com/wippyai/modcache/types"
)

// TransactionModuleCache holds modules published by one transaction on top
// of a parent cache. Its own modules shadow the parent's and stay private
// until the transaction commits: PublishedModules hands them over for the
// parent to reclaim, Discard drops them on abort.
//
// Operations may run concurrently with each other and with Discard. Discard
// waits for operations in flight; operations started after it fail with a
// protocol misuse error.
type TransactionModuleCache struct {
	local  *VMModuleCache
	parent ModuleCache

	mu        sync.RWMutex // held for reading by every operation
	discarded bool
}

// NewTransactionModuleCache creates an empty transaction scope over parent.
func NewTransactionModuleCache(parent ModuleCache, opts Options) *TransactionModuleCache {
	return &TransactionModuleCache{
		local:  newScopedCache(parent, opts),
		parent: parent,
	}
}

// Parent returns the enclosing cache.
func (t *TransactionModuleCache) Parent() ModuleCache { return t.parent }

// Local returns the transaction's private cache.
func (t *TransactionModuleCache) Local() *VMModuleCache { return t.local }

// enter holds the cache open until the returned func is called.
func (t *TransactionModuleCache) enter() (func(), error) {
	t.mu.RLock()
	if t.discarded {
		t.mu.RUnlock()
		return nil, errors.ProtocolMisuse("transaction cache used after discard")
	}
	return t.mu.RUnlock, nil
}

func (t *TransactionModuleCache) GetLoadedModule(id bytecode.ModuleID) (*LoadedModule, error) {
	leave, err := t.enter()
	if err != nil {
		return nil, err
	}
	defer leave()
	return t.local.GetLoadedModuleWithFetcher(id, NullFetcher)
}

func (t *TransactionModuleCache) ResolveFunctionRef(caller *LoadedModule, idx bytecode.FunctionHandleIndex) (*FunctionRef, error) {
	leave, err := t.enter()
	if err != nil {
		return nil, err
	}
	defer leave()
	return t.local.ResolveFunctionRefWithFetcher(caller, idx, NullFetcher)
}

func (t *TransactionModuleCache) ResolveStructDef(module *LoadedModule, idx bytecode.StructDefinitionIndex, meter gas.Meter) (*types.StructDef, error) {
	leave, err := t.enter()
	if err != nil {
		return nil, err
	}
	defer leave()
	return t.local.ResolveStructDefWithFetcher(module, idx, meter, NullFetcher)
}

func (t *TransactionModuleCache) ResolveFunctionSignature(fn *FunctionRef, typeActuals []types.Type, meter gas.Meter) (*FunctionSignature, error) {
	leave, err := t.enter()
	if err != nil {
		return nil, err
	}
	defer leave()
	return t.local.ResolveFunctionSignatureWithFetcher(fn, typeActuals, meter, NullFetcher)
}

// CacheModule registers a module published by this transaction. It is not
// visible to the parent until the transaction commits.
func (t *TransactionModuleCache) CacheModule(m *bytecode.VerifiedModule) {
	leave, err := t.enter()
	if err != nil {
		panic(err)
	}
	defer leave()
	t.local.CacheModule(m)
}

// ReclaimCachedModules always panics: nothing is shorter-lived than a
// transaction, so reclaiming into one is a protocol error.
func (t *TransactionModuleCache) ReclaimCachedModules(mods []*LoadedModule) {
	err := errors.ProtocolMisuse("cannot reclaim modules into a transaction cache")
	Logger().Error("protocol misuse", zap.Int("modules", len(mods)), zap.Error(err))
	panic(err)
}

// PublishedModules removes and returns the modules this transaction
// registered, for the parent to reclaim on commit.
func (t *TransactionModuleCache) PublishedModules() []*LoadedModule {
	leave, err := t.enter()
	if err != nil {
		return nil
	}
	defer leave()
	mods := t.local.modules.Drain()
	Logger().Debug("transaction modules published", zap.Int("count", len(mods)))
	return mods
}

// Discard drops every module this transaction registered. It waits for
// operations in flight; later operations fail with a protocol misuse error
// and CacheModule panics.
func (t *TransactionModuleCache) Discard() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.discarded {
		return
	}
	t.discarded = true
	t.local.modules.Release()
	Logger().Debug("transaction cache discarded")
}

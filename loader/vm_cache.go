package loader

import (
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/wippyai/modcache/arena"
	"github.com/wippyai/modcache/bytecode"
	"github.com/wippyai/modcache/errors"
	"github.com/wippyai/modcache/gas"
	"github.com/wippyai/modcache/types"
)

// VMModuleCache holds every module loaded in one scope. Modules are
// registered at most once per identifier and never removed until the whole
// scope is dropped.
//
// Used directly as a ModuleCache it never fetches: lookups see only
// registered modules. Block caches reach the fetching variants.
//
// VMModuleCache is safe for concurrent use.
type VMModuleCache struct {
	modules *arena.RefMap[bytecode.ModuleID, LoadedModule]
	loads   singleflight.Group
	opts    Options
	stats   Stats

	// parent is consulted after the local registry and before the fetcher.
	// Structs of modules owned by the parent are resolved by the parent
	// first and memoized only there.
	parent ModuleCache
}

// NewVMModuleCache creates an empty cache.
func NewVMModuleCache(opts Options) *VMModuleCache {
	return &VMModuleCache{
		modules: arena.NewRefMap[bytecode.ModuleID, LoadedModule](),
		opts:    opts.withDefaults(),
	}
}

func newScopedCache(parent ModuleCache, opts Options) *VMModuleCache {
	c := NewVMModuleCache(opts)
	c.parent = parent
	return c
}

// Options returns the effective options.
func (c *VMModuleCache) Options() Options { return c.opts }

// Stats returns a snapshot of cache activity.
func (c *VMModuleCache) Stats() StatsSnapshot { return c.stats.Snapshot() }

// Len returns the number of registered modules.
func (c *VMModuleCache) Len() int { return c.modules.Len() }

// Modules returns every registered module in registration order.
func (c *VMModuleCache) Modules() []*LoadedModule { return c.modules.Values() }

// owns reports whether m is the module this scope registered for its id.
func (c *VMModuleCache) owns(m *LoadedModule) bool {
	p, ok := c.modules.Get(m.ID())
	return ok && p == m
}

// GetLoadedModule returns the module registered under id, or nil.
func (c *VMModuleCache) GetLoadedModule(id bytecode.ModuleID) (*LoadedModule, error) {
	return c.GetLoadedModuleWithFetcher(id, NullFetcher)
}

// GetLoadedModuleWithFetcher returns the module registered under id, loading
// it through fetcher on a miss. A module the fetcher does not know yields
// nil, nil and is looked up again next time. A module that fails
// verification yields the first verifier finding.
//
// Concurrent misses on one id share a single fetch and verification.
func (c *VMModuleCache) GetLoadedModuleWithFetcher(id bytecode.ModuleID, fetcher ModuleFetcher) (*LoadedModule, error) {
	if m, ok := c.modules.Get(id); ok {
		c.stats.hits.Add(1)
		return m, nil
	}
	if c.parent != nil {
		m, err := c.parent.GetLoadedModule(id)
		if err != nil || m != nil {
			return m, err
		}
	}
	c.stats.misses.Add(1)

	v, err, shared := c.loads.Do(id.String(), func() (any, error) {
		return c.load(id, fetcher)
	})
	if err != nil {
		return nil, err
	}
	m := v.(*LoadedModule)
	if m == nil && shared {
		// Another caller's fetcher did not know the module; ours might.
		return c.load(id, fetcher)
	}
	return m, nil
}

func (c *VMModuleCache) load(id bytecode.ModuleID, fetcher ModuleFetcher) (*LoadedModule, error) {
	if m, ok := c.modules.Get(id); ok {
		return m, nil
	}

	raw, ok := fetcher.FetchModule(id)
	c.stats.fetches.Add(1)
	if !ok {
		c.stats.absent.Add(1)
		Logger().Debug("module not published", zap.Stringer("module", id))
		return nil, nil
	}

	verified, errs := c.opts.Verifier.Verify(raw)
	if len(errs) > 0 {
		c.stats.verifyFailures.Add(1)
		Logger().Warn("module failed verification",
			zap.Stringer("module", id),
			zap.Int("findings", len(errs)),
			zap.Error(errs[0]))
		return nil, errs[0]
	}
	if verified == nil {
		return nil, errors.New(errors.PhaseVerify, errors.KindInvariantViolation).
			Module(id).
			Detail("verifier rejected module without reporting a finding").
			Build()
	}
	if got := verified.SelfID(); got != id {
		return nil, errors.New(errors.PhaseFetch, errors.KindInvalidData).
			Module(id).
			Value(got.String()).
			Detail("fetched module is published as %s", got).
			Build()
	}
	return c.insert(verified), nil
}

func (c *VMModuleCache) insert(v *bytecode.VerifiedModule) *LoadedModule {
	id := v.SelfID()
	m := c.modules.OrInsert(id, newLoadedModule(v))
	if m.verified == v {
		c.stats.inserts.Add(1)
		Logger().Debug("module cached",
			zap.Stringer("module", id),
			zap.Int("structs", len(m.structDefs)),
			zap.Int("functions", len(m.functionDefs)))
	}
	return m
}

// CacheModule registers m without fetching. If a module is already
// registered under the same id the existing one is kept.
func (c *VMModuleCache) CacheModule(m *bytecode.VerifiedModule) {
	c.insert(m)
}

// ReclaimCachedModules registers modules loaded in a shorter-lived scope.
// Each module is copied into this cache's storage under its own id; ids
// already registered keep their existing module.
func (c *VMModuleCache) ReclaimCachedModules(mods []*LoadedModule) {
	for _, m := range mods {
		if m == nil {
			continue
		}
		c.modules.OrInsert(m.ID(), *m)
		c.stats.reclaimed.Add(1)
	}
	Logger().Debug("modules reclaimed", zap.Int("count", len(mods)))
}

// ResolveFunctionRef resolves a call target using registered modules only.
func (c *VMModuleCache) ResolveFunctionRef(caller *LoadedModule, idx bytecode.FunctionHandleIndex) (*FunctionRef, error) {
	return c.ResolveFunctionRefWithFetcher(caller, idx, NullFetcher)
}

// ResolveFunctionRefWithFetcher resolves function handle idx of caller to
// the function it names in the defining module.
func (c *VMModuleCache) ResolveFunctionRefWithFetcher(caller *LoadedModule, idx bytecode.FunctionHandleIndex, fetcher ModuleFetcher) (*FunctionRef, error) {
	cm := caller.Module()
	if int(idx) >= len(cm.FunctionHandles) {
		return nil, errors.OutOfBounds(errors.PhaseLink, []string{"function_handles"}, int(idx), len(cm.FunctionHandles))
	}
	fh := cm.FunctionHandleAt(idx)
	id := cm.FunctionHandleModuleID(fh)
	name := cm.FunctionHandleName(fh)

	callee, err := c.GetLoadedModuleWithFetcher(id, fetcher)
	if err != nil || callee == nil {
		return nil, err
	}
	fdi, ok := callee.FunctionDefIndex(name)
	if !ok {
		err := errors.Linker(id, "function", name)
		Logger().Warn("unresolved function", zap.Stringer("caller", caller), zap.Error(err))
		return nil, err
	}
	return callee.Function(fdi), nil
}

// ResolveStructDef resolves a struct shape using registered modules only.
func (c *VMModuleCache) ResolveStructDef(module *LoadedModule, idx bytecode.StructDefinitionIndex, meter gas.Meter) (*types.StructDef, error) {
	return c.ResolveStructDefWithFetcher(module, idx, meter, NullFetcher)
}

// ResolveFunctionSignature resolves a signature using registered modules only.
func (c *VMModuleCache) ResolveFunctionSignature(fn *FunctionRef, typeActuals []types.Type, meter gas.Meter) (*FunctionSignature, error) {
	return c.ResolveFunctionSignatureWithFetcher(fn, typeActuals, meter, NullFetcher)
}

package loader

import (
	"slices"

	"go.uber.org/zap"

	"github.com/wippyai/modcache/bytecode"
	"github.com/wippyai/modcache/errors"
	"github.com/wippyai/modcache/gas"
	"github.com/wippyai/modcache/types"
)

// FunctionSignature is a function signature with every type resolved for
// one instantiation.
type FunctionSignature struct {
	Args    []types.Type
	Returns []types.Type
}

// ResolveSignatureTokenWithFetcher resolves tok, appearing in module, under
// ctx. The boolean is false when some struct it names lives in a module that
// is not published.
func (c *VMModuleCache) ResolveSignatureTokenWithFetcher(
	module *LoadedModule,
	tok bytecode.SignatureToken,
	ctx types.TypeContext,
	meter gas.Meter,
	fetcher ModuleFetcher,
) (types.Type, bool, error) {
	if err := meter.Charge(c.opts.Costs.TokenCost); err != nil {
		return types.Type{}, false, err
	}

	switch tok.Kind {
	case bytecode.TokenBool, bytecode.TokenU64, bytecode.TokenString, bytecode.TokenByteArray, bytecode.TokenAddress:
		t, _ := types.Primitive(tok.Kind)
		return t, true, nil

	case bytecode.TokenTypeParameter:
		t, err := ctx.GetType(tok.TypeParam)
		if err != nil {
			return types.Type{}, false, err
		}
		return t, true, nil

	case bytecode.TokenStruct:
		actuals := make([]types.Type, 0, len(tok.TypeArgs))
		for _, arg := range tok.TypeArgs {
			t, ok, err := c.ResolveSignatureTokenWithFetcher(module, arg, ctx, meter, fetcher)
			if err != nil || !ok {
				return types.Type{}, false, err
			}
			actuals = append(actuals, t)
		}
		def, err := c.ResolveStructHandleWithFetcher(module, tok.Struct, meter, fetcher)
		if err != nil || def == nil {
			return types.Type{}, false, err
		}
		inst, err := types.NewTypeContext(actuals).SubstStructDef(def, meter, c.opts.Costs.TokenCost)
		if err != nil {
			return types.Type{}, false, err
		}
		return types.StructOf(inst), true, nil

	case bytecode.TokenReference, bytecode.TokenMutableReference:
		if tok.Inner == nil {
			return types.Type{}, false, errors.InvariantViolation(errors.PhaseResolve, "reference token without inner type")
		}
		inner, ok, err := c.ResolveSignatureTokenWithFetcher(module, *tok.Inner, ctx, meter, fetcher)
		if err != nil || !ok {
			return types.Type{}, false, err
		}
		if tok.Kind == bytecode.TokenReference {
			return types.Reference(inner), true, nil
		}
		return types.MutableReference(inner), true, nil

	default:
		return types.Type{}, false, errors.New(errors.PhaseResolve, errors.KindInvariantViolation).
			Module(module).
			Value(tok.Kind).
			Detail("unknown signature token kind %d", tok.Kind).
			Build()
	}
}

// ResolveStructHandleWithFetcher resolves struct handle idx of module to the
// shape declared by the module that owns the struct.
func (c *VMModuleCache) ResolveStructHandleWithFetcher(
	module *LoadedModule,
	idx bytecode.StructHandleIndex,
	meter gas.Meter,
	fetcher ModuleFetcher,
) (*types.StructDef, error) {
	cm := module.Module()
	if int(idx) >= len(cm.StructHandles) {
		return nil, errors.OutOfBounds(errors.PhaseLink, []string{"struct_handles"}, int(idx), len(cm.StructHandles))
	}
	sh := cm.StructHandleAt(idx)
	id := cm.StructHandleModuleID(sh)
	name := cm.StructHandleName(sh)

	owner, err := c.GetLoadedModuleWithFetcher(id, fetcher)
	if err != nil || owner == nil {
		return nil, err
	}
	sdi, ok := owner.StructDefIndex(name)
	if !ok {
		err := errors.Linker(id, "struct", name)
		Logger().Warn("unresolved struct", zap.Stringer("referrer", module), zap.Error(err))
		return nil, err
	}
	om := owner.Module()
	declared := om.StructHandleAt(om.StructDefAt(sdi).StructHandle).TypeFormals
	if !slices.Equal(sh.TypeFormals, declared) {
		err := errors.New(errors.PhaseLink, errors.KindLinker).
			Module(id).
			Value(name).
			Detail("%s refers to %s::%s with type formals %v, declared %v", module, id, name, sh.TypeFormals, declared).
			Build()
		Logger().Warn("struct formals mismatch", zap.Error(err))
		return nil, err
	}
	return c.ResolveStructDefWithFetcher(owner, sdi, meter, fetcher)
}

// ResolveStructDefWithFetcher resolves the shape of the struct defined at
// idx in module, with its type formals left abstract. The result is
// memoized in module once every field resolves; a shape that depends on an
// unpublished module yields nil, nil and leaves no memo behind.
//
// In a scope with a parent, a module the parent owns is resolved by the
// parent first. If the parent cannot see every dependency the shape is
// resolved again against this scope, and that result is not memoized in
// the parent's module.
func (c *VMModuleCache) ResolveStructDefWithFetcher(
	module *LoadedModule,
	idx bytecode.StructDefinitionIndex,
	meter gas.Meter,
	fetcher ModuleFetcher,
) (*types.StructDef, error) {
	memoize := true
	if c.parent != nil && !c.owns(module) {
		def, err := c.parent.ResolveStructDef(module, idx, meter)
		if err != nil || def != nil {
			return def, err
		}
		memoize = false
	}

	cm := module.Module()
	if int(idx) >= len(cm.StructDefs) {
		return nil, errors.OutOfBounds(errors.PhaseResolve, []string{"struct_defs"}, int(idx), len(cm.StructDefs))
	}
	if def := module.CachedStructDef(idx); def != nil {
		c.stats.memoHits.Add(1)
		return def, nil
	}
	if err := meter.Charge(c.opts.Costs.StructCost); err != nil {
		return nil, err
	}

	sd := cm.StructDefAt(idx)
	sh := cm.StructHandleAt(sd.StructHandle)
	ctx, err := types.IdentityMapping(len(sh.TypeFormals))
	if err != nil {
		return nil, err
	}

	var def *types.StructDef
	if sd.Native {
		name := cm.StructHandleName(sh)
		ns, ok := c.opts.Natives.Lookup(module.ID(), name)
		if !ok {
			err := errors.Linker(module.ID(), "native struct", name)
			Logger().Warn("unresolved native struct", zap.Error(err))
			return nil, err
		}
		if ns.Arity() != ctx.Len() {
			return nil, errors.New(errors.PhaseLink, errors.KindLinker).
				Module(module).
				Value(name).
				Detail("native struct %q takes %d type parameters, declared with %d", name, ns.Arity(), ctx.Len()).
				Build()
		}
		def = ns.Instantiate(ctx.Actuals())
	} else {
		fields := cm.FieldDefRange(sd)
		resolved := make([]types.Type, 0, len(fields))
		for i := range fields {
			tok := cm.TypeSignatureAt(fields[i].Signature).Token
			t, ok, err := c.ResolveSignatureTokenWithFetcher(module, tok, ctx, meter, fetcher)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, nil
			}
			resolved = append(resolved, t)
		}
		def = types.NewStructDef(resolved)
	}

	c.stats.structsBuilt.Add(1)
	if !memoize {
		return def, nil
	}
	return module.cacheStructDef(idx, def), nil
}

// ResolveFunctionSignatureWithFetcher resolves the argument and return types
// of fn with its type formals bound to typeActuals. A nil result with a nil
// error means some type lives in an unpublished module.
func (c *VMModuleCache) ResolveFunctionSignatureWithFetcher(
	fn *FunctionRef,
	typeActuals []types.Type,
	meter gas.Meter,
	fetcher ModuleFetcher,
) (*FunctionSignature, error) {
	sig := fn.Signature()
	if len(typeActuals) != len(sig.TypeFormals) {
		return nil, errors.New(errors.PhaseResolve, errors.KindInvalidInput).
			Module(fn.Module).
			Value(fn.Name()).
			Detail("%s takes %d type arguments, got %d", fn.Name(), len(sig.TypeFormals), len(typeActuals)).
			Build()
	}
	ctx := types.NewTypeContext(typeActuals)

	out := &FunctionSignature{
		Args:    make([]types.Type, 0, len(sig.ArgTypes)),
		Returns: make([]types.Type, 0, len(sig.ReturnTypes)),
	}
	for _, tok := range sig.ArgTypes {
		t, ok, err := c.ResolveSignatureTokenWithFetcher(fn.Module, tok, ctx, meter, fetcher)
		if err != nil || !ok {
			return nil, err
		}
		out.Args = append(out.Args, t)
	}
	for _, tok := range sig.ReturnTypes {
		t, ok, err := c.ResolveSignatureTokenWithFetcher(fn.Module, tok, ctx, meter, fetcher)
		if err != nil || !ok {
			return nil, err
		}
		out.Returns = append(out.Returns, t)
	}
	return out, nil
}

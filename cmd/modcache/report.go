package main

import (
	"github.com/wippyai/modcache/bytecode"
	"github.com/wippyai/modcache/gas"
	"github.com/wippyai/modcache/loader"
	"github.com/wippyai/modcache/types"
)

type structReport struct {
	def     *types.StructDef
	err     error
	name    string
	formals int
	index   bytecode.StructDefinitionIndex
}

type callReport struct {
	ref    *loader.FunctionRef
	err    error
	from   string
	target string
}

type moduleReport struct {
	module  *loader.LoadedModule
	err     error
	id      bytecode.ModuleID
	structs []structReport
	calls   []callReport
}

// inspectModule resolves every struct and every call target of id.
func inspectModule(cache loader.ModuleCache, id bytecode.ModuleID, meter func() gas.Meter) moduleReport {
	r := moduleReport{id: id}
	m, err := cache.GetLoadedModule(id)
	if err != nil || m == nil {
		r.err = err
		return r
	}
	r.module = m
	cm := m.Module()

	for i := range cm.StructDefs {
		idx := bytecode.StructDefinitionIndex(i)
		sh := cm.StructHandleAt(cm.StructDefAt(idx).StructHandle)
		def, err := cache.ResolveStructDef(m, idx, meter())
		r.structs = append(r.structs, structReport{
			name:    cm.StructDefName(idx),
			formals: len(sh.TypeFormals),
			index:   idx,
			def:     def,
			err:     err,
		})
	}

	for i := range cm.FunctionDefs {
		fn := m.Function(bytecode.FunctionDefinitionIndex(i))
		for _, ins := range fn.Code().Code {
			fh, ok := ins.CallTarget()
			if !ok {
				continue
			}
			h := cm.FunctionHandleAt(fh)
			ref, err := cache.ResolveFunctionRef(m, fh)
			r.calls = append(r.calls, callReport{
				from:   fn.Name(),
				target: cm.FunctionHandleModuleID(h).String() + "::" + cm.FunctionHandleName(h),
				ref:    ref,
				err:    err,
			})
		}
	}
	return r
}

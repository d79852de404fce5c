package loader

import "github.com/wippyai/modcache/bytecode"

// FunctionRef points at a function definition inside a LoadedModule. It does
// not own the module and is valid as long as the module's scope is.
type FunctionRef struct {
	Module *LoadedModule
	Index  bytecode.FunctionDefinitionIndex
}

// Definition returns the function definition.
func (f *FunctionRef) Definition() *bytecode.FunctionDefinition {
	return f.Module.Module().FunctionDefAt(f.Index)
}

// Handle returns the module-local handle of the function.
func (f *FunctionRef) Handle() *bytecode.FunctionHandle {
	return f.Module.Module().FunctionHandleAt(f.Definition().Function)
}

// Name returns the declared function name.
func (f *FunctionRef) Name() string {
	return f.Module.Module().FunctionDefName(f.Index)
}

// ModuleID returns the identifier of the defining module.
func (f *FunctionRef) ModuleID() bytecode.ModuleID {
	return f.Module.ID()
}

// Signature returns the unresolved signature.
func (f *FunctionRef) Signature() *bytecode.FunctionSignature {
	return f.Module.Module().FunctionSignatureAt(f.Handle().Signature)
}

// Code returns the function body. Native functions have an empty body.
func (f *FunctionRef) Code() *bytecode.CodeUnit {
	return &f.Definition().Code
}

func (f *FunctionRef) IsNative() bool { return f.Definition().IsNative() }
func (f *FunctionRef) IsPublic() bool { return f.Definition().IsPublic() }

func (f *FunctionRef) String() string {
	return f.ModuleID().String() + "::" + f.Name()
}

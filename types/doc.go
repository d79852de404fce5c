// Package types holds resolved runtime types.
//
// A Type is what a signature token becomes once every struct handle it names
// has been resolved. Struct shapes (StructDef) are resolved once per
// declaration with their type formals left abstract, then instantiated per use
// site by substituting a TypeContext.
package types

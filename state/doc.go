// Package state models versioned chain state as seen by the module cache.
//
// Module code lives under ModuleAccessPath(id). A Store keeps every written
// version of every path; Store.View pins reads to one version so a block
// sees a consistent snapshot while later blocks write newer versions.
package state

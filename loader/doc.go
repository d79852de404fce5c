// Package loader resolves module handles into verified, fully typed
// definitions and caches the results across three scopes.
//
// A VMModuleCache lives for the whole process and owns every module loaded
// from chain state. A BlockModuleCache is a per-block view of it that loads
// misses through the block's ModuleFetcher. A TransactionModuleCache holds the
// modules a transaction publishes; its modules shadow the block's and are
// either handed to the parent on commit (PublishedModules, then
// ReclaimCachedModules on the parent) or dropped on abort (Discard).
//
// Every tier implements ModuleCache. Resolution distinguishes two outcomes
// that are not successes:
//
//   - a dependency that is not published yields a nil result and a nil
//     error. Nothing about it is cached, so the same lookup succeeds once the
//     module appears.
//   - a fault (verification failure, missing name in a present module, gas
//     exhaustion, internal inconsistency) yields an *errors.Error and aborts
//     the resolution immediately.
//
// Struct shapes are resolved once per definition, with type formals left
// abstract, and memoized on the owning LoadedModule. Use sites substitute
// their type actuals into the memoized shape.
//
// Basic usage:
//
//	vm := loader.NewVMModuleCache(loader.Options{})
//	block := loader.NewBlockModuleCache(vm, loader.NewStateFetcher(store.View(height)))
//	txn := loader.NewTransactionModuleCache(block, loader.Options{})
//	defer txn.Discard()
//
//	m, err := txn.GetLoadedModule(id)
//	def, err := txn.ResolveStructDef(m, idx, gas.NewMeter(budget))
package loader

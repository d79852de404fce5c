// Package modcache resolves and caches on-chain bytecode modules for a VM.
//
// Programs reference other modules by symbolic handles. Before a function
// can run, every handle it touches must be resolved into a verified, fully
// typed definition. This repository provides that resolution core: a
// layered module cache and a recursive type and struct resolver bounded by
// a gas meter.
//
// # Architecture Overview
//
//	modcache/
//	├── bytecode/       Module file format, msgpack codec, structural verifier
//	├── types/          Resolved types, struct shapes, type substitution
//	├── natives/        Registry of host-provided struct layouts
//	├── gas/            Resolution cost meter
//	├── arena/          Reference-stable, insert-once storage
//	├── state/          Versioned in-memory chain state
//	├── loader/         Loaded modules, fetchers, VM/Block/Transaction caches
//	├── config/         TOML configuration and logger setup
//	├── errors/         Structured error types
//	└── cmd/modcache/   CLI and interactive inspector
//
// # Quick Start
//
// Resolve a struct published in chain state:
//
//	vm := loader.NewVMModuleCache(loader.Options{})
//	block := loader.NewBlockModuleCache(vm, loader.NewStateFetcher(store.View(version)))
//	txn := loader.NewTransactionModuleCache(block, loader.Options{})
//	defer txn.Discard()
//
//	m, err := txn.GetLoadedModule(id)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if m == nil {
//	    // not published
//	}
//	idx, _ := m.StructDefIndex("Coin")
//	def, err := txn.ResolveStructDef(m, idx, gas.NewMeter(10_000))
//
// # Unknown Versus Failed
//
// A dependency that is not published is not an error: resolution returns a
// nil result and a nil error, and nothing about the miss is cached. Faults
// such as verification failures, missing names in present modules, and gas
// exhaustion are returned as *errors.Error and abort resolution.
//
// # Scopes
//
// The VM cache lives for the process. A block cache is a per-block view that
// loads misses from chain state into the VM cache. A transaction cache keeps
// the modules a transaction publishes private until commit, when the parent
// reclaims them, or abort, when they are discarded.
//
// # Thread Safety
//
// All caches are safe for concurrent use. Concurrent misses on the same
// module share one fetch and verification.
package modcache

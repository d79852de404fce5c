// Package errors provides structured error types for the module cache.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The taxonomy separates verification faults, linkage faults, resource exhaustion,
// internal invariant violations and protocol misuse. An unresolvable dependency is
// never an error and is not represented here.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLink, errors.KindLinker).
//		Module(id).
//		Path("function_handles", "2").
//		Detail("function %q not declared", name).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Linker(id, "struct", "Coin")
//	err := errors.OutOfGas(requested, remaining)
//
// Sentinels such as ErrLinker and ErrOutOfGas match any error of the same
// Phase and Kind through errors.Is.
package errors

package bytecode

import (
	"go.uber.org/multierr"
)

// VerifiedModule is a CompiledModule that passed verification.
// It can only be obtained from VerifyModule or a Verifier, so holders may
// trust every index inside it.
type VerifiedModule struct {
	module *CompiledModule
}

// Module returns the underlying module. Callers must not mutate it.
func (v *VerifiedModule) Module() *CompiledModule {
	return v.module
}

// SelfID returns the identifier the module is published under.
func (v *VerifiedModule) SelfID() ModuleID {
	return v.module.SelfID()
}

// VerifyModule runs structural verification over m.
// On failure it returns every finding in discovery order.
func VerifyModule(m *CompiledModule) (*VerifiedModule, []error) {
	if err := m.Validate(); err != nil {
		return nil, multierr.Errors(err)
	}
	return &VerifiedModule{module: m}, nil
}

// Verifier decodes raw module bytes and verifies the result.
type Verifier struct{}

// Verify decodes and verifies raw. A decoding failure is reported as the only error.
func (Verifier) Verify(raw []byte) (*VerifiedModule, []error) {
	m, err := ParseModule(raw)
	if err != nil {
		return nil, []error{err}
	}
	return VerifyModule(m)
}

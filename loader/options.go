package loader

import (
	"github.com/wippyai/modcache/bytecode"
	"github.com/wippyai/modcache/natives"
)

// Verifier turns raw module bytes into a verified module. On failure it
// returns every finding, most relevant first.
type Verifier interface {
	Verify(raw []byte) (*bytecode.VerifiedModule, []error)
}

// Costs are the gas units charged per resolution step. Every step costs at
// least one unit, so recursive declarations always exhaust a bounded meter.
type Costs struct {
	// TokenCost is charged for every signature token resolved and every
	// type node visited while instantiating a generic shape.
	TokenCost uint64
	// StructCost is charged for every struct definition resolved without a memo hit.
	StructCost uint64
}

// DefaultCosts charges one unit per step.
var DefaultCosts = Costs{TokenCost: 1, StructCost: 1}

// Options configure a VMModuleCache. Zero fields take defaults.
type Options struct {
	Verifier Verifier
	Natives  natives.Registry
	Costs    Costs
}

func (o Options) withDefaults() Options {
	if o.Verifier == nil {
		o.Verifier = bytecode.Verifier{}
	}
	if o.Natives == nil {
		o.Natives = natives.Default()
	}
	if o.Costs.TokenCost == 0 {
		o.Costs.TokenCost = DefaultCosts.TokenCost
	}
	if o.Costs.StructCost == 0 {
		o.Costs.StructCost = DefaultCosts.StructCost
	}
	return o
}

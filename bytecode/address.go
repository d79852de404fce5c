package bytecode

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/wippyai/modcache/errors"
)

// AddressLength is the byte length of an account address.
const AddressLength = 32

// Address identifies an on-chain account that publishes modules.
type Address [AddressLength]byte

// CoreAddress is the account that publishes the standard modules (0x0).
var CoreAddress Address

// ParseAddress parses a hex address with optional 0x prefix.
// Short forms are left-padded with zeros, so "0x1" is the address ending in 01.
func ParseAddress(s string) (Address, error) {
	var a Address
	h := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if h == "" || len(h) > AddressLength*2 {
		return a, errors.InvalidInput(errors.PhaseDecode, fmt.Sprintf("invalid address %q", s))
	}
	if len(h)%2 == 1 {
		h = "0" + h
	}
	raw, err := hex.DecodeString(h)
	if err != nil {
		return a, errors.Wrap(errors.PhaseDecode, errors.KindInvalidInput, err, fmt.Sprintf("invalid address %q", s))
	}
	copy(a[AddressLength-len(raw):], raw)
	return a, nil
}

// MustParseAddress is like ParseAddress but panics on error.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String renders the address in short hex form with leading zeros trimmed.
func (a Address) String() string {
	h := strings.TrimLeft(hex.EncodeToString(a[:]), "0")
	if h == "" {
		h = "0"
	}
	return "0x" + h
}

// Hex renders the full-width address.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// ModuleID uniquely identifies a published module.
// It is comparable and used directly as a map key.
type ModuleID struct {
	Address Address
	Name    string
}

// NewModuleID creates a module identifier.
func NewModuleID(addr Address, name string) ModuleID {
	return ModuleID{Address: addr, Name: name}
}

// ParseModuleID parses "<address>::<name>".
func ParseModuleID(s string) (ModuleID, error) {
	addr, name, ok := strings.Cut(s, "::")
	if !ok || name == "" || strings.Contains(name, "::") {
		return ModuleID{}, errors.InvalidInput(errors.PhaseDecode, fmt.Sprintf("invalid module id %q, want <address>::<name>", s))
	}
	a, err := ParseAddress(addr)
	if err != nil {
		return ModuleID{}, err
	}
	return ModuleID{Address: a, Name: name}, nil
}

func (id ModuleID) String() string {
	return id.Address.String() + "::" + id.Name
}

package state

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"

	"github.com/wippyai/modcache/bytecode"
)

// Path tags partition an account's storage.
const (
	CodeTag     byte = 0x00
	ResourceTag byte = 0x01
)

// AccessPath locates one value in chain state: an account and a tagged
// path inside it.
type AccessPath struct {
	Path    []byte
	Address bytecode.Address
}

// ModuleAccessPath returns where the code of module id is stored.
func ModuleAccessPath(id bytecode.ModuleID) AccessPath {
	h := sha3.NewLegacyKeccak256()
	h.Write(id.Address[:])
	h.Write([]byte(id.Name))
	path := make([]byte, 0, 1+h.Size())
	path = append(path, CodeTag)
	return AccessPath{Address: id.Address, Path: h.Sum(path)}
}

// Key returns a comparable encoding of the path.
func (p AccessPath) Key() string {
	return string(p.Address[:]) + string(p.Path)
}

func (p AccessPath) String() string {
	return p.Address.String() + "/" + hex.EncodeToString(p.Path)
}

package bytecode

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/wippyai/modcache/errors"
)

// Binary header. The payload after the header is the msgpack encoding of a CompiledModule.
var Magic = [4]byte{0xa1, 0x1c, 0xeb, 0x0b}

const (
	// FormatVersion is bumped whenever the payload layout changes.
	FormatVersion uint8 = 1
	headerSize          = len(Magic) + 1
)

// Encode serializes the module to its on-chain binary form.
func (m *CompiledModule) Encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(Magic[:])
	buf.WriteByte(FormatVersion)

	enc := msgpack.NewEncoder(&buf)
	enc.UseCompactInts(true)
	if err := enc.Encode(m); err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, err, "encode module payload")
	}
	return buf.Bytes(), nil
}

// MustEncode is like Encode but panics on error.
func (m *CompiledModule) MustEncode() []byte {
	data, err := m.Encode()
	if err != nil {
		panic(err)
	}
	return data
}

// ParseModule decodes a module from its binary form without verifying it.
func ParseModule(data []byte) (*CompiledModule, error) {
	if len(data) < headerSize {
		return nil, errors.Decode(fmt.Sprintf("module too short: %d bytes", len(data)), nil)
	}
	if !bytes.Equal(data[:len(Magic)], Magic[:]) {
		return nil, errors.Decode(fmt.Sprintf("invalid magic % x", data[:len(Magic)]), nil)
	}
	if v := data[len(Magic)]; v != FormatVersion {
		return nil, errors.Decode(fmt.Sprintf("unsupported format version %d (want %d)", v, FormatVersion), nil)
	}

	dec := msgpack.NewDecoder(bytes.NewReader(data[headerSize:]))
	dec.DisallowUnknownFields(true)

	m := &CompiledModule{}
	if err := dec.Decode(m); err != nil {
		return nil, errors.Decode("decode module payload", err)
	}
	return m, nil
}

// Package wire holds the encoding used both on the host link and for everything that gets signed.
//
// Structs are encoded as CBOR arrays (`cbor:",toarray"`) with the core deterministic options,
// so that two devices holding the same parsed values always produce the same bytes.
package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var (
	canonicalMode cbor.EncMode
	decodeMode    cbor.DecMode
)

func init() {
	var err error
	if canonicalMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	decOptions := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}
	if decodeMode, err = decOptions.DecMode(); err != nil {
		panic(err)
	}
}

// Canonical returns the deterministic encoding of v.
//
// It must always be called on a value parsed locally, never on bytes received from a peer.
func Canonical(v interface{}) ([]byte, error) {
	data, err := canonicalMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("wire: canonical encoding: %w", err)
	}
	return data, nil
}

// Marshal encodes v for transport.
func Marshal(v interface{}) ([]byte, error) {
	return Canonical(v)
}

// Unmarshal decodes data into v, rejecting duplicate map keys and unknown fields.
func Unmarshal(data []byte, v interface{}) error {
	if err := decodeMode.Unmarshal(data, v); err != nil {
		return fmt.Errorf("wire: decode: %w", err)
	}
	return nil
}

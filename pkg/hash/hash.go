package hash

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/taurusgroup/mpc-vault/pkg/math/curve"
	"github.com/zeebo/blake3"
)

// DigestLengthBytes is the size of the output of Sum.
const DigestLengthBytes = 64

// Hash is the hash function we use for transcripts and session-binding commitments.
//
// Internally, this is a wrapper around blake3, whose output can be extended as needed.
type Hash struct {
	h *blake3.Hasher
}

// New creates a Hash struct, and writes the given domain separated data to it.
func New(initialData ...WriterToWithDomain) *Hash {
	hash := &Hash{h: blake3.New()}
	for _, d := range initialData {
		_ = hash.WriteAny(d)
	}
	return hash
}

// Digest returns a reader for the current output of the function.
//
// This finalizes the current state of the hash, and returns what's
// essentially a stream of random bytes.
func (hash *Hash) Digest() io.Reader {
	return hash.h.Digest()
}

// Sum returns a slice of length DigestLengthBytes resulting from the current hash state.
// If a different length is required, use io.ReadFull(hash.Digest(), out) instead.
func (hash *Hash) Sum() []byte {
	out := make([]byte, DigestLengthBytes)
	if _, err := io.ReadFull(hash.Digest(), out); err != nil {
		panic(fmt.Sprintf("hash.Sum: internal hash failure: %v", err))
	}
	return out
}

// WriteAny takes many different data types and writes them to the hash state.
//
// Currently supported types:
//
//   - []byte
//   - uint32
//   - curve.Point
//   - hash.WriterToWithDomain
//
// This function will apply its own domain separation for the first three types.
// The last type already suggests which domain to use, and this function respects it.
func (hash *Hash) WriteAny(data ...interface{}) error {
	var err error
	for _, d := range data {
		switch t := d.(type) {
		case []byte:
			err = writeWithDomain(hash.h, &BytesWithDomain{
				TheDomain: "[]byte",
				Bytes:     t,
			})
			if err != nil {
				return fmt.Errorf("hash.Hash: write []byte: %w", err)
			}
		case uint32:
			b := make([]byte, 4)
			binary.BigEndian.PutUint32(b, t)
			err = writeWithDomain(hash.h, &BytesWithDomain{
				TheDomain: "uint32",
				Bytes:     b,
			})
			if err != nil {
				return fmt.Errorf("hash.Hash: write uint32: %w", err)
			}
		case curve.Point:
			b, err := t.MarshalBinary()
			if err != nil {
				return fmt.Errorf("hash.Hash: write curve.Point: %w", err)
			}
			err = writeWithDomain(hash.h, &BytesWithDomain{
				TheDomain: "curve.Point",
				Bytes:     b,
			})
			if err != nil {
				return fmt.Errorf("hash.Hash: write curve.Point: %w", err)
			}
		case WriterToWithDomain:
			if err = writeWithDomain(hash.h, t); err != nil {
				return fmt.Errorf("hash.Hash: write io.WriterTo: %w", err)
			}
		default:
			panic("hash.Hash: unsupported type")
		}
	}
	return nil
}

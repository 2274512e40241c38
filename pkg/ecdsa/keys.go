package ecdsa

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/taurusgroup/mpc-vault/pkg/math/curve"
)

const (
	// PublicKeySize is the size of a SEC1 compressed public key.
	PublicKeySize = 33
	// PrivateKeySize is the size of a serialized private key.
	PrivateKeySize = 32
)

var ErrInvalidPrivateKey = errors.New("ecdsa: private key is zero or not reduced")

// PublicKey is a SEC1 compressed secp256k1 point.
type PublicKey [PublicKeySize]byte

// PrivateKey is a long-term or ephemeral secp256k1 signing key.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// NewPrivateKey parses a 32 byte big-endian private key.
func NewPrivateKey(data [PrivateKeySize]byte) (*PrivateKey, error) {
	var s secp256k1.ModNScalar
	overflow := s.SetBytes(&data)
	if overflow != 0 || s.IsZero() {
		return nil, ErrInvalidPrivateKey
	}
	return &PrivateKey{key: secp256k1.NewPrivateKey(&s)}, nil
}

// GenerateKey samples a fresh private key from rand.
func GenerateKey(rand io.Reader) (*PrivateKey, error) {
	var data [PrivateKeySize]byte
	for {
		if _, err := io.ReadFull(rand, data[:]); err != nil {
			return nil, fmt.Errorf("ecdsa: generate key: %w", err)
		}
		if k, err := NewPrivateKey(data); err == nil {
			return k, nil
		}
	}
}

// Public returns the compressed public key of k.
func (k *PrivateKey) Public() PublicKey {
	var pub PublicKey
	copy(pub[:], k.key.PubKey().SerializeCompressed())
	return pub
}

// Bytes returns the 32 byte big-endian encoding of k.
func (k *PrivateKey) Bytes() [PrivateKeySize]byte {
	var out [PrivateKeySize]byte
	k.key.Key.PutBytes(&out)
	return out
}

// Scalar returns k as a scalar of the given group.
func (k *PrivateKey) Scalar(group curve.Curve) curve.Scalar {
	data := k.Bytes()
	s, err := curve.ScalarFromBytes(group, data[:])
	if err != nil {
		panic(fmt.Sprintf("ecdsa: private key does not fit in %s scalar", group.Name()))
	}
	return s
}

// Zero wipes the key material.
func (k *PrivateKey) Zero() {
	k.key.Zero()
}

// Point decodes pub as a point of group.
func (pub PublicKey) Point(group curve.Curve) (curve.Point, error) {
	return curve.PointFromBytes(group, pub[:])
}

// String returns the hex encoding of pub.
func (pub PublicKey) String() string {
	return hex.EncodeToString(pub[:])
}

// PublicKeyFromPoint returns the compressed encoding of p.
func PublicKeyFromPoint(p curve.Point) (PublicKey, error) {
	var pub PublicKey
	data, err := p.MarshalBinary()
	if err != nil {
		return pub, err
	}
	if len(data) != PublicKeySize {
		return pub, fmt.Errorf("ecdsa: unexpected point size %d", len(data))
	}
	copy(pub[:], data)
	return pub, nil
}

package ecdsa

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/taurusgroup/mpc-vault/pkg/wire"
)

// SignatureSize is the size of a raw r ∥ s signature.
const SignatureSize = 64

// Signature is the raw r ∥ s encoding of an ECDSA signature, both halves 32 byte big-endian.
type Signature [SignatureSize]byte

func (sig Signature) String() string {
	return hex.EncodeToString(sig[:])
}

// Sign computes an ECDSA signature of SHA-256(message), with an RFC6979 nonce.
func Sign(message []byte, priv *PrivateKey) Signature {
	digest := sha256.Sum256(message)
	s := ecdsa.Sign(priv.key, digest[:])

	var out Signature
	r, sv := s.R(), s.S()
	r.PutBytesUnchecked(out[:32])
	sv.PutBytesUnchecked(out[32:])
	return out
}

// Verify returns true if sig is a valid signature of message under pub.
func Verify(message []byte, sig Signature, pub PublicKey) bool {
	key, err := secp256k1.ParsePubKey(pub[:])
	if err != nil {
		return false
	}
	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow || r.IsZero() {
		return false
	}
	if overflow := s.SetByteSlice(sig[32:]); overflow || s.IsZero() {
		return false
	}
	digest := sha256.Sum256(message)
	return ecdsa.NewSignature(&r, &s).Verify(digest[:], key)
}

// SignStruct signs the canonical encoding of v.
func SignStruct(v interface{}, priv *PrivateKey) (Signature, error) {
	data, err := wire.Canonical(v)
	if err != nil {
		return Signature{}, fmt.Errorf("ecdsa: sign struct: %w", err)
	}
	return Sign(data, priv), nil
}

// VerifyStruct verifies sig against the canonical encoding of v.
func VerifyStruct(v interface{}, sig Signature, pub PublicKey) bool {
	data, err := wire.Canonical(v)
	if err != nil {
		return false
	}
	return Verify(data, sig, pub)
}

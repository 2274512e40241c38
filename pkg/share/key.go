// Package share encrypts secret shares for a single recipient.
//
// Ciphertexts are AES-256-CBC with an all zero IV, so equal plaintexts under the same key
// give equal ciphertexts. A Key value refuses to Seal twice and wipes itself afterwards, but
// that limit is per value: DeriveKey returns the same key material for a pair on every call.
// A signing session therefore encrypts one scalar per sharing (D, E, A, K, P) for each pair
// under one key, and the persistent key of a device encrypts its group share on every run.
// The plaintexts are independent random scalars.
package share

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"

	"github.com/taurusgroup/mpc-vault/pkg/ecdsa"
	"github.com/taurusgroup/mpc-vault/pkg/math/curve"
)

const (
	// KeySize is the size of an AES-256 key.
	KeySize = 32
	// PlaintextSize is the size of an encoded scalar.
	PlaintextSize = 32
)

var (
	ErrKeyUsed       = errors.New("share: key already used for encryption")
	ErrKeyWiped      = errors.New("share: key was wiped")
	ErrInvalidLength = errors.New("share: ciphertext is not a multiple of the block size")
	ErrPadding       = errors.New("share: invalid padding")
)

// Ciphertext is a sealed 32 byte scalar.
type Ciphertext [PlaintextSize]byte

// Key is a single use symmetric key.
type Key struct {
	mu    sync.Mutex
	raw   [KeySize]byte
	used  bool
	wiped bool
}

// NewKey wraps raw key material.
//
// The caller should wipe raw once the Key is created.
func NewKey(raw [KeySize]byte) *Key {
	return &Key{raw: raw}
}

// DeriveKey returns the key shared between the holder of priv and the holder of the private key of peer:
// SHA-256 of the compressed encoding of priv⋅peer.
//
// Both sides obtain the same key since a⋅(b⋅G) = b⋅(a⋅G), and repeated calls for a pair
// return the same key.
func DeriveKey(group curve.Curve, priv *ecdsa.PrivateKey, peer ecdsa.PublicKey) (*Key, error) {
	peerPoint, err := peer.Point(group)
	if err != nil {
		return nil, fmt.Errorf("share: peer public key: %w", err)
	}
	secret := priv.Scalar(group)
	defer secret.Zero()

	shared := secret.Act(peerPoint)
	data, err := shared.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("share: ecdh: %w", err)
	}
	k := NewKey(sha256.Sum256(data))
	for i := range data {
		data[i] = 0
	}
	return k, nil
}

// Seal encrypts plain. A Key value can seal exactly once, after which its material is wiped.
// Another Key derived from the same material seals again under the same key and IV.
func (k *Key) Seal(plain [PlaintextSize]byte) (Ciphertext, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	var out Ciphertext
	if k.used {
		return out, ErrKeyUsed
	}
	if k.wiped {
		return out, ErrKeyWiped
	}
	k.used = true
	defer k.wipeLocked()

	ct, err := encrypt(k.raw[:], plain[:])
	if err != nil {
		return out, err
	}
	copy(out[:], ct)
	return out, nil
}

// Open decrypts ct.
func (k *Key) Open(ct Ciphertext) ([PlaintextSize]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	var out [PlaintextSize]byte
	if k.wiped {
		return out, ErrKeyWiped
	}
	plain, err := decrypt(k.raw[:], ct[:], PlaintextSize)
	if err != nil {
		return out, err
	}
	copy(out[:], plain)
	for i := range plain {
		plain[i] = 0
	}
	return out, nil
}

// Wipe erases the key material.
func (k *Key) Wipe() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.wipeLocked()
}

func (k *Key) wipeLocked() {
	for i := range k.raw {
		k.raw[i] = 0
	}
	k.wiped = true
}

var zeroIV [aes.BlockSize]byte

// encrypt pads data up to the block boundary and encrypts it.
// Inputs that are already aligned are not padded.
func encrypt(key, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("share: aes: %w", err)
	}
	padded := pad(data)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, zeroIV[:]).CryptBlocks(out, padded)
	return out, nil
}

// decrypt decrypts ct and strips padding down to originalLength.
func decrypt(key, ct []byte, originalLength int) ([]byte, error) {
	if len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return nil, ErrInvalidLength
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("share: aes: %w", err)
	}
	out := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, zeroIV[:]).CryptBlocks(out, ct)
	if originalLength > len(out) {
		return nil, ErrPadding
	}
	padLen := len(out) - originalLength
	for _, b := range out[originalLength:] {
		if int(b) != padLen {
			return nil, ErrPadding
		}
	}
	return out[:originalLength], nil
}

func pad(data []byte) []byte {
	padLen := (aes.BlockSize - len(data)%aes.BlockSize) % aes.BlockSize
	out := make([]byte, len(data)+padLen)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(padLen)
	}
	return out
}

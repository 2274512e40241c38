// Package childkey derives public keys below the group key, without any interaction between
// the members of the group.
//
// The first 32 bytes of the compressed group key are read as BIP39 entropy. The seed of that
// mnemonic, with an empty passphrase, is the root of a BIP32 tree. The child key at a path is
// Q + r⋅G, where r is the private key of the tree at that path. Every member derives the same
// child key, and the matching private key shares are obtained by adding r to the share of x.
package childkey

import (
	"errors"
	"fmt"

	"github.com/taurusgroup/mpc-vault/internal/bip32"
	"github.com/taurusgroup/mpc-vault/internal/round"
	"github.com/taurusgroup/mpc-vault/pkg/ecdsa"
	"github.com/taurusgroup/mpc-vault/pkg/math/curve"
	"github.com/taurusgroup/mpc-vault/pkg/protocol"
	"github.com/taurusgroup/mpc-vault/protocols/dkg"
	"github.com/tyler-smith/go-bip39"
)

// EntropySize is the number of bytes of the group key used as mnemonic entropy.
const EntropySize = 32

var ErrInvalidSignature = errors.New("childkey: invalid group key info signature")

var _ round.Round = (*round1)(nil)

// GetChildPublicKeyRequest carries a group key as returned by key generation, and the path to derive.
type GetChildPublicKeyRequest struct {
	_              struct{} `cbor:",toarray"`
	GroupKeyInfo   dkg.GroupKeyInfo
	Signature      ecdsa.Signature
	DerivationPath bip32.Path
}

type GetChildPublicKeyResponse struct {
	_         struct{} `cbor:",toarray"`
	PublicKey ecdsa.PublicKey
}

// Tweak returns r, the private key at path of the tree rooted at the mnemonic of groupKey.
func Tweak(group curve.Curve, groupKey ecdsa.PublicKey, path bip32.Path) (curve.Scalar, error) {
	mnemonic, err := bip39.NewMnemonic(groupKey[:EntropySize])
	if err != nil {
		return nil, fmt.Errorf("childkey: mnemonic: %w", err)
	}
	seed := bip39.NewSeed(mnemonic, "")
	defer wipe(seed)

	raw, err := bip32.DerivePrivateKey(seed, path)
	if err != nil {
		return nil, err
	}
	defer wipe(raw[:])
	return curve.ScalarFromBytes(group, raw[:])
}

// Derive returns the child key Q + r⋅G of groupKey at path.
func Derive(group curve.Curve, groupKey ecdsa.PublicKey, path bip32.Path) (ecdsa.PublicKey, error) {
	Q, err := groupKey.Point(group)
	if err != nil {
		return ecdsa.PublicKey{}, fmt.Errorf("childkey: group key: %w", err)
	}
	r, err := Tweak(group, groupKey, path)
	if err != nil {
		return ecdsa.PublicKey{}, err
	}
	defer r.Zero()
	return ecdsa.PublicKeyFromPoint(Q.Add(r.ActOnBase()))
}

// Start returns the session and only round of the child key flow.
func Start(helper *round.Helper) (round.Session, round.Round) {
	return helper, &round1{Helper: helper}
}

type round1 struct {
	*round.Helper
}

// Finalize implements round.Round.
func (r *round1) Finalize(req interface{}) (round.Round, interface{}, error) {
	body, ok := req.(*GetChildPublicKeyRequest)
	if !ok {
		return nil, nil, protocol.Integrity(round.ErrInvalidContent)
	}
	if !ecdsa.VerifyStruct(&body.GroupKeyInfo, body.Signature, r.PublicKey()) {
		return nil, nil, protocol.Integrity(ErrInvalidSignature)
	}

	child, err := Derive(r.Group(), body.GroupKeyInfo.GroupPubKey, body.DerivationPath)
	if err != nil {
		return nil, nil, protocol.Crypto(err)
	}
	r.Logger().Info().Stringer("path", body.DerivationPath).Stringer("key", child).Msg("child key derived")

	response := &GetChildPublicKeyResponse{PublicKey: child}
	return r.ResultRound(response), response, nil
}

// Step implements round.Round.
func (round1) Step() protocol.Step { return protocol.StepGetChildPublicKey }

// RequestContent implements round.Round.
func (round1) RequestContent() interface{} { return &GetChildPublicKeyRequest{} }

// Number implements round.Round.
func (round1) Number() round.Number { return 1 }

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

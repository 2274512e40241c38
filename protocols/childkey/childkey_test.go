package childkey

import (
	"crypto/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/mpc-vault/internal/bip32"
	"github.com/taurusgroup/mpc-vault/internal/round"
	"github.com/taurusgroup/mpc-vault/pkg/ecdsa"
	"github.com/taurusgroup/mpc-vault/pkg/math/curve"
	"github.com/taurusgroup/mpc-vault/pkg/math/sample"
	"github.com/taurusgroup/mpc-vault/pkg/protocol"
	"github.com/taurusgroup/mpc-vault/pkg/vault"
	"github.com/taurusgroup/mpc-vault/protocols/dkg"
	"github.com/tyler-smith/go-bip39"
)

var group = curve.Secp256k1{}

func TestDerive_MatchesShiftedKey(t *testing.T) {
	x := sample.ScalarUnit(rand.Reader, group)
	Q, err := ecdsa.PublicKeyFromPoint(x.ActOnBase())
	require.NoError(t, err)

	path := bip32.MustPath("m/44'/60'/0'/0/7")
	child, err := Derive(group, Q, path)
	require.NoError(t, err)

	r, err := Tweak(group, Q, path)
	require.NoError(t, err)
	expected, err := ecdsa.PublicKeyFromPoint(group.NewScalar().Set(x).Add(r).ActOnBase())
	require.NoError(t, err)
	assert.Equal(t, expected, child)

	again, err := Derive(group, Q, path)
	require.NoError(t, err)
	assert.Equal(t, child, again)

	other, err := Derive(group, Q, bip32.MustPath("m/44'/60'/0'/0/8"))
	require.NoError(t, err)
	assert.NotEqual(t, child, other)
}

func TestTweak_Mnemonic(t *testing.T) {
	priv, err := ecdsa.GenerateKey(rand.Reader)
	require.NoError(t, err)
	Q := priv.Public()
	path := bip32.MustPath("m/0")

	mnemonic, err := bip39.NewMnemonic(Q[:EntropySize])
	require.NoError(t, err)
	raw, err := bip32.DerivePrivateKey(bip39.NewSeed(mnemonic, ""), path)
	require.NoError(t, err)

	r, err := Tweak(group, Q, path)
	require.NoError(t, err)
	data, err := r.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, raw[:], data)
}

func TestRound_Signature(t *testing.T) {
	identity, err := ecdsa.GenerateKey(rand.Reader)
	require.NoError(t, err)
	helper, err := round.NewHelper(round.Info{
		Flow:      protocol.FlowChildKey,
		Group:     group,
		Identity:  identity,
		Confirmer: &vault.AutoConfirm{},
		Log:       zerolog.Nop(),
	})
	require.NoError(t, err)
	_, r := Start(helper)

	groupKey, err := ecdsa.GenerateKey(rand.Reader)
	require.NoError(t, err)
	info := dkg.GroupKeyInfo{GroupPubKey: groupKey.Public()}
	sig, err := ecdsa.SignStruct(&info, identity)
	require.NoError(t, err)

	path := bip32.MustPath("m/1/2")
	next, resp, err := r.Finalize(&GetChildPublicKeyRequest{GroupKeyInfo: info, Signature: sig, DerivationPath: path})
	require.NoError(t, err)
	expected, err := Derive(group, info.GroupPubKey, path)
	require.NoError(t, err)
	assert.Equal(t, expected, resp.(*GetChildPublicKeyResponse).PublicKey)
	assert.IsType(t, &round.Output{}, next)

	info.GroupPubKey = identity.Public()
	_, _, err = r.Finalize(&GetChildPublicKeyRequest{GroupKeyInfo: info, Signature: sig, DerivationPath: path})
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

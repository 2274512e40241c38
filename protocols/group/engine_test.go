package group

import (
	"crypto/rand"
	mrand "math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/mpc-vault/pkg/ecdsa"
	"github.com/taurusgroup/mpc-vault/pkg/party"
	"github.com/taurusgroup/mpc-vault/pkg/vault"
)

func newEntity(t *testing.T, threshold, total uint16) *EntityInfo {
	priv, err := ecdsa.GenerateKey(rand.Reader)
	require.NoError(t, err)
	var deviceID [32]byte
	_, _ = rand.Read(deviceID[:])
	e, err := NewEntityInfo(rand.Reader, 1700000000, threshold, total, vault.WalletID{1}, priv.Public(), deviceID)
	require.NoError(t, err)
	return e
}

func participantInfos(t *testing.T, threshold, total uint16) []ParticipantInfo {
	infos := make([]ParticipantInfo, total)
	for i := range infos {
		e := newEntity(t, threshold, total)
		f, err := e.Fingerprint()
		require.NoError(t, err)
		infos[i] = ParticipantInfo{EntityInfo: *e, Fingerprint: f}
	}
	return infos
}

func TestNewEntityInfo_Invalid(t *testing.T) {
	pub := ecdsa.PublicKey{2, 1}
	_, err := NewEntityInfo(rand.Reader, 1, 3, 2, vault.WalletID{1}, pub, [32]byte{1})
	assert.ErrorIs(t, err, ErrInvalidThreshold)
	_, err = NewEntityInfo(rand.Reader, 0, 2, 3, vault.WalletID{1}, pub, [32]byte{1})
	assert.ErrorIs(t, err, ErrZeroField)
	_, err = NewEntityInfo(rand.Reader, 1, 0, 3, vault.WalletID{1}, pub, [32]byte{1})
	assert.ErrorIs(t, err, ErrZeroField)
	_, err = NewEntityInfo(rand.Reader, 1, 2, 3, vault.WalletID{}, pub, [32]byte{1})
	assert.ErrorIs(t, err, ErrZeroField)
	_, err = NewEntityInfo(rand.Reader, 1, 2, 3, vault.WalletID{1}, pub, [32]byte{})
	assert.ErrorIs(t, err, ErrZeroField)
}

func TestFingerprint_Deterministic(t *testing.T) {
	e := newEntity(t, 2, 3)
	f1, err := e.Fingerprint()
	require.NoError(t, err)
	f2, err := e.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, f1, f2)

	mutations := []func(e *EntityInfo){
		func(e *EntityInfo) { e.Timestamp++ },
		func(e *EntityInfo) { e.Threshold++ },
		func(e *EntityInfo) { e.TotalParticipants++ },
		func(e *EntityInfo) { e.RandomNonce[mrand.Intn(32)] ^= 1 },
		func(e *EntityInfo) { e.DeviceInfo.DeviceID[mrand.Intn(32)] ^= 1 },
		func(e *EntityInfo) { e.DeviceInfo.WalletID[mrand.Intn(32)] ^= 1 },
		func(e *EntityInfo) { e.DeviceInfo.PubKey[1+mrand.Intn(32)] ^= 1 },
	}
	for i, mutate := range mutations {
		other := *e
		mutate(&other)
		f, err := other.Fingerprint()
		require.NoError(t, err)
		assert.NotEqual(t, f1, f, "mutation %d", i)
	}
}

func TestVerifyParticipantInfoList(t *testing.T) {
	infos := participantInfos(t, 2, 3)
	own := &infos[0].EntityInfo
	peers := infos[1:]

	require.NoError(t, VerifyParticipantInfoList(2, 3, own, peers))

	assert.ErrorIs(t, VerifyParticipantInfoList(2, 3, own, peers[:1]), ErrParticipantCount)
	assert.ErrorIs(t, VerifyParticipantInfoList(2, 4, own, peers), ErrParticipantCount)

	bad := append([]ParticipantInfo(nil), peers...)
	bad[1].Fingerprint[0] ^= 1
	assert.ErrorIs(t, VerifyParticipantInfoList(2, 3, own, bad), ErrFingerprintMismatch)

	bad = append([]ParticipantInfo(nil), peers...)
	bad[0].EntityInfo.Threshold = 3
	assert.ErrorIs(t, VerifyParticipantInfoList(2, 3, own, bad), ErrParameterMismatch)

	dup := []ParticipantInfo{peers[0], peers[0]}
	assert.ErrorIs(t, VerifyParticipantInfoList(2, 3, own, dup), ErrDuplicateParticipant)

	withSelf := []ParticipantInfo{peers[0], infos[0]}
	assert.ErrorIs(t, VerifyParticipantInfoList(2, 3, own, withSelf), ErrDuplicateParticipant)
}

func TestComputeGroupID_OrderIndependent(t *testing.T) {
	infos := participantInfos(t, 3, 5)
	info1, id1, err := ComputeGroupID(3, 5, infos)
	require.NoError(t, err)

	shuffled := append([]ParticipantInfo(nil), infos...)
	for trial := 0; trial < 10; trial++ {
		mrand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		info2, id2, err := ComputeGroupID(3, 5, shuffled)
		require.NoError(t, err)
		assert.Equal(t, id1, id2)
		assert.Equal(t, info1, info2)
	}

	for i := 1; i < len(infos); i++ {
		prev, _ := info1.PublicKeyAt(party.Index(i))
		cur, _ := info1.PublicKeyAt(party.Index(i + 1))
		assert.NotEqual(t, prev, cur)
	}
	for _, in := range infos {
		idx, ok := info1.IndexOf(in.EntityInfo.DeviceInfo.PubKey)
		require.True(t, ok)
		pub, ok := info1.PublicKeyAt(idx)
		require.True(t, ok)
		assert.Equal(t, in.EntityInfo.DeviceInfo.PubKey, pub)
	}
	_, ok := info1.PublicKeyAt(0)
	assert.False(t, ok)
	_, ok = info1.PublicKeyAt(6)
	assert.False(t, ok)

	_, _, err = ComputeGroupID(3, 5, infos[:4])
	assert.ErrorIs(t, err, ErrParticipantCount)
}

func TestComputeGroupID_SortedByFingerprint(t *testing.T) {
	infos := participantInfos(t, 2, 4)
	info, _, err := ComputeGroupID(2, 4, infos)
	require.NoError(t, err)

	byKey := make(map[ecdsa.PublicKey]Fingerprint)
	for _, in := range infos {
		byKey[in.EntityInfo.DeviceInfo.PubKey] = in.Fingerprint
	}
	for i := 1; i < len(info.Participants); i++ {
		a := byKey[info.Participants[i-1].PubKey]
		b := byKey[info.Participants[i].PubKey]
		assert.True(t, a.String() < b.String())
	}
}

func TestGroupInfo_VerifySigned(t *testing.T) {
	keys := make([]*ecdsa.PrivateKey, 3)
	infos := make([]ParticipantInfo, 3)
	for i := range infos {
		priv, err := ecdsa.GenerateKey(rand.Reader)
		require.NoError(t, err)
		keys[i] = priv
		e, err := NewEntityInfo(rand.Reader, 1700000000, 2, 3, vault.WalletID{1}, priv.Public(), [32]byte{byte(i + 1)})
		require.NoError(t, err)
		f, err := e.Fingerprint()
		require.NoError(t, err)
		infos[i] = ParticipantInfo{EntityInfo: *e, Fingerprint: f}
	}
	info, id, err := ComputeGroupID(2, 3, infos)
	require.NoError(t, err)

	sig, err := ecdsa.SignStruct(info, keys[1])
	require.NoError(t, err)
	self, got, err := info.VerifySigned(sig, keys[1].Public())
	require.NoError(t, err)
	assert.Equal(t, id, got)
	expected, ok := info.IndexOf(keys[1].Public())
	require.True(t, ok)
	assert.Equal(t, expected, self)

	_, _, err = info.VerifySigned(sig, keys[0].Public())
	assert.ErrorIs(t, err, ErrInvalidSignature)

	outsider, err := ecdsa.GenerateKey(rand.Reader)
	require.NoError(t, err)
	outsiderSig, err := ecdsa.SignStruct(info, outsider)
	require.NoError(t, err)
	_, _, err = info.VerifySigned(outsiderSig, outsider.Public())
	assert.ErrorIs(t, err, ErrNotMember)

	tampered := *info
	tampered.Threshold = 3
	_, _, err = tampered.VerifySigned(sig, keys[1].Public())
	assert.Error(t, err)
}

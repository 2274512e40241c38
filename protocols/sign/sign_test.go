package sign

import (
	"crypto/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/mpc-vault/internal/round"
	"github.com/taurusgroup/mpc-vault/internal/types"
	"github.com/taurusgroup/mpc-vault/pkg/ecdsa"
	"github.com/taurusgroup/mpc-vault/pkg/math/curve"
	"github.com/taurusgroup/mpc-vault/pkg/math/sample"
	"github.com/taurusgroup/mpc-vault/pkg/party"
	"github.com/taurusgroup/mpc-vault/pkg/protocol"
	"github.com/taurusgroup/mpc-vault/pkg/vault"
	"github.com/taurusgroup/mpc-vault/protocols/dkg"
	"github.com/taurusgroup/mpc-vault/protocols/group"
	"github.com/taurusgroup/mpc-vault/protocols/sign/mta"
)

func newSession(t *testing.T, confirmer vault.Confirmer) *Session {
	priv, err := ecdsa.GenerateKey(rand.Reader)
	require.NoError(t, err)
	helper, err := round.NewHelper(round.Info{
		Flow:      protocol.FlowSign,
		Group:     curve.Secp256k1{},
		Identity:  priv,
		Confirmer: confirmer,
		Log:       zerolog.Nop(),
	})
	require.NoError(t, err)
	s, _ := Start(helper)
	return s
}

func TestApproveMessage_Rejected(t *testing.T) {
	confirmer := &vault.AutoConfirm{Reject: func(title string) bool { return title == "Match the message to sign" }}
	s := newSession(t, confirmer)

	_, _, err := (&round1{Session: s}).Finalize(&ApproveMessageRequest{GroupID: group.GroupID{1}, Message: []byte{0xca, 0xfe}})
	assert.Equal(t, protocol.KindRejected, protocol.KindOf(err))
	assert.True(t, confirmer.Shown("Match the group ID"))
	assert.Contains(t, confirmer.Prompts(), "Match the message to sign: cafe")
}

func TestPostGroupInfo_WrongGroup(t *testing.T) {
	s := newSession(t, &vault.AutoConfirm{})
	r1 := &round1{Session: s}
	next, _, err := r1.Finalize(&ApproveMessageRequest{GroupID: group.GroupID{1}, Message: []byte("m")})
	require.NoError(t, err)

	other, err := ecdsa.GenerateKey(rand.Reader)
	require.NoError(t, err)
	var infos []group.ParticipantInfo
	for i, pub := range []ecdsa.PublicKey{s.PublicKey(), other.Public()} {
		e, err := group.NewEntityInfo(rand.Reader, 1700000000, 2, 2, vault.WalletID{1}, pub, [32]byte{byte(i + 1)})
		require.NoError(t, err)
		f, err := e.Fingerprint()
		require.NoError(t, err)
		infos = append(infos, group.ParticipantInfo{EntityInfo: *e, Fingerprint: f})
	}
	computed, _, err := group.ComputeGroupID(2, 2, infos)
	require.NoError(t, err)
	info := *computed
	sig, err := ecdsa.SignStruct(&info, s.Identity())
	require.NoError(t, err)

	// signed by us, but not the group approved in the first round
	_, _, err = next.Finalize(&PostGroupInfoRequest{GroupInfo: info, GroupInfoSignature: sig})
	assert.Equal(t, protocol.KindIntegrity, protocol.KindOf(err))
	assert.ErrorIs(t, err, ErrGroupMismatch)
}

func TestPostSequenceIndices(t *testing.T) {
	cases := map[string]struct {
		indices []party.Index
		ok      bool
	}{
		"valid":        {[]party.Index{3, 2}, true},
		"too few":      {[]party.Index{2}, false},
		"too many":     {[]party.Index{1, 2, 3}, false},
		"duplicate":    {[]party.Index{2, 2}, false},
		"out of range": {[]party.Index{2, 4}, false},
		"zero":         {[]party.Index{0, 2}, false},
		"missing self": {[]party.Index{1, 3}, false},
	}
	for name, c := range cases {
		s := newSession(t, &vault.AutoConfirm{})
		s.info = &group.GroupInfo{Threshold: 2, TotalParticipants: 3, Participants: make([]group.Participant, 3)}
		s.self = 2
		r := &round3{round2: &round2{round1: &round1{Session: s}}}

		next, resp, err := r.Finalize(&PostSequenceIndicesRequest{Indices: c.indices})
		if !c.ok {
			assert.Equal(t, protocol.KindIntegrity, protocol.KindOf(err), name)
			assert.ErrorIs(t, err, ErrSequenceIndices, name)
			continue
		}
		require.NoError(t, err, name)
		assert.Equal(t, &PostSequenceIndicesResponse{Accepted: true}, resp)
		assert.Equal(t, party.IndexSlice{2, 3}, s.indices)
		share, ok := next.(*shareRound)
		require.True(t, ok)
		assert.Equal(t, types.PolynomialD, share.polynomial)
	}
}

func TestShareRound_WrongPolynomial(t *testing.T) {
	s := newSession(t, &vault.AutoConfirm{})
	r := &shareRound{Session: s, polynomial: types.PolynomialA}

	_, _, err := r.Finalize(&dkg.GetShareDataRequest{Polynomial: types.PolynomialK})
	assert.ErrorIs(t, err, dkg.ErrWrongPolynomial)
	_, _, err = r.Finalize(&dkg.GetShareDataRequest{Polynomial: types.PolynomialX})
	assert.ErrorIs(t, err, dkg.ErrWrongPolynomial)
}

func TestNextExchange(t *testing.T) {
	g := curve.Secp256k1{}
	s := newSession(t, &vault.AutoConfirm{})
	s.self = 5
	s.indices = party.NewIndexSlice([]party.Index{7, 5, 2})
	k, a, x, p := sample.Scalar(rand.Reader, g), sample.Scalar(rand.Reader, g),
		sample.Scalar(rand.Reader, g), sample.Scalar(rand.Reader, g)
	m, err := mta.NewSession(s.indices, s.self, k, a, x, p)
	require.NoError(t, err)
	s.mta = m

	next, ok := s.nextExchange().(*mtaInitiateRound)
	require.True(t, ok)
	assert.Equal(t, party.Index(2), next.counterpart)

	s.receivers = append(s.receivers, Commitment{Counterpart: 2})
	out, ok := s.nextExchange().(*round.Output)
	require.True(t, ok)
	result := out.Result.(*Result)
	assert.Equal(t, 1, result.Rank)
	assert.Equal(t, 1, result.SenderTimes)
	assert.Equal(t, 1, result.ReceiverTimes)
	assert.Len(t, result.Commitments, 1)
}

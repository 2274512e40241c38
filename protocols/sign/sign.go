// Package sign runs the signing session of a message, up to the start of the MtA conversions.
//
//	ApproveMessage → PostGroupInfo → PostSequenceIndices
//	→ GetShareData × 5 → GetQi × 5 → GetGroupKey × 5
//	→ (MtaReceiverGetPkInitiate → MtaReceiverGetPk × 128 → MtaReceiverGetPkSig) × rank
//
// The five sharings D, E, A, K, P are run in this order among the signers only. D and E are
// zero-sharings. Between the last GetGroupKey and the first MtA query, the persistent share
// is decrypted and our MtA roles are computed without any request from the host.
package sign

import (
	"github.com/taurusgroup/mpc-vault/internal/params"
	"github.com/taurusgroup/mpc-vault/internal/round"
	"github.com/taurusgroup/mpc-vault/internal/types"
	"github.com/taurusgroup/mpc-vault/pkg/ecdsa"
	"github.com/taurusgroup/mpc-vault/pkg/math/curve"
	"github.com/taurusgroup/mpc-vault/pkg/party"
	"github.com/taurusgroup/mpc-vault/protocols/dkg"
	"github.com/taurusgroup/mpc-vault/protocols/group"
	"github.com/taurusgroup/mpc-vault/protocols/sign/mta"
)

// These assert that our rounds implement the round.Round interface.
var (
	_ round.Round = (*round1)(nil)
	_ round.Round = (*round2)(nil)
	_ round.Round = (*round3)(nil)
	_ round.Round = (*shareRound)(nil)
	_ round.Round = (*qiRound)(nil)
	_ round.Round = (*groupKeyRound)(nil)
	_ round.Round = (*decryptRound)(nil)
	_ round.Round = (*startRound)(nil)
	_ round.Round = (*mtaInitiateRound)(nil)
	_ round.Round = (*mtaPkRound)(nil)
	_ round.Round = (*mtaSigRound)(nil)
)

// Session holds everything a signing session knows, secret or not.
type Session struct {
	*round.Helper

	message []byte
	groupID group.GroupID
	info    *group.GroupInfo
	keyInfo *dkg.GroupKeyInfo
	self    party.Index
	indices party.IndexSlice

	secrets   [params.Polynomials]curve.Scalar
	publics   [params.Polynomials]*dkg.SignedPublicKey
	groupKeys [params.Polynomials]ecdsa.PublicKey

	// x is our share of the persistent group key.
	x curve.Scalar

	mta       *mta.Session
	receiver  *mta.Receiver
	receivers []Commitment
}

// Wipe implements round.Session.
func (s *Session) Wipe() {
	for i, secret := range s.secrets {
		if secret != nil {
			secret.Zero()
			s.secrets[i] = nil
		}
	}
	if s.x != nil {
		s.x.Zero()
		s.x = nil
	}
	if s.mta != nil {
		s.mta.Wipe()
	}
	if s.receiver != nil {
		s.receiver.Wipe()
	}
	s.Helper.Wipe()
}

func (s *Session) params(p types.Polynomial) *dkg.Params {
	return &dkg.Params{
		Group:      s.Group(),
		Info:       s.info,
		Indices:    s.indices,
		Identity:   s.Identity(),
		Polynomial: p,
	}
}

// Start returns the session and first round of the signing flow.
func Start(helper *round.Helper) (*Session, round.Round) {
	s := &Session{Helper: helper}
	return s, &round1{Session: s}
}

// Commitment is the signed commitment to the base keys sent to one counterpart.
type Commitment struct {
	_           struct{} `cbor:",toarray"`
	Counterpart party.Index
	Signature   ecdsa.Signature
}

// Result is the output of the flow.
type Result struct {
	GroupID group.GroupID
	// Indices are the signers, sorted.
	Indices       party.IndexSlice
	Self          party.Index
	Rank          int
	SenderTimes   int
	ReceiverTimes int
	// GroupKeys are the group keys of the sharings D, E, A, K, P. Those of D and E are zero.
	GroupKeys   [params.Polynomials]ecdsa.PublicKey
	Commitments []Commitment
}

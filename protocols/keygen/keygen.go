// Package keygen runs the sharing of the persistent group key among all members of a group.
//
//	PostGroupInfo → GetShareData → GetQi → GetGroupKey
//
// The resulting GroupKeyInfo holds the device's share encrypted under its long-term key, and is
// posted back by the host at the start of every signing session.
package keygen

import (
	"github.com/taurusgroup/mpc-vault/internal/round"
	"github.com/taurusgroup/mpc-vault/internal/types"
	"github.com/taurusgroup/mpc-vault/pkg/ecdsa"
	"github.com/taurusgroup/mpc-vault/pkg/math/curve"
	"github.com/taurusgroup/mpc-vault/protocols/dkg"
	"github.com/taurusgroup/mpc-vault/protocols/group"
)

// These assert that our rounds implement the round.Round interface.
var (
	_ round.Round = (*round1)(nil)
	_ round.Round = (*round2)(nil)
	_ round.Round = (*round3)(nil)
	_ round.Round = (*round4)(nil)
)

// Polynomial is the sharing run by this flow.
const Polynomial = types.PolynomialX

// PostGroupInfoRequest carries the group as returned by the device at the end of group setup.
type PostGroupInfoRequest struct {
	_                  struct{} `cbor:",toarray"`
	GroupInfo          group.GroupInfo
	GroupInfoSignature ecdsa.Signature
}

type PostGroupInfoResponse struct {
	_        struct{} `cbor:",toarray"`
	Accepted bool
}

// Result is the output of the flow.
type Result struct {
	GroupID      group.GroupID
	GroupKeyInfo dkg.GroupKeyInfo
	Signature    ecdsa.Signature
}

// session holds the state of one key generation.
type session struct {
	*round.Helper
	params *dkg.Params
	secret curve.Scalar
}

// Wipe implements round.Session.
func (s *session) Wipe() {
	if s.secret != nil {
		s.secret.Zero()
	}
	s.Helper.Wipe()
}

// Start returns the session and first round of the key generation flow.
func Start(helper *round.Helper) (round.Session, round.Round) {
	s := &session{Helper: helper}
	return s, &round1{session: s}
}

package keygen

import (
	"fmt"

	"github.com/taurusgroup/mpc-vault/internal/round"
	"github.com/taurusgroup/mpc-vault/pkg/protocol"
	"github.com/taurusgroup/mpc-vault/protocols/dkg"
)

type round3 struct {
	*round2
}

// Finalize implements round.Round.
//
// The shares dealt to us are summed into our share of the group key.
func (r *round3) Finalize(req interface{}) (round.Round, interface{}, error) {
	body, ok := req.(*dkg.GetQiRequest)
	if !ok {
		return nil, nil, protocol.Integrity(round.ErrInvalidContent)
	}
	if body.Polynomial != Polynomial {
		return nil, nil, protocol.Integrity(fmt.Errorf("%w: %s", dkg.ErrWrongPolynomial, body.Polynomial))
	}

	pub, err := dkg.GetIndividualPublicKey(r.params, body.List, r.secret)
	if err != nil {
		return nil, nil, err
	}

	return &round4{round3: r, own: pub}, &dkg.GetQiResponse{PublicKey: *pub}, nil
}

// Step implements round.Round.
func (round3) Step() protocol.Step { return protocol.StepGetQi }

// RequestContent implements round.Round.
func (round3) RequestContent() interface{} { return &dkg.GetQiRequest{} }

// Number implements round.Round.
func (round3) Number() round.Number { return 3 }

type round4 struct {
	*round3
	own *dkg.SignedPublicKey
}

// Finalize implements round.Round.
func (r *round4) Finalize(req interface{}) (round.Round, interface{}, error) {
	body, ok := req.(*dkg.GetGroupKeyRequest)
	if !ok {
		return nil, nil, protocol.Integrity(round.ErrInvalidContent)
	}
	if body.Polynomial != Polynomial {
		return nil, nil, protocol.Integrity(fmt.Errorf("%w: %s", dkg.ErrWrongPolynomial, body.Polynomial))
	}

	info, sig, err := dkg.GetGroupPublicKey(r.params, body.List, r.own, r.secret)
	if err != nil {
		return nil, nil, err
	}
	r.Display("Group public key", info.GroupPubKey.String())
	r.Logger().Info().Stringer("key", info.GroupPubKey).Msg("group key generated")

	response := &dkg.GetGroupKeyResponse{GroupKeyInfo: *info, Signature: sig}
	return r.ResultRound(&Result{GroupID: r.id, GroupKeyInfo: *info, Signature: sig}), response, nil
}

// Step implements round.Round.
func (round4) Step() protocol.Step { return protocol.StepGetGroupKey }

// RequestContent implements round.Round.
func (round4) RequestContent() interface{} { return &dkg.GetGroupKeyRequest{} }

// Number implements round.Round.
func (round4) Number() round.Number { return 4 }

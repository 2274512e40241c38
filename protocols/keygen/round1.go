package keygen

import (
	"fmt"

	"github.com/taurusgroup/mpc-vault/internal/round"
	"github.com/taurusgroup/mpc-vault/pkg/protocol"
	"github.com/taurusgroup/mpc-vault/protocols/dkg"
	"github.com/taurusgroup/mpc-vault/protocols/group"
)

type round1 struct {
	*session
}

// Finalize implements round.Round.
//
// The group is accepted only if we signed it ourselves during group setup.
func (r *round1) Finalize(req interface{}) (round.Round, interface{}, error) {
	body, ok := req.(*PostGroupInfoRequest)
	if !ok {
		return nil, nil, protocol.Integrity(round.ErrInvalidContent)
	}
	info := body.GroupInfo
	self, id, err := info.VerifySigned(body.GroupInfoSignature, r.PublicKey())
	if err != nil {
		return nil, nil, protocol.Integrity(err)
	}

	r.Display("Group ID", id.String())
	if err = r.Confirm("Generate group key", fmt.Sprintf("Threshold %d of %d participants", info.Threshold, info.TotalParticipants)); err != nil {
		return nil, nil, err
	}

	r.params = &dkg.Params{
		Group:      r.Group(),
		Info:       &info,
		Indices:    info.Indices(),
		Identity:   r.Identity(),
		Polynomial: Polynomial,
	}
	r.Logger().Info().Stringer("group", id).Uint16("index", uint16(self)).Msg("group accepted")

	return &round2{round1: r, id: id}, &PostGroupInfoResponse{Accepted: true}, nil
}

// Step implements round.Round.
func (round1) Step() protocol.Step { return protocol.StepPostGroupInfo }

// RequestContent implements round.Round.
func (round1) RequestContent() interface{} { return &PostGroupInfoRequest{} }

// Number implements round.Round.
func (round1) Number() round.Number { return 1 }

type round2 struct {
	*round1
	id group.GroupID
}

// Finalize implements round.Round.
func (r *round2) Finalize(req interface{}) (round.Round, interface{}, error) {
	body, ok := req.(*dkg.GetShareDataRequest)
	if !ok {
		return nil, nil, protocol.Integrity(round.ErrInvalidContent)
	}
	if body.Polynomial != Polynomial {
		return nil, nil, protocol.Integrity(fmt.Errorf("%w: %s", dkg.ErrWrongPolynomial, body.Polynomial))
	}

	data, secret, err := dkg.GenerateSignedShareData(r.Rand(), r.params, false)
	if err != nil {
		return nil, nil, err
	}
	r.secret = secret

	return &round3{round2: r}, &dkg.GetShareDataResponse{ShareData: *data}, nil
}

// Step implements round.Round.
func (round2) Step() protocol.Step { return protocol.StepGetShareData }

// RequestContent implements round.Round.
func (round2) RequestContent() interface{} { return &dkg.GetShareDataRequest{} }

// Number implements round.Round.
func (round2) Number() round.Number { return 2 }

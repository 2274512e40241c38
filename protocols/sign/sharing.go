package sign

import (
	"fmt"

	"github.com/taurusgroup/mpc-vault/internal/params"
	"github.com/taurusgroup/mpc-vault/internal/round"
	"github.com/taurusgroup/mpc-vault/internal/types"
	"github.com/taurusgroup/mpc-vault/pkg/protocol"
	"github.com/taurusgroup/mpc-vault/protocols/dkg"
)

// checkPolynomial returns an error if got is not the sharing expected at this point of the session.
func checkPolynomial(expected, got types.Polynomial) error {
	if expected != got {
		return protocol.Integrity(fmt.Errorf("%w: got %s, expected %s", dkg.ErrWrongPolynomial, got, expected))
	}
	return nil
}

// shareRound deals the sharing of one polynomial.
type shareRound struct {
	*Session
	polynomial types.Polynomial
}

// Finalize implements round.Round.
func (r *shareRound) Finalize(req interface{}) (round.Round, interface{}, error) {
	body, ok := req.(*dkg.GetShareDataRequest)
	if !ok {
		return nil, nil, protocol.Integrity(round.ErrInvalidContent)
	}
	if err := checkPolynomial(r.polynomial, body.Polynomial); err != nil {
		return nil, nil, err
	}

	data, secret, err := dkg.GenerateSignedShareData(r.Rand(), r.params(r.polynomial), r.polynomial.IsZeroSharing())
	if err != nil {
		return nil, nil, err
	}
	r.secrets[r.polynomial] = secret

	var next round.Round
	if int(r.polynomial)+1 < params.Polynomials {
		next = &shareRound{Session: r.Session, polynomial: r.polynomial + 1}
	} else {
		next = &qiRound{Session: r.Session, polynomial: 0}
	}
	return next, &dkg.GetShareDataResponse{ShareData: *data}, nil
}

// Step implements round.Round.
func (shareRound) Step() protocol.Step { return protocol.StepGetShareData }

// RequestContent implements round.Round.
func (shareRound) RequestContent() interface{} { return &dkg.GetShareDataRequest{} }

// Number implements round.Round.
func (r *shareRound) Number() round.Number { return 4 + round.Number(r.polynomial) }

// qiRound collects the shares dealt to us for one polynomial.
type qiRound struct {
	*Session
	polynomial types.Polynomial
}

// Finalize implements round.Round.
func (r *qiRound) Finalize(req interface{}) (round.Round, interface{}, error) {
	body, ok := req.(*dkg.GetQiRequest)
	if !ok {
		return nil, nil, protocol.Integrity(round.ErrInvalidContent)
	}
	if err := checkPolynomial(r.polynomial, body.Polynomial); err != nil {
		return nil, nil, err
	}

	pub, err := dkg.GetIndividualPublicKey(r.params(r.polynomial), body.List, r.secrets[r.polynomial])
	if err != nil {
		return nil, nil, err
	}
	r.publics[r.polynomial] = pub

	var next round.Round
	if int(r.polynomial)+1 < params.Polynomials {
		next = &qiRound{Session: r.Session, polynomial: r.polynomial + 1}
	} else {
		next = &groupKeyRound{Session: r.Session, polynomial: 0}
	}
	return next, &dkg.GetQiResponse{PublicKey: *pub}, nil
}

// Step implements round.Round.
func (qiRound) Step() protocol.Step { return protocol.StepGetQi }

// RequestContent implements round.Round.
func (qiRound) RequestContent() interface{} { return &dkg.GetQiRequest{} }

// Number implements round.Round.
func (r *qiRound) Number() round.Number { return 9 + round.Number(r.polynomial) }

// groupKeyRound cross checks the individual public keys of one polynomial.
type groupKeyRound struct {
	*Session
	polynomial types.Polynomial
}

// Finalize implements round.Round.
func (r *groupKeyRound) Finalize(req interface{}) (round.Round, interface{}, error) {
	body, ok := req.(*dkg.GetGroupKeyRequest)
	if !ok {
		return nil, nil, protocol.Integrity(round.ErrInvalidContent)
	}
	if err := checkPolynomial(r.polynomial, body.Polynomial); err != nil {
		return nil, nil, err
	}

	info, sig, err := dkg.GetGroupPublicKey(r.params(r.polynomial), body.List, r.publics[r.polynomial], r.secrets[r.polynomial])
	if err != nil {
		return nil, nil, err
	}
	r.groupKeys[r.polynomial] = info.GroupPubKey
	r.Logger().Debug().Stringer("polynomial", r.polynomial).Msg("sharing complete")

	var next round.Round
	if int(r.polynomial)+1 < params.Polynomials {
		next = &groupKeyRound{Session: r.Session, polynomial: r.polynomial + 1}
	} else {
		next = &decryptRound{Session: r.Session}
	}
	return next, &dkg.GetGroupKeyResponse{GroupKeyInfo: *info, Signature: sig}, nil
}

// Step implements round.Round.
func (groupKeyRound) Step() protocol.Step { return protocol.StepGetGroupKey }

// RequestContent implements round.Round.
func (groupKeyRound) RequestContent() interface{} { return &dkg.GetGroupKeyRequest{} }

// Number implements round.Round.
func (r *groupKeyRound) Number() round.Number { return 14 + round.Number(r.polynomial) }

package round

import (
	"crypto/rand"
	"errors"
	"io"

	"github.com/rs/zerolog"
	"github.com/taurusgroup/mpc-vault/pkg/ecdsa"
	"github.com/taurusgroup/mpc-vault/pkg/math/curve"
	"github.com/taurusgroup/mpc-vault/pkg/protocol"
	"github.com/taurusgroup/mpc-vault/pkg/vault"
)

// Info holds what every flow needs to know about the device running it.
type Info struct {
	Flow protocol.Flow
	// Group is the curve all keys and shares live in.
	Group curve.Curve
	// Identity is the device's long-term MPC key, reconstructed at Initiate.
	Identity *ecdsa.PrivateKey
	// Confirmer displays prompts to the device's user.
	Confirmer vault.Confirmer
	// Rand defaults to crypto/rand.
	Rand io.Reader
	Log  zerolog.Logger
}

// Session represents the current execution of a flow.
type Session interface {
	Flow() protocol.Flow
	Logger() *zerolog.Logger
	// Wipe erases all secret material held by the flow. It is called on every exit path.
	Wipe()
}

// Helper implements Session, and is embedded in the session struct of each flow.
type Helper struct {
	info   Info
	public ecdsa.PublicKey
	log    zerolog.Logger
}

// NewHelper checks info and returns a Helper for one execution of info.Flow.
func NewHelper(info Info) (*Helper, error) {
	if info.Group == nil {
		return nil, errors.New("session: no group")
	}
	if info.Identity == nil {
		return nil, errors.New("session: no identity")
	}
	if info.Confirmer == nil {
		return nil, errors.New("session: no confirmer")
	}
	if info.Rand == nil {
		info.Rand = rand.Reader
	}
	public := info.Identity.Public()
	return &Helper{
		info:   info,
		public: public,
		log: info.Log.With().
			Str("flow", info.Flow.String()).
			Str("device", public.String()[:16]).
			Logger(),
	}, nil
}

// Flow implements Session.
func (h *Helper) Flow() protocol.Flow { return h.info.Flow }

// Logger implements Session.
func (h *Helper) Logger() *zerolog.Logger { return &h.log }

// Wipe implements Session by erasing the identity key.
func (h *Helper) Wipe() {
	h.info.Identity.Zero()
}

// Group returns the group used for this flow.
func (h *Helper) Group() curve.Curve { return h.info.Group }

// Identity returns the long-term private key of this device.
func (h *Helper) Identity() *ecdsa.PrivateKey { return h.info.Identity }

// PublicKey returns the long-term public key of this device.
func (h *Helper) PublicKey() ecdsa.PublicKey { return h.public }

// Rand returns the source of randomness of this flow.
func (h *Helper) Rand() io.Reader { return h.info.Rand }

// Confirm asks the user to approve body, and returns a rejection error if they decline.
func (h *Helper) Confirm(title, body string) error {
	if !h.info.Confirmer.Confirm(title, body) {
		h.log.Warn().Str("prompt", title).Msg("user rejected")
		return protocol.NewError(protocol.KindRejected, protocol.ErrRejected)
	}
	return nil
}

// Display shows body without waiting for approval.
func (h *Helper) Display(title, body string) {
	h.info.Confirmer.Display(title, body)
}

// ResultRound returns a round that contains only the result of the flow.
func (h *Helper) ResultRound(result interface{}) Round {
	return &Output{Result: result}
}

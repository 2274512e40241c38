// Package device dispatches the queries relayed by the host to the flows of one device.
//
// A device runs at most one flow at a time. Every flow starts with an Initiate query naming the
// wallet whose long-term MPC key takes part, to which the device answers with the public key.
package device

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/taurusgroup/mpc-vault/internal/round"
	"github.com/taurusgroup/mpc-vault/pkg/ecdsa"
	"github.com/taurusgroup/mpc-vault/pkg/protocol"
	"github.com/taurusgroup/mpc-vault/pkg/vault"
	"github.com/taurusgroup/mpc-vault/pkg/wire"
	"github.com/taurusgroup/mpc-vault/protocols/childkey"
	"github.com/taurusgroup/mpc-vault/protocols/group"
	"github.com/taurusgroup/mpc-vault/protocols/keygen"
	"github.com/taurusgroup/mpc-vault/protocols/sign"
)

var ErrBusy = errors.New("device: another flow is running")

// InitiateRequest opens a flow.
type InitiateRequest struct {
	_        struct{} `cbor:",toarray"`
	WalletID vault.WalletID
}

type InitiateResponse struct {
	_      struct{} `cbor:",toarray"`
	PubKey ecdsa.PublicKey
}

// Device runs flows on behalf of one hardware wallet.
type Device struct {
	cfg Config
	log zerolog.Logger
	// busy holds a token for the whole duration of a flow.
	busy chan struct{}
}

// New returns a Device, once cfg is valid.
func New(cfg Config) (*Device, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Device{
		cfg:  cfg,
		log:  cfg.Log.With().Hex("device_id", cfg.DeviceID[:4]).Logger(),
		busy: make(chan struct{}, 1),
	}, nil
}

// Serve handles queries from t until ctx is done or t fails.
//
// A failed flow does not stop Serve: the host has been notified, and may start over.
func (d *Device) Serve(ctx context.Context, t protocol.Transport) error {
	for {
		q, err := t.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("device: transport: %w", err)
		}
		if _, err = d.Handle(ctx, t, q); err != nil {
			d.log.Warn().Err(err).Msg("flow failed")
		}
	}
}

// Handle starts the flow opened by q, and runs it to completion over t.
// It returns the output of the flow.
func (d *Device) Handle(ctx context.Context, t protocol.Transport, q *protocol.Query) (interface{}, error) {
	if q.Step != protocol.StepInitiate || !known(q.Flow) {
		protocol.Notify(ctx, t, q.Flow, q.Step, protocol.KindSequence)
		return nil, &protocol.Error{
			Kind: protocol.KindSequence,
			Flow: q.Flow,
			Step: q.Step,
			Err:  fmt.Errorf("no flow starts with %s/%s", q.Flow, q.Step),
		}
	}

	select {
	case d.busy <- struct{}{}:
		defer func() { <-d.busy }()
	default:
		protocol.Notify(ctx, t, q.Flow, q.Step, protocol.KindSequence)
		return nil, &protocol.Error{Kind: protocol.KindSequence, Flow: q.Flow, Step: q.Step, Err: ErrBusy}
	}

	if d.cfg.FlowTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.FlowTimeout)
		defer cancel()
	}

	var req InitiateRequest
	if err := wire.Unmarshal(q.Data, &req); err != nil {
		protocol.Notify(ctx, t, q.Flow, q.Step, protocol.KindDecoding)
		return nil, &protocol.Error{Kind: protocol.KindDecoding, Flow: q.Flow, Step: q.Step, Err: err}
	}

	identity, err := vault.LoadIdentity(ctx, d.cfg.Seeds, d.cfg.Store, req.WalletID)
	if err != nil {
		protocol.Notify(ctx, t, q.Flow, q.Step, protocol.KindIntegrity)
		return nil, &protocol.Error{Kind: protocol.KindIntegrity, Flow: q.Flow, Step: q.Step, Err: err}
	}

	helper, err := round.NewHelper(round.Info{
		Flow:      q.Flow,
		Group:     d.cfg.Group,
		Identity:  identity,
		Confirmer: d.cfg.Confirmer,
		Rand:      d.cfg.Rand,
		Log:       d.log.With().Str("wallet", req.WalletID.String()[:16]).Logger(),
	})
	if err != nil {
		identity.Zero()
		protocol.Notify(ctx, t, q.Flow, q.Step, protocol.KindIntegrity)
		return nil, &protocol.Error{Kind: protocol.KindIntegrity, Flow: q.Flow, Step: q.Step, Err: err}
	}

	data, err := wire.Marshal(&InitiateResponse{PubKey: identity.Public()})
	if err == nil {
		err = t.Send(ctx, &protocol.Result{Flow: q.Flow, Step: protocol.StepInitiate, Data: data})
	}
	if err != nil {
		helper.Wipe()
		return nil, &protocol.Error{Kind: protocol.KindSequence, Flow: q.Flow, Step: q.Step, Err: err}
	}

	session, first := d.start(q.Flow, helper, req.WalletID)
	return round.Run(ctx, t, session, first)
}

func (d *Device) start(flow protocol.Flow, helper *round.Helper, walletID vault.WalletID) (round.Session, round.Round) {
	switch flow {
	case protocol.FlowGroupSetup:
		return group.Start(helper, group.Config{DeviceID: d.cfg.DeviceID, WalletID: walletID})
	case protocol.FlowKeyGen:
		return keygen.Start(helper)
	case protocol.FlowSign:
		return sign.Start(helper)
	default:
		return childkey.Start(helper)
	}
}

func known(flow protocol.Flow) bool {
	switch flow {
	case protocol.FlowGroupSetup, protocol.FlowKeyGen, protocol.FlowSign, protocol.FlowChildKey:
		return true
	}
	return false
}

// Package test simulates the host relaying queries between several devices.
package test

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/taurusgroup/mpc-vault/pkg/device"
	"github.com/taurusgroup/mpc-vault/pkg/ecdsa"
	"github.com/taurusgroup/mpc-vault/pkg/math/curve"
	"github.com/taurusgroup/mpc-vault/pkg/party"
	"github.com/taurusgroup/mpc-vault/pkg/protocol"
	"github.com/taurusgroup/mpc-vault/pkg/vault"
	"github.com/taurusgroup/mpc-vault/pkg/wire"
	"golang.org/x/sync/errgroup"
)

// DeviceError is a CommonError reported by a device in place of a response.
type DeviceError struct {
	Member int
	Flow   protocol.Flow
	Step   protocol.Step
	Common protocol.CommonError
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("member %d: %s/%s: device error %s", e.Member, e.Flow, e.Step, &e.Common)
}

// Member is one simulated device and its link to the host.
type Member struct {
	Position  int
	Device    *device.Device
	Link      *Link
	Confirmer *vault.AutoConfirm
	Store     *vault.Store
	WalletID  vault.WalletID
	// PubKey is set by the first Initiate.
	PubKey ecdsa.PublicKey
	// Index is the position of the member in the group, set by Setup.
	Index party.Index
}

// Do relays one query to m, and decodes the response into resp.
func (m *Member) Do(ctx context.Context, flow protocol.Flow, step protocol.Step, req, resp interface{}) error {
	data, err := wire.Marshal(req)
	if err != nil {
		return err
	}
	if err = m.Link.Query(ctx, &protocol.Query{Flow: flow, Step: step, Data: data}); err != nil {
		return err
	}
	r, err := m.Link.Result(ctx)
	if err != nil {
		return err
	}
	if r.Error != nil {
		return &DeviceError{Member: m.Position, Flow: r.Flow, Step: r.Step, Common: *r.Error}
	}
	if r.Flow != flow || r.Step != step {
		return fmt.Errorf("member %d: expected result %s/%s, got %s/%s", m.Position, flow, step, r.Flow, r.Step)
	}
	if resp == nil {
		return nil
	}
	return wire.Unmarshal(r.Data, resp)
}

// Initiate opens flow on m.
func (m *Member) Initiate(ctx context.Context, flow protocol.Flow) error {
	var resp device.InitiateResponse
	if err := m.Do(ctx, flow, protocol.StepInitiate, &device.InitiateRequest{WalletID: m.WalletID}, &resp); err != nil {
		return err
	}
	if m.PubKey != (ecdsa.PublicKey{}) && m.PubKey != resp.PubKey {
		return fmt.Errorf("member %d: long-term key changed", m.Position)
	}
	m.PubKey = resp.PubKey
	return nil
}

// Options configure a Host.
type Options struct {
	// DataDir holds one badger store per device. Empty keeps everything in memory.
	DataDir string
	Log     zerolog.Logger
	// Reject is passed to the confirmer of every device.
	Reject func(member int, title string) bool
}

// Host runs N devices, each serving its own Link.
type Host struct {
	Group   curve.Curve
	Members []*Member
	Log     zerolog.Logger

	cancel context.CancelFunc
	eg     *errgroup.Group
}

// NewHost starts n devices, each holding a fresh wallet.
func NewHost(n int, opts Options) (*Host, error) {
	ctx, cancel := context.WithCancel(context.Background())
	eg, ctx := errgroup.WithContext(ctx)
	h := &Host{
		Group:  curve.Secp256k1{},
		Log:    opts.Log,
		cancel: cancel,
		eg:     eg,
	}

	for i := 0; i < n; i++ {
		m, err := h.newMember(i, opts)
		if err != nil {
			_ = h.Close()
			return nil, err
		}
		h.Members = append(h.Members, m)
		eg.Go(func() error {
			err := m.Device.Serve(ctx, m.Link)
			if errors.Is(err, context.Canceled) || errors.Is(err, ErrClosed) {
				return nil
			}
			return err
		})
	}
	return h, nil
}

func (h *Host) newMember(i int, opts Options) (*Member, error) {
	var secret [32]byte
	var walletID vault.WalletID
	var deviceID [32]byte
	for _, b := range [][]byte{secret[:], walletID[:], deviceID[:]} {
		if _, err := rand.Read(b); err != nil {
			return nil, err
		}
	}

	dir := ""
	if opts.DataDir != "" {
		dir = filepath.Join(opts.DataDir, "device-"+strconv.Itoa(i))
	}
	store, err := vault.OpenStore(dir)
	if err != nil {
		return nil, err
	}

	confirmer := &vault.AutoConfirm{Log: opts.Log.With().Int("member", i).Logger()}
	if opts.Reject != nil {
		confirmer.Reject = func(title string) bool { return opts.Reject(i, title) }
	}

	d, err := device.New(device.Config{
		DeviceID:  deviceID,
		Seeds:     vault.NewDeviceVault(secret[:], walletID),
		Store:     store,
		Confirmer: confirmer,
		Log:       opts.Log.With().Int("member", i).Logger(),
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return &Member{
		Position:  i,
		Device:    d,
		Link:      NewLink(),
		Confirmer: confirmer,
		Store:     store,
		WalletID:  walletID,
	}, nil
}

// Close stops all devices and closes their stores.
func (h *Host) Close() error {
	h.cancel()
	for _, m := range h.Members {
		m.Link.Close()
	}
	err := h.eg.Wait()
	for _, m := range h.Members {
		if cerr := m.Store.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// each runs f concurrently for every member of ms, stopping at the first error.
func each(ctx context.Context, ms []*Member, f func(ctx context.Context, i int, m *Member) error) error {
	eg, ctx := errgroup.WithContext(ctx)
	for i, m := range ms {
		i, m := i, m
		eg.Go(func() error { return f(ctx, i, m) })
	}
	return eg.Wait()
}

// ByIndex returns the members with the given group indices, in that order.
func (h *Host) ByIndex(indices []party.Index) ([]*Member, error) {
	out := make([]*Member, 0, len(indices))
	for _, idx := range indices {
		var found *Member
		for _, m := range h.Members {
			if m.Index == idx {
				found = m
			}
		}
		if found == nil {
			return nil, fmt.Errorf("test: no member at index %d", idx)
		}
		out = append(out, found)
	}
	return out, nil
}

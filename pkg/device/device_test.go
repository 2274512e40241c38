package device

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/mpc-vault/pkg/protocol"
	"github.com/taurusgroup/mpc-vault/pkg/vault"
	"github.com/taurusgroup/mpc-vault/pkg/wire"
	"github.com/taurusgroup/mpc-vault/protocols/group"
)

type scripted struct {
	queries []*protocol.Query
	sent    []*protocol.Result
}

func (s *scripted) Next(context.Context) (*protocol.Query, error) {
	if len(s.queries) == 0 {
		return nil, io.EOF
	}
	q := s.queries[0]
	s.queries = s.queries[1:]
	return q, nil
}

func (s *scripted) Send(_ context.Context, r *protocol.Result) error {
	s.sent = append(s.sent, r)
	return nil
}

func newDevice(t *testing.T) (*Device, vault.WalletID) {
	var secret [32]byte
	var walletID vault.WalletID
	_, err := rand.Read(secret[:])
	require.NoError(t, err)
	_, err = rand.Read(walletID[:])
	require.NoError(t, err)

	d, err := New(Config{
		DeviceID:  [32]byte{1},
		Seeds:     vault.NewDeviceVault(secret[:], walletID),
		Confirmer: &vault.AutoConfirm{Log: zerolog.Nop()},
		Log:       zerolog.Nop(),
	})
	require.NoError(t, err)
	return d, walletID
}

func initiate(t *testing.T, flow protocol.Flow, walletID vault.WalletID) *protocol.Query {
	data, err := wire.Marshal(&InitiateRequest{WalletID: walletID})
	require.NoError(t, err)
	return &protocol.Query{Flow: flow, Step: protocol.StepInitiate, Data: data}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			DeviceID:  [32]byte{1},
			Seeds:     vault.NewDeviceVault(make([]byte, 32)),
			Confirmer: &vault.AutoConfirm{},
		}
	}

	c := valid()
	require.NoError(t, c.Validate())
	assert.NotNil(t, c.Group)
	assert.NotNil(t, c.Rand)

	for name, mutate := range map[string]func(*Config){
		"device ID": func(c *Config) { c.DeviceID = [32]byte{} },
		"seeds":     func(c *Config) { c.Seeds = nil },
		"confirmer": func(c *Config) { c.Confirmer = nil },
		"timeout":   func(c *Config) { c.FlowTimeout = -1 },
	} {
		c := valid()
		mutate(&c)
		assert.True(t, errors.Is(c.Validate(), ErrConfig), name)
	}
}

func TestHandle_NotInitiate(t *testing.T) {
	d, _ := newDevice(t)
	tr := &scripted{}

	_, err := d.Handle(context.Background(), tr, &protocol.Query{Flow: protocol.FlowSign, Step: protocol.StepGetQi})
	assert.Equal(t, protocol.KindSequence, protocol.KindOf(err))
	require.Len(t, tr.sent, 1)
	assert.Equal(t, protocol.CodeInvalidQuery, tr.sent[0].Error.Code)
}

func TestHandle_UnknownFlow(t *testing.T) {
	d, walletID := newDevice(t)
	tr := &scripted{}

	_, err := d.Handle(context.Background(), tr, initiate(t, protocol.Flow(42), walletID))
	assert.Equal(t, protocol.KindSequence, protocol.KindOf(err))
	require.Len(t, tr.sent, 1)
	assert.NotNil(t, tr.sent[0].Error)
}

func TestHandle_UnknownWallet(t *testing.T) {
	d, _ := newDevice(t)
	tr := &scripted{}

	_, err := d.Handle(context.Background(), tr, initiate(t, protocol.FlowChildKey, vault.WalletID{9}))
	assert.Equal(t, protocol.KindIntegrity, protocol.KindOf(err))
	require.Len(t, tr.sent, 1)
	assert.Equal(t, protocol.CodeInvalidData, tr.sent[0].Error.Code)
}

func TestHandle_Busy(t *testing.T) {
	d, walletID := newDevice(t)
	tr := &scripted{}

	d.busy <- struct{}{}
	_, err := d.Handle(context.Background(), tr, initiate(t, protocol.FlowChildKey, walletID))
	assert.True(t, errors.Is(err, ErrBusy))
	<-d.busy
}

func TestHandle_GroupSetupFirstStep(t *testing.T) {
	d, walletID := newDevice(t)
	data, err := wire.Marshal(&group.GetEntityInfoRequest{Timestamp: 1, Threshold: 2, TotalParticipants: 3})
	require.NoError(t, err)
	tr := &scripted{queries: []*protocol.Query{
		{Flow: protocol.FlowGroupSetup, Step: protocol.StepGetEntityInfo, Data: data},
	}}

	// the flow fails once the host stops relaying queries
	_, err = d.Handle(context.Background(), tr, initiate(t, protocol.FlowGroupSetup, walletID))
	require.Error(t, err)
	require.Len(t, tr.sent, 3)

	var init InitiateResponse
	require.NoError(t, wire.Unmarshal(tr.sent[0].Data, &init))
	assert.NotEqual(t, InitiateResponse{}.PubKey, init.PubKey)

	var info group.GetEntityInfoResponse
	require.NoError(t, wire.Unmarshal(tr.sent[1].Data, &info))
	assert.Equal(t, init.PubKey, info.EntityInfo.DeviceInfo.PubKey)
	assert.Equal(t, walletID, info.EntityInfo.DeviceInfo.WalletID)

	assert.NotNil(t, tr.sent[2].Error)

	// the token was released
	assert.Len(t, d.busy, 0)
}

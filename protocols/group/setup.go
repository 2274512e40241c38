package group

import (
	"github.com/taurusgroup/mpc-vault/internal/round"
	"github.com/taurusgroup/mpc-vault/pkg/vault"
)

// These assert that our rounds implement the round.Round interface.
var (
	_ round.Round = (*round1)(nil)
	_ round.Round = (*round2)(nil)
	_ round.Round = (*round3)(nil)
)

// Config holds the local identity fields that go into the EntityInfo.
type Config struct {
	DeviceID [32]byte
	WalletID vault.WalletID
}

// Start returns the session and first round of the group setup flow:
//
//	GetEntityInfo → VerifyParticipantInfoList → GetGroupID
func Start(helper *round.Helper, cfg Config) (round.Session, round.Round) {
	return helper, &round1{Helper: helper, cfg: cfg}
}

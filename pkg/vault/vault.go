// Package vault holds the device collaborators a ceremony relies on: the wallet seed, the
// persistent key store, and the user prompt.
package vault

import (
	"context"
	"encoding/hex"
	"errors"
)

// SeedSize is the size of a reconstructed wallet seed.
const SeedSize = 64

// WalletID identifies a wallet on the device.
type WalletID [32]byte

func (w WalletID) String() string {
	return hex.EncodeToString(w[:])
}

var (
	ErrUnknownWallet = errors.New("vault: unknown wallet")
	ErrSeed          = errors.New("vault: seed reconstruction failed")
)

// SeedVault reconstructs the 64 byte seed of a wallet.
type SeedVault interface {
	ReconstructSeed(ctx context.Context, walletID WalletID) ([]byte, error)
}

// KeyStore caches the MPC private key derived for a wallet.
type KeyStore interface {
	// CoinData returns the cached key, and false if none is stored.
	CoinData(walletID WalletID) ([32]byte, bool, error)
	SetCoinData(walletID WalletID, priv [32]byte) error
}

// Confirmer shows prompts on the device.
type Confirmer interface {
	// Confirm blocks until the user approves or rejects body.
	Confirm(title, body string) bool
	// Display shows body without waiting for an answer.
	Display(title, body string)
}

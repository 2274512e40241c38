package vault

import (
	"context"
	"crypto/sha512"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/hkdf"
)

// DeviceVault simulates the seed reconstruction of a hardware wallet: seeds are expanded from a
// device secret with HKDF-SHA512, salted with the wallet ID.
type DeviceVault struct {
	mu      sync.RWMutex
	secret  []byte
	wallets map[WalletID]bool
}

// NewDeviceVault returns a vault holding the given wallets.
func NewDeviceVault(secret []byte, wallets ...WalletID) *DeviceVault {
	v := &DeviceVault{
		secret:  append([]byte(nil), secret...),
		wallets: make(map[WalletID]bool, len(wallets)),
	}
	for _, w := range wallets {
		v.wallets[w] = true
	}
	return v
}

// AddWallet registers a wallet on the device.
func (v *DeviceVault) AddWallet(walletID WalletID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.wallets[walletID] = true
}

// ReconstructSeed implements SeedVault.
func (v *DeviceVault) ReconstructSeed(ctx context.Context, walletID WalletID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	if !v.wallets[walletID] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWallet, walletID)
	}

	seed := make([]byte, SeedSize)
	r := hkdf.New(sha512.New, v.secret, walletID[:], []byte("mpc-vault wallet seed"))
	if _, err := io.ReadFull(r, seed); err != nil {
		return nil, err
	}
	return seed, nil
}

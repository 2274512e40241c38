package vault

import (
	"context"
	"fmt"

	"github.com/taurusgroup/mpc-vault/internal/bip32"
	"github.com/taurusgroup/mpc-vault/pkg/ecdsa"
)

// IdentityPath is the derivation path of the long-term MPC key below the wallet seed.
var IdentityPath = bip32.MustPath("m/1000'/0'/0'/0/0")

// LoadIdentity returns the long-term MPC key of a wallet.
//
// A key cached in store is used when present; otherwise the seed is reconstructed, the key is
// derived at IdentityPath and cached.
func LoadIdentity(ctx context.Context, seeds SeedVault, store KeyStore, walletID WalletID) (*ecdsa.PrivateKey, error) {
	if store != nil {
		cached, ok, err := store.CoinData(walletID)
		if err != nil {
			return nil, fmt.Errorf("vault: key store: %w", err)
		}
		if ok {
			defer wipe(cached[:])
			return ecdsa.NewPrivateKey(cached)
		}
	}

	seed, err := seeds.ReconstructSeed(ctx, walletID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSeed, err)
	}
	defer wipe(seed)
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("%w: seed has %d bytes", ErrSeed, len(seed))
	}

	raw, err := bip32.DerivePrivateKey(seed, IdentityPath)
	if err != nil {
		return nil, fmt.Errorf("vault: derive identity: %w", err)
	}
	defer wipe(raw[:])

	priv, err := ecdsa.NewPrivateKey(raw)
	if err != nil {
		return nil, err
	}
	if store != nil {
		if err = store.SetCoinData(walletID, raw); err != nil {
			return nil, fmt.Errorf("vault: key store: %w", err)
		}
	}
	return priv, nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

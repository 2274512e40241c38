package device

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/taurusgroup/mpc-vault/pkg/math/curve"
	"github.com/taurusgroup/mpc-vault/pkg/vault"
)

var ErrConfig = errors.New("device: invalid config")

// Config holds the identity and collaborators of a device.
type Config struct {
	// DeviceID is the serial of the device, published in group setup.
	DeviceID [32]byte
	// Group defaults to secp256k1.
	Group curve.Curve

	Seeds vault.SeedVault
	// Store caches long-term keys. It may be nil, in which case the seed is reconstructed for every flow.
	Store     vault.KeyStore
	Confirmer vault.Confirmer

	// Rand defaults to crypto/rand.
	Rand io.Reader
	Log  zerolog.Logger

	// FlowTimeout bounds a whole flow, from Initiate to its last query. Zero disables it.
	FlowTimeout time.Duration
}

// Validate checks c and fills in defaults.
func (c *Config) Validate() error {
	if c.DeviceID == [32]byte{} {
		return fmt.Errorf("%w: missing device ID", ErrConfig)
	}
	if c.Seeds == nil {
		return fmt.Errorf("%w: missing seed vault", ErrConfig)
	}
	if c.Confirmer == nil {
		return fmt.Errorf("%w: missing confirmer", ErrConfig)
	}
	if c.FlowTimeout < 0 {
		return fmt.Errorf("%w: negative flow timeout", ErrConfig)
	}
	if c.Group == nil {
		c.Group = curve.Secp256k1{}
	}
	if c.Rand == nil {
		c.Rand = rand.Reader
	}
	return nil
}

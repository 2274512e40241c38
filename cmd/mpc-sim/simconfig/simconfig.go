// Package simconfig holds the settings of the ceremony simulator.
package simconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var ErrInvalid = errors.New("simconfig: invalid config")

// Config describes one simulated ceremony.
type Config struct {
	Devices   int    `json:"devices"`   // number of devices in the group
	Threshold int    `json:"threshold"` // signers needed
	Message   string `json:"message"`   // message approved in the signing session
	// Signers are the group indices taking part in signing. Empty selects 1, …, Threshold.
	Signers []int `json:"signers"`
	// DataDir holds one badger store per device. Empty keeps everything in memory.
	DataDir  string `json:"dataDir"`
	LogLevel string `json:"logLevel"`
	// ChildPath, if set, is derived on every device after key generation.
	ChildPath string `json:"childPath"`
}

func Default() Config {
	return Config{
		Devices:   3,
		Threshold: 2,
		Message:   "hello",
		LogLevel:  "info",
		ChildPath: "m/44'/0'/0'/0/0",
	}
}

// Load reads the config at path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("simconfig: read: %w", err)
	}
	if err = json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("simconfig: parse: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the group parameters and the signer selection.
func (c *Config) Validate() error {
	if c.Threshold < 2 || c.Threshold > c.Devices {
		return fmt.Errorf("%w: threshold %d of %d devices", ErrInvalid, c.Threshold, c.Devices)
	}
	if c.Devices > 255 {
		return fmt.Errorf("%w: %d devices", ErrInvalid, c.Devices)
	}
	if len(c.Signers) == 0 {
		return nil
	}
	if len(c.Signers) != c.Threshold {
		return fmt.Errorf("%w: %d signers for threshold %d", ErrInvalid, len(c.Signers), c.Threshold)
	}
	seen := make(map[int]bool, len(c.Signers))
	for _, s := range c.Signers {
		if s < 1 || s > c.Devices || seen[s] {
			return fmt.Errorf("%w: signer %d", ErrInvalid, s)
		}
		seen[s] = true
	}
	return nil
}

// SignerIndices returns Signers, or 1, …, Threshold when none are set.
func (c *Config) SignerIndices() []int {
	if len(c.Signers) > 0 {
		return c.Signers
	}
	out := make([]int, c.Threshold)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

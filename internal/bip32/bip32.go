package bip32

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

// Master returns the BIP32 master node of seed.
//
// The network parameters only affect serialization of extended keys, which this module never exports.
func Master(seed []byte) (*hdkeychain.ExtendedKey, error) {
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("bip32: master key: %w", err)
	}
	return master, nil
}

// Derive walks path from node, returning the final child node.
//
// Intermediate nodes are zeroed.
func Derive(node *hdkeychain.ExtendedKey, path Path) (*hdkeychain.ExtendedKey, error) {
	current := node
	for depth, index := range path.Indices {
		child, err := current.Derive(index)
		if current != node {
			current.Zero()
		}
		if err != nil {
			return nil, fmt.Errorf("bip32: derive %s at depth %d: %w", path, depth, err)
		}
		current = child
	}
	return current, nil
}

// DeriveKey returns the private key at path below the master node of seed.
// The caller must zero the returned key.
func DeriveKey(seed []byte, path Path) (*btcec.PrivateKey, error) {
	master, err := Master(seed)
	if err != nil {
		return nil, err
	}
	defer master.Zero()

	node, err := Derive(master, path)
	if err != nil {
		return nil, err
	}
	if node != master {
		defer node.Zero()
	}

	priv, err := node.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("bip32: %w", err)
	}
	return priv, nil
}

// DerivePrivateKey returns the 32 byte private key at path below the master node of seed.
func DerivePrivateKey(seed []byte, path Path) ([32]byte, error) {
	var out [32]byte
	priv, err := DeriveKey(seed, path)
	if err != nil {
		return out, err
	}
	defer priv.Zero()
	priv.Key.PutBytes(&out)
	return out, nil
}

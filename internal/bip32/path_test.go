package bip32

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathFrom(t *testing.T) {
	spec := "m/44'/0/0'/348"

	result, err := PathFrom(spec)
	require.NoError(t, err)

	desired := []uint32{
		newIndex(44, true),
		newIndex(0, false),
		newIndex(0, true),
		newIndex(348, false),
	}
	assert.Equal(t, desired, result.Indices)
	assert.Equal(t, spec, result.String())

	noPrefix, err := PathFrom("44'/0/0'/348")
	require.NoError(t, err)
	assert.Equal(t, result.Indices, noPrefix.Indices)

	empty, err := PathFrom("m")
	require.NoError(t, err)
	assert.Empty(t, empty.Indices)

	for _, bad := range []string{"m/x", "m/1//2", "m/2147483648"} {
		_, err = PathFrom(bad)
		assert.ErrorIs(t, err, ErrInvalidPath, bad)
	}
}

// Test vector 1 of https://github.com/bitcoin/bips/blob/master/bip-0032.mediawiki#Test_Vectors.
func TestDerivePrivateKey(t *testing.T) {
	seed, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")

	master, err := DerivePrivateKey(seed, MustPath("m"))
	require.NoError(t, err)
	assert.Equal(t, "e8f32e723decf4051aefac8e2c93c9c5b214313817cdb01a1494b917c8436b35", hex.EncodeToString(master[:]))

	child, err := DerivePrivateKey(seed, MustPath("m/0'/1/2'"))
	require.NoError(t, err)
	assert.Equal(t, "cbce0d719ecf7431d88e6a89fa1483e02e35092af60c042b1df2ff59fa424dca", hex.EncodeToString(child[:]))
}

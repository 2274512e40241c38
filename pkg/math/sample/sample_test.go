package sample

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/taurusgroup/mpc-vault/pkg/math/curve"
)

var group = curve.Secp256k1{}

func TestScalar(t *testing.T) {
	a := Scalar(rand.Reader, group)
	b := Scalar(rand.Reader, group)
	assert.False(t, a.Equal(b))
}

func TestScalarUnit_ZeroReader(t *testing.T) {
	// a reader producing only zeros never yields a unit
	zero := bytes.NewReader(make([]byte, 1<<16))
	assert.Panics(t, func() { ScalarUnit(zero, group) })
}

func TestScalar_ShortReader(t *testing.T) {
	assert.Panics(t, func() { Scalar(bytes.NewReader([]byte{1, 2, 3}), group) })
}

package hash

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/taurusgroup/mpc-vault/pkg/math/curve"
	"github.com/taurusgroup/mpc-vault/pkg/math/sample"
)

func TestHash_WriteAny(t *testing.T) {
	var err error

	testFunc := func(vs ...interface{}) error {
		h := New()
		for _, v := range vs {
			err = h.WriteAny(v)
			if err != nil {
				return err
			}
		}
		return nil
	}

	group := curve.Secp256k1{}
	assert.NoError(t, testFunc(sample.Scalar(rand.Reader, group).ActOnBase()))
	assert.NoError(t, testFunc([]byte{1, 4, 6}))
	assert.NoError(t, testFunc(uint32(7), []byte{1, 4, 6}))
	assert.Error(t, testFunc(group.NewPoint()))
	assert.Panics(t, func() { _ = testFunc(3.14) })
}

func TestHash_DomainSeparation(t *testing.T) {
	h1 := New()
	_ = h1.WriteAny([]byte{1, 2}, []byte{3})
	h2 := New()
	_ = h2.WriteAny([]byte{1}, []byte{2, 3})
	assert.False(t, bytes.Equal(h1.Sum(), h2.Sum()))

	h3 := New(&BytesWithDomain{TheDomain: "a", Bytes: []byte("bc")})
	h4 := New(&BytesWithDomain{TheDomain: "ab", Bytes: []byte("c")})
	assert.False(t, bytes.Equal(h3.Sum(), h4.Sum()))
}

package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	_     struct{} `cbor:",toarray"`
	A     uint16
	Bytes [4]byte
	Tail  []byte
}

func TestCanonical_Deterministic(t *testing.T) {
	v := sample{A: 7, Bytes: [4]byte{1, 2, 3, 4}, Tail: []byte("x")}
	a, err := Canonical(v)
	require.NoError(t, err)
	b, err := Canonical(&v)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	var decoded sample
	require.NoError(t, Unmarshal(a, &decoded))
	assert.Equal(t, v, decoded)
}

func TestUnmarshal_Garbage(t *testing.T) {
	var decoded sample
	assert.Error(t, Unmarshal([]byte{0xff, 0x00}, &decoded))
}

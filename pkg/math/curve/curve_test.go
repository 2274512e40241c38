package curve

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var group = Secp256k1{}

func randomScalar(t *testing.T) Scalar {
	buf := make([]byte, 64)
	_, err := rand.Read(buf)
	require.NoError(t, err)
	return group.NewScalar().SetNat(new(saferith.Nat).SetBytes(buf))
}

func TestPoint_Marshal(t *testing.T) {
	for i := 0; i < 20; i++ {
		p := randomScalar(t).ActOnBase()
		data, err := p.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, data, BytesPoint)
		assert.Contains(t, []byte{0x02, 0x03}, data[0])

		q := group.NewPoint()
		require.NoError(t, q.UnmarshalBinary(data))
		assert.True(t, p.Equal(q))
	}
}

func TestPoint_MarshalIdentity(t *testing.T) {
	_, err := group.NewPoint().MarshalBinary()
	assert.Error(t, err)
}

func TestPoint_UnmarshalInvalid(t *testing.T) {
	q := group.NewPoint()
	assert.Error(t, q.UnmarshalBinary(make([]byte, 32)))
	bad := make([]byte, BytesPoint)
	bad[0] = 0x04
	assert.Error(t, q.UnmarshalBinary(bad))
	// x = 5 has no square root on secp256k1.
	bad[0] = 0x02
	bad[32] = 5
	assert.Error(t, q.UnmarshalBinary(bad))
}

func TestBasePoint(t *testing.T) {
	data, err := group.NewBasePoint().MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798", hex.EncodeToString(data))

	one := ScalarFromUint32(group, 1)
	assert.True(t, one.ActOnBase().Equal(group.NewBasePoint()))
	assert.True(t, one.Act(group.NewBasePoint()).Equal(group.NewBasePoint()))
}

func TestPoint_Arithmetic(t *testing.T) {
	a, b := randomScalar(t), randomScalar(t)
	A, B := a.ActOnBase(), b.ActOnBase()

	sum := group.NewScalar().Set(a).Add(b)
	assert.True(t, sum.ActOnBase().Equal(A.Add(B)))

	diff := group.NewScalar().Set(a).Sub(b)
	assert.True(t, diff.ActOnBase().Equal(A.Sub(B)))

	assert.True(t, A.Sub(A).IsIdentity())
	assert.True(t, A.Add(A.Negate()).IsIdentity())
	assert.True(t, A.Add(group.NewPoint()).Equal(A))
	assert.True(t, group.NewPoint().Add(A).Equal(A))

	prod := group.NewScalar().Set(a).Mul(b)
	assert.True(t, prod.ActOnBase().Equal(a.Act(B)))
	assert.True(t, a.Act(B).Equal(b.Act(A)))
}

func TestScalar_Arithmetic(t *testing.T) {
	a := randomScalar(t)
	inv := group.NewScalar().Set(a).Invert()
	one := ScalarFromUint32(group, 1)
	assert.True(t, inv.Mul(a).Equal(one))

	neg := group.NewScalar().Set(a).Negate()
	assert.True(t, neg.Add(a).IsZero())

	assert.True(t, group.NewScalar().Set(a).Zero().IsZero())
}

func TestScalar_SetNatReduces(t *testing.T) {
	n := group.Order().Nat()
	assert.True(t, group.NewScalar().SetNat(n).IsZero())

	nPlusOne := new(saferith.Nat).Add(n, new(saferith.Nat).SetUint64(1), -1)
	assert.True(t, group.NewScalar().SetNat(nPlusOne).Equal(ScalarFromUint32(group, 1)))
}

func TestScalar_Marshal(t *testing.T) {
	a := randomScalar(t)
	data, err := a.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, BytesScalar)

	b, err := ScalarFromBytes(group, data)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	overflow := make([]byte, BytesScalar)
	for i := range overflow {
		overflow[i] = 0xff
	}
	_, err = ScalarFromBytes(group, overflow)
	assert.Error(t, err)
}

func TestPoint_XScalar(t *testing.T) {
	p := group.NewBasePoint()
	x := p.XScalar()
	data, _ := x.MarshalBinary()
	assert.Equal(t, "79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798", hex.EncodeToString(data))
}

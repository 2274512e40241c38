package party

import (
	"encoding/binary"
	"io"
	"strconv"

	"github.com/taurusgroup/mpc-vault/pkg/math/curve"
)

// ByteSize is the number of bytes required to store an Index.
const ByteSize = 2

// MAX is the largest Index, and therefore the largest group this module supports.
const MAX = (1 << (ByteSize * 8)) - 1

// Index is the 1-based position of a participant inside a canonical group.
//
// It is also the x coordinate at which the participant's Shamir shares are evaluated,
// which is why 0 is never a valid Index.
type Index uint16

// Scalar returns the corresponding curve.Scalar.
func (i Index) Scalar(group curve.Curve) curve.Scalar {
	return curve.ScalarFromUint32(group, uint32(i))
}

// Bytes returns a []byte slice of length party.ByteSize.
func (i Index) Bytes() []byte {
	b := make([]byte, ByteSize)
	binary.BigEndian.PutUint16(b, uint16(i))
	return b
}

// String returns a base 10 representation of Index.
func (i Index) String() string {
	return strconv.FormatUint(uint64(i), 10)
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (i Index) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(i.Bytes())
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (Index) Domain() string {
	return "Party Index"
}

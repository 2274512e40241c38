package bip32

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

var ErrInvalidPath = errors.New("bip32: invalid derivation path")

// Path is a sequence of child indices, hardened indices having their top bit set.
type Path struct {
	_       struct{} `cbor:",toarray"`
	Indices []uint32
}

func newIndex(relativeIndex uint32, hardened bool) uint32 {
	if relativeIndex >= hdkeychain.HardenedKeyStart {
		panic(fmt.Sprintf("Expected index less than 2^31, found %d", relativeIndex))
	}

	if hardened {
		return hdkeychain.HardenedKeyStart | relativeIndex
	}
	return relativeIndex
}

func indexFrom(spec string) (uint32, error) {
	hardened := strings.HasSuffix(spec, "'") || strings.HasSuffix(spec, "h")
	spec = strings.TrimRight(spec, "'h")

	index, err := strconv.ParseUint(spec, 10, 31)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidPath, err)
	}

	return newIndex(uint32(index), hardened), nil
}

// PathFrom parses paths of the form m/44'/0/0'/348, the leading m/ being optional.
func PathFrom(spec string) (Path, error) {
	spec = strings.TrimPrefix(strings.TrimPrefix(spec, "m"), "/")
	if len(spec) == 0 {
		return Path{}, nil
	}

	var indices []uint32
	for _, s := range strings.Split(spec, "/") {
		h, err := indexFrom(s)
		if err != nil {
			return Path{}, err
		}
		indices = append(indices, h)
	}

	return Path{Indices: indices}, nil
}

// MustPath is like PathFrom, but panics on invalid input.
func MustPath(spec string) Path {
	p, err := PathFrom(spec)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the path in m/44'/0 notation.
func (p Path) String() string {
	var b strings.Builder
	b.WriteString("m")
	for _, i := range p.Indices {
		b.WriteString("/")
		if i >= hdkeychain.HardenedKeyStart {
			b.WriteString(strconv.FormatUint(uint64(i-hdkeychain.HardenedKeyStart), 10))
			b.WriteString("'")
		} else {
			b.WriteString(strconv.FormatUint(uint64(i), 10))
		}
	}
	return b.String()
}

package protocol

import (
	"encoding/binary"
	"math/bits"
)

// MaxVarintLen is the maximum number of bytes a uint64 varint occupies.
const MaxVarintLen = binary.MaxVarintLen64

// DecodeUvarint decodes an unsigned varint from buf and returns the value
// and the number of bytes read. A negative count means failure: -1 when
// buf ends inside the varint, -2 when the value overflows 64 bits.
func DecodeUvarint(buf []byte) (uint64, int) {
	v, n := binary.Uvarint(buf)
	switch {
	case n > 0:
		return v, n
	case n == 0:
		return 0, -1
	default:
		return 0, -2
	}
}

// UvarintLen returns the number of bytes needed to encode v as a varint.
func UvarintLen(v uint64) int {
	return (bits.Len64(v|1) + 6) / 7
}

// StringLen returns the encoded size of a length-prefixed string.
func StringLen(s string) int {
	return UvarintLen(uint64(len(s))) + len(s)
}

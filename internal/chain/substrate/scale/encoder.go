package scale

import (
	"encoding/binary"
	"math/bits"
)

// AppendCompact appends the compact encoding of v to dst.
func AppendCompact(dst []byte, v uint64) []byte {
	switch {
	case v < 1<<6:
		return append(dst, byte(v<<2))
	case v < 1<<14:
		return binary.LittleEndian.AppendUint16(dst, uint16(v<<2)|0b01)
	case v < 1<<30:
		return binary.LittleEndian.AppendUint32(dst, uint32(v<<2)|0b10)
	}
	n := (bits.Len64(v) + 7) / 8
	if n < 4 {
		n = 4
	}
	dst = append(dst, byte(n-4)<<2|0b11)
	for i := 0; i < n; i++ {
		dst = append(dst, byte(v>>(8*i)))
	}
	return dst
}

func AppendU32(dst []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, v)
}

// AppendBytes appends a length-prefixed byte vector.
func AppendBytes(dst []byte, b []byte) []byte {
	dst = AppendCompact(dst, uint64(len(b)))
	return append(dst, b...)
}

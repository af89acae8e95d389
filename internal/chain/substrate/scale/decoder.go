// Package scale decodes and encodes the subset of the SCALE codec needed to
// read relay and broker pallet storage.
package scale

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
)

var (
	ErrUnexpectedEOF = errors.New("scale: unexpected end of input")
	ErrInvalidOption = errors.New("scale: invalid option tag")
	ErrCompactRange  = errors.New("scale: compact integer out of range")
)

// Decoder reads SCALE values from a byte slice in order.
type Decoder struct {
	buf []byte
	off int
}

func NewDecoder(b []byte) *Decoder {
	return &Decoder{buf: b}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.off
}

func (d *Decoder) Offset() int {
	return d.off
}

func (d *Decoder) take(n int) ([]byte, error) {
	if n < 0 || d.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrUnexpectedEOF, n, d.off, d.Remaining())
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *Decoder) ReadByte() (byte, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Bytes returns a copy of the next n bytes.
func (d *Decoder) Bytes(n int) ([]byte, error) {
	b, err := d.take(n)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

func (d *Decoder) Skip(n int) error {
	_, err := d.take(n)
	return err
}

func (d *Decoder) U8() (uint8, error) {
	return d.ReadByte()
}

func (d *Decoder) U16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *Decoder) U32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *Decoder) U64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Compact reads a compact-encoded unsigned integer. Values wider than 64
// bits are rejected.
func (d *Decoder) Compact() (uint64, error) {
	first, err := d.ReadByte()
	if err != nil {
		return 0, err
	}
	switch first & 0b11 {
	case 0b00:
		return uint64(first >> 2), nil
	case 0b01:
		next, err := d.ReadByte()
		if err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint16([]byte{first, next}) >> 2), nil
	case 0b10:
		rest, err := d.take(3)
		if err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint32([]byte{first, rest[0], rest[1], rest[2]}) >> 2), nil
	default:
		n := int(first>>2) + 4
		if n > 8 {
			return 0, fmt.Errorf("%w: %d byte integer", ErrCompactRange, n)
		}
		b, err := d.take(n)
		if err != nil {
			return 0, err
		}
		var v uint64
		for i := n - 1; i >= 0; i-- {
			v = v<<8 | uint64(b[i])
		}
		return v, nil
	}
}

// Len reads a compact vector length and bounds it by the remaining input,
// assuming each element takes at least minElemSize bytes.
func (d *Decoder) Len(minElemSize int) (int, error) {
	n, err := d.Compact()
	if err != nil {
		return 0, err
	}
	if minElemSize > 0 && n > uint64(d.Remaining()/minElemSize) {
		return 0, fmt.Errorf("%w: vector of %d elements at offset %d", ErrUnexpectedEOF, n, d.off)
	}
	if n > uint64(maxInt) {
		return 0, fmt.Errorf("%w: vector length %d", ErrCompactRange, n)
	}
	return int(n), nil
}

// Option reads an Option tag and reports whether a value follows.
func (d *Decoder) Option() (bool, error) {
	tag, err := d.ReadByte()
	if err != nil {
		return false, err
	}
	switch tag {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: 0x%02x at offset %d", ErrInvalidOption, tag, d.off-1)
	}
}

// OptionU32 reads an Option<u32>.
func (d *Decoder) OptionU32() (*uint32, error) {
	some, err := d.Option()
	if err != nil || !some {
		return nil, err
	}
	v, err := d.U32()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

const maxInt = 1<<(bits.UintSize-1) - 1

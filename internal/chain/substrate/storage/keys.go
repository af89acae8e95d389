// Package storage derives Substrate storage keys.
package storage

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"
)

// Hasher is a storage map key hasher.
type Hasher struct {
	Name string
	// HashLen is the length of the hash part. Concat hashers append the raw
	// key after it.
	HashLen int
	Concat  bool
	hash    func([]byte) []byte
}

var (
	Twox64Concat     = Hasher{Name: "Twox64Concat", HashLen: 8, Concat: true, hash: Twox64}
	Blake2_128Concat = Hasher{Name: "Blake2_128Concat", HashLen: 16, Concat: true, hash: Blake2_128}
)

// Hash applies the hasher to an encoded map key.
func (h Hasher) Hash(key []byte) []byte {
	out := h.hash(key)
	if h.Concat {
		out = append(out, key...)
	}
	return out
}

func twox(data []byte, rounds int) []byte {
	out := make([]byte, 0, 8*rounds)
	for seed := 0; seed < rounds; seed++ {
		d := xxhash.NewWithSeed(uint64(seed))
		_, _ = d.Write(data)
		out = binary.LittleEndian.AppendUint64(out, d.Sum64())
	}
	return out
}

func Twox64(data []byte) []byte {
	return twox(data, 1)
}

func Twox128(data []byte) []byte {
	return twox(data, 2)
}

func Blake2_128(data []byte) []byte {
	h, err := blake2b.New(16, nil)
	if err != nil {
		// Only fails for sizes outside 1..64.
		panic(err)
	}
	h.Write(data)
	return h.Sum(nil)
}

// PlainKey is the key of a storage value, and the prefix of every entry of a
// storage map.
func PlainKey(pallet, item string) []byte {
	key := Twox128([]byte(pallet))
	return append(key, Twox128([]byte(item))...)
}

// MapKey is the key of one storage map entry.
func MapKey(pallet, item string, hasher Hasher, encodedKey []byte) []byte {
	return append(PlainKey(pallet, item), hasher.Hash(encodedKey)...)
}

// MapKeySuffix returns the encoded map key from the full storage key of a
// concat-hashed single-key map entry.
func MapKeySuffix(fullKey []byte, hasher Hasher) ([]byte, error) {
	if !hasher.Concat {
		return nil, fmt.Errorf("hasher %s does not retain the key", hasher.Name)
	}
	prefix := 32 + hasher.HashLen
	if len(fullKey) < prefix {
		return nil, fmt.Errorf("storage key of %d bytes is shorter than %s prefix", len(fullKey), hasher.Name)
	}
	return fullKey[prefix:], nil
}

// U32Key encodes a u32 map key.
func U32Key(v uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, v)
}

// Hex renders a key as 0x-prefixed hex, the form the RPC expects.
func Hex(key []byte) string {
	return "0x" + hex.EncodeToString(key)
}

// ParseHex decodes a 0x-prefixed hex key.
func ParseHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, fmt.Errorf("decode storage key %q: %w", s, err)
	}
	return b, nil
}

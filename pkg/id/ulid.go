// Package id generates sortable identifiers for nodes and requests.
package id

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// Crockford's Base32 alphabet (excludes I, L, O, U to avoid confusion).
const crockfordBase32 = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// ULIDLength is the length of a ULID string.
const ULIDLength = 26

// NewULID generates a ULID (Universally Unique Lexicographically Sortable Identifier).
// Returns a 26-character string: 10 chars timestamp (48-bit ms) + 16 chars random (80-bit).
// Node ids generated this way sort by creation time, which keeps folder listings stable.
func NewULID() string {
	return newULIDAt(time.Now())
}

func newULIDAt(t time.Time) string {
	ms := uint64(t.UnixMilli())

	var entropy [10]byte
	if _, err := rand.Read(entropy[:]); err != nil {
		// Degraded but functional.
		binary.BigEndian.PutUint64(entropy[:8], uint64(time.Now().UnixNano()))
	}

	var out [ULIDLength]byte

	// 48-bit timestamp, most significant group first.
	for i := 9; i >= 0; i-- {
		out[i] = crockfordBase32[ms&0x1F]
		ms >>= 5
	}

	// 80 random bits as 16 groups of 5 bits.
	hi := binary.BigEndian.Uint16(entropy[0:2])
	lo := binary.BigEndian.Uint64(entropy[2:10])
	for i := ULIDLength - 1; i >= 10; i-- {
		out[i] = crockfordBase32[lo&0x1F]
		lo = lo>>5 | uint64(hi&0x1F)<<59
		hi >>= 5
	}

	return string(out[:])
}

// IsULID reports whether s is shaped like a ULID produced by NewULID.
func IsULID(s string) bool {
	if len(s) != ULIDLength {
		return false
	}
	for i := range len(s) {
		if decodeTable[s[i]] == 0xFF {
			return false
		}
	}
	// The first character carries only 3 bits of the 48-bit timestamp.
	return decodeTable[s[0]] <= 7
}

var decodeTable = func() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = 0xFF
	}
	for i := range len(crockfordBase32) {
		t[crockfordBase32[i]] = byte(i)
	}
	return t
}()

// ULIDTime returns the creation time encoded in a ULID.
// The second return value is false if s is not a valid ULID.
func ULIDTime(s string) (time.Time, bool) {
	if !IsULID(s) {
		return time.Time{}, false
	}
	var ms uint64
	for i := range 10 {
		ms = ms<<5 | uint64(decodeTable[s[i]])
	}
	return time.UnixMilli(int64(ms)), true
}

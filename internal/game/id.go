package game

import (
	"crypto/rand"
	"time"
)

// Crockford's base32 alphabet, as used by TypeID
const idAlphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Alphabet for human-facing join codes. Uppercase letters and digits,
// matching the original six-character game codes.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewID creates a table or hand identifier: a UUIDv7 encoded as a
// 26-character base32 string, sortable by creation time.
func NewID() string {
	var uuid [16]byte

	now := time.Now().UnixMilli()
	uuid[0] = byte(now >> 40)
	uuid[1] = byte(now >> 32)
	uuid[2] = byte(now >> 24)
	uuid[3] = byte(now >> 16)
	uuid[4] = byte(now >> 8)
	uuid[5] = byte(now)

	if _, err := rand.Read(uuid[6:]); err != nil {
		panic("failed to generate random bytes: " + err.Error())
	}

	// Version 7, variant 10
	uuid[6] = (uuid[6] & 0x0f) | 0x70
	uuid[8] = (uuid[8] & 0x3f) | 0x80

	return encodeBase32(uuid)
}

// NewCode creates a 6-character join code for table discovery. Bytes at
// or above the largest multiple of the alphabet size are rejected and
// redrawn, keeping every character equally likely.
func NewCode() string {
	limit := 256 - 256%len(codeAlphabet)

	var out [6]byte
	var buf [1]byte
	for i := 0; i < len(out); {
		if _, err := rand.Read(buf[:]); err != nil {
			panic("failed to generate random bytes: " + err.Error())
		}
		if int(buf[0]) >= limit {
			continue
		}
		out[i] = codeAlphabet[int(buf[0])%len(codeAlphabet)]
		i++
	}
	return string(out[:])
}

// encodeBase32 encodes 128 bits as 26 base32 characters (2 + 24·5 = 130
// bits of space, top two bits of the first character unused).
func encodeBase32(uuid [16]byte) string {
	var out [26]byte

	// Treat the uuid as one big integer and peel off 5 bits at a time
	// from the most significant end.
	bitAt := func(i int) byte {
		return (uuid[i/8] >> (7 - i%8)) & 1
	}

	bit := 0
	// First character carries only 3 bits
	var v byte
	for i := 0; i < 3; i++ {
		v = v<<1 | bitAt(bit)
		bit++
	}
	out[0] = idAlphabet[v]

	for i := 1; i < 26; i++ {
		v = 0
		for j := 0; j < 5; j++ {
			v = v<<1 | bitAt(bit)
			bit++
		}
		out[i] = idAlphabet[v]
	}

	return string(out[:])
}

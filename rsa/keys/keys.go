// Package keys holds the key data model and the on-disk key codec.
//
// A key file carries a binary payload (lengths, little-endian magnitudes,
// a fixed-width role tag and a free-form comment), optionally wrapped in
// base64 with PEM-style header and footer lines. The reader auto-detects
// which of the two forms it is given.
package keys

import "math/big"

// Role tags occupy exactly 7 bytes in the payload; the public tag is
// padded with a trailing underscore to match.
const (
	RolePublic  = "PUBLIC_"
	RolePrivate = "PRIVATE"

	roleTagLen = 7
)

// Key is one half of an RSA key pair: M is the modulus, Base is either
// the public or the private exponent.
type Key struct {
	Base *big.Int
	M    *big.Int
}

// ZeroKey is the sentinel for an absent key, e.g. when only one file of
// a pair exists on disk.
func ZeroKey() Key {
	return Key{Base: new(big.Int), M: new(big.Int)}
}

func (k Key) IsZero() bool {
	return (k.Base == nil || k.Base.Sign() == 0) && (k.M == nil || k.M.Sign() == 0)
}

func (k Key) Equal(other Key) bool {
	if k.IsZero() || other.IsZero() {
		return k.IsZero() == other.IsZero()
	}
	return k.Base.Cmp(other.Base) == 0 && k.M.Cmp(other.M) == 0
}

// KeySet is a freshly derived key pair sharing the same modulus.
type KeySet struct {
	Public  Key
	Private Key
}

// ParseError reports a malformed key file. It is only raised inside the
// codec.
type ParseError struct {
	Msg string
}

func (e ParseError) Error() string {
	return e.Msg
}

// FormatError is reserved for key format violations; nothing raises it
// yet.
type FormatError struct{}

func (e FormatError) Error() string {
	return "key format error"
}

// BytesLE returns the little-endian magnitude of x. Zero yields an empty
// slice.
func BytesLE(x *big.Int) []byte {
	b := x.Bytes()
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}

// ParseLE interprets b as a little-endian unsigned integer.
func ParseLE(b []byte) *big.Int {
	be := make([]byte, len(b))
	for i, c := range b {
		be[len(b)-1-i] = c
	}
	return new(big.Int).SetBytes(be)
}

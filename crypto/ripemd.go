package crypto

import (
	"encoding/hex"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // required by the password withdraw-condition hash check
)

// Ripemd160Hex hashes data with ripemd160 and returns the lowercase hex
// digest, the exact check a password withdraw-condition's preimage is
// verified against.
func Ripemd160Hex(data []byte) string {
	h := ripemd160.New()
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

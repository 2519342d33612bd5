package inventory

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
)

// tokenBytes gives 192 bits of entropy, comfortably past the 128-bit floor
// for an unexpiring bearer credential.
const tokenBytes = 24

// NewToken mints a URL-safe share token.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// TokenDigest is the hex blake2b-256 digest under which a token is indexed
// at rest. Lookups go through the digest so the index key has fixed length
// and the plaintext column is only touched for the final comparison.
func TokenDigest(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// TokenCacheKey derives a fixed-size cache key for a token so the raw bearer
// credential never appears as a redis or memcached key.
func TokenCacheKey(prefix, token string) string {
	return fmt.Sprintf("%s:%016x", prefix, xxh3.HashString(TokenDigest(token)))
}

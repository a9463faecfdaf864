package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// KeyScheme is the leading segment of every issued prediction API key.
	KeyScheme = "eo"
	// PrefixHexLen is the length of the non-secret lookup prefix segment.
	PrefixHexLen = 8
	// SecretHexLen is the length of the secret segment.
	SecretHexLen = 32
)

// KeyHasher computes keyed digests of presented API keys. The hash secret is
// process-wide, loaded once at startup, and never logged.
type KeyHasher struct {
	secret []byte
}

// NewKeyHasher creates a hasher from the configured hash secret.
func NewKeyHasher(secret string) (*KeyHasher, error) {
	if secret == "" {
		return nil, fmt.Errorf("api key hash secret must not be empty")
	}
	return &KeyHasher{secret: []byte(secret)}, nil
}

// HashKey returns the hex HMAC-SHA256 digest of the full plaintext key.
func (h *KeyHasher) HashKey(plaintext string) string {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(plaintext))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyKey recomputes the digest of plaintext and compares it against the
// stored digest in constant time.
func (h *KeyHasher) VerifyKey(plaintext, storedDigest string) bool {
	computed := h.HashKey(plaintext)
	return hmac.Equal([]byte(computed), []byte(storedDigest))
}

// ExtractPrefix parses a presented key of the form "eo_<prefix>_<secret>" and
// returns its lookup prefix. The prefix is an indexing optimization, not a
// security boundary: the caller must still verify the full digest. ok is
// false for any malformed key.
func ExtractPrefix(plaintext string) (prefix string, ok bool) {
	parts := strings.Split(plaintext, "_")
	if len(parts) != 3 {
		return "", false
	}
	if parts[0] != KeyScheme {
		return "", false
	}
	if len(parts[1]) != PrefixHexLen || !isLowerHex(parts[1]) {
		return "", false
	}
	if len(parts[2]) != SecretHexLen || !isLowerHex(parts[2]) {
		return "", false
	}
	return parts[1], true
}

// FormatKey assembles a plaintext key from its prefix and secret segments.
func FormatKey(prefix, secret string) string {
	return KeyScheme + "_" + prefix + "_" + secret
}

// GenerateKey mints a new plaintext key with random prefix and secret
// segments.
func GenerateKey() (plaintext, prefix string, err error) {
	prefix, err = GenerateRandomToken(PrefixHexLen / 2)
	if err != nil {
		return "", "", err
	}
	secret, err := GenerateRandomToken(SecretHexLen / 2)
	if err != nil {
		return "", "", err
	}
	return FormatKey(prefix, secret), prefix, nil
}

// MaskKey returns the displayable form of a plaintext key, keeping only the
// last four characters.
func MaskKey(plaintext string) string {
	if len(plaintext) < 4 {
		return "****"
	}
	return "****" + plaintext[len(plaintext)-4:]
}

func isLowerHex(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyHasher_HashAndVerify(t *testing.T) {
	h, err := NewKeyHasher("unit-test-secret")
	require.NoError(t, err)

	plaintext, prefix, err := GenerateKey()
	require.NoError(t, err)
	assert.Len(t, prefix, PrefixHexLen)
	assert.True(t, strings.HasPrefix(plaintext, "eo_"+prefix+"_"))

	digest := h.HashKey(plaintext)
	assert.Len(t, digest, 64)
	assert.Equal(t, digest, h.HashKey(plaintext), "digest must be deterministic")

	assert.True(t, h.VerifyKey(plaintext, digest))
	assert.False(t, h.VerifyKey(plaintext+"x", digest))
}

func TestKeyHasher_DifferentSecretsDiffer(t *testing.T) {
	h1, err := NewKeyHasher("secret-one")
	require.NoError(t, err)
	h2, err := NewKeyHasher("secret-two")
	require.NoError(t, err)

	assert.NotEqual(t, h1.HashKey("eo_abcd1234_x"), h2.HashKey("eo_abcd1234_x"))
}

func TestNewKeyHasher_EmptySecret(t *testing.T) {
	_, err := NewKeyHasher("")
	assert.Error(t, err)
}

func TestExtractPrefix(t *testing.T) {
	plaintext, prefix, err := GenerateKey()
	require.NoError(t, err)

	got, ok := ExtractPrefix(plaintext)
	assert.True(t, ok)
	assert.Equal(t, prefix, got)

	for _, malformed := range []string{
		"",
		"eo",
		"eo_abcd1234",
		"pk_abcd1234_0123456789abcdef0123456789abcdef",
		"eo_ABCD1234_0123456789abcdef0123456789abcdef",
		"eo_abcd1234_short",
		"eo_abcd1234_0123456789abcdef0123456789abcdef_extra",
		"eo__0123456789abcdef0123456789abcdef",
	} {
		_, ok := ExtractPrefix(malformed)
		assert.False(t, ok, "expected %q to be rejected", malformed)
	}
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "****beef", MaskKey("eo_abcd1234_deadbeef00000000000000000000beef"))
	assert.Equal(t, "****", MaskKey("eo"))
}

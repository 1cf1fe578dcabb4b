package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("s3cret-pass")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$"))

	assert.True(t, Verify("s3cret-pass", encoded))
	assert.False(t, Verify("wrong-pass", encoded))
	assert.False(t, Verify("", encoded))
}

func TestHashIsSalted(t *testing.T) {
	first, err := Hash("s3cret-pass")
	require.NoError(t, err)
	second, err := Hash("s3cret-pass")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, Verify("s3cret-pass", first))
	assert.True(t, Verify("s3cret-pass", second))
}

func TestVerifyRejectsMalformedEncodings(t *testing.T) {
	encodings := []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=65536,t=1$missing-part",
		"$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=bad,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA",
	}
	for _, encoded := range encodings {
		assert.False(t, Verify("s3cret-pass", encoded), "encoding %q", encoded)
	}
}

package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "s3cret!", hash)

	assert.True(t, CheckPasswordHash("s3cret!", hash))
	assert.False(t, CheckPasswordHash("guess", hash))
	assert.False(t, CheckPasswordHash("s3cret!", "not-a-bcrypt-hash"))

	// same secret, different salt
	otherHash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, hash, otherHash)
}

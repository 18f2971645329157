package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheck(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("margherita")
	require.NoError(t, err)
	assert.NotEqual(t, "margherita", h)

	assert.True(t, CheckPassword(h, "margherita"))
	assert.False(t, CheckPassword(h, "diavola"))
	assert.False(t, CheckPassword("not-a-hash", "margherita"))
}

package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestAccessToken_RoundTrip(t *testing.T) {
	t.Parallel()

	raw, err := NewAccessToken(RoleAdmin, "admin", time.Now().Add(time.Minute), secret)
	require.NoError(t, err)

	claims, err := AccessClaimsFromToken(raw, secret)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "admin", claims.Subject)
}

func TestAccessToken_Rejects(t *testing.T) {
	t.Parallel()

	expired, err := NewAccessToken(RoleAdmin, "admin", time.Now().Add(-time.Minute), secret)
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(expired, secret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	valid, err := NewAccessToken(RoleAdmin, "admin", time.Now().Add(time.Minute), secret)
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(valid, []byte("other"))
	assert.ErrorIs(t, err, jwt.ErrSignatureInvalid)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"role": RoleAdmin}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(none, secret)
	assert.Error(t, err)
}

func TestCreateCookie(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(AccessTTL)
	c := CreateCookie(AccessCookie, "v", "/", exp)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, "accessToken", c.Name)
	assert.Equal(t, exp, c.Expires)
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyRoundTrip(t *testing.T) {
	v := NewVerifier("secret", "empowhr")

	token, err := v.Sign(" Admin@Co.com ", "ADMIN", time.Hour)
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@co.com", claims.Email)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.True(t, claims.HasRole(RoleHR, RoleAdmin))
	assert.False(t, claims.HasRole(RoleEmployee))
}

func TestVerifyRejects(t *testing.T) {
	v := NewVerifier("secret", "empowhr")

	expired, err := v.Sign("hr@co.com", RoleHR, -time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewVerifier("other-secret", "empowhr").Sign("hr@co.com", RoleHR, time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer, err := NewVerifier("secret", "someone-else").Sign("hr@co.com", RoleHR, time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(wrongIssuer)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

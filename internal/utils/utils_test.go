package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/shoe-workshop/internal/model"
)

const secret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	at, err := NewAccessToken(secret, 42, model.RoleSales, 15*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, at.Token)
	require.WithinDuration(t, time.Now().Add(15*time.Minute), at.Exp, 5*time.Second)

	claims, err := ParseAccessToken(secret, at.Token)
	require.NoError(t, err)
	require.Equal(t, "sales", claims.Role)
	id, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, uint64(42), id)
}

func TestParseAccessTokenRejects(t *testing.T) {
	at, err := NewAccessToken(secret, 1, model.RoleAdmin, time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken("other-secret", at.Token)
	require.Error(t, err)

	expired, err := NewAccessToken(secret, 1, model.RoleAdmin, -time.Minute)
	require.NoError(t, err)
	_, err = ParseAccessToken(secret, expired.Token)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)

	unknownRole := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: "janitor",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	raw, err := unknownRole.SignedString([]byte(secret))
	require.NoError(t, err)
	_, err = ParseAccessToken(secret, raw)
	require.ErrorIs(t, err, ErrInvalidClaims)

	_, err = ParseAccessToken(secret, "not.a.jwt")
	require.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("adminpass", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "adminpass", hash)
	require.True(t, VerifyPassword(hash, "adminpass"))
	require.False(t, VerifyPassword(hash, "wrong"))
}

func TestHashPasswordTooShort(t *testing.T) {
	_, err := HashPassword("abc", bcrypt.MinCost)
	require.ErrorIs(t, err, ErrPasswordTooShort)
}

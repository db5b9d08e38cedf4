package jwt

import (
	"testing"
	"time"

	"github.com/alx-polly/backend/internal/entity"
	jwtGo "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func parse(t *testing.T, tokenString string) jwtGo.MapClaims {
	t.Helper()

	token, err := jwtGo.ParseWithClaims(tokenString, jwtGo.MapClaims{}, func(token *jwtGo.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwtGo.MapClaims)
	require.True(t, ok)
	return claims
}

func TestNewTokenPair(t *testing.T) {
	user := entity.User{ID: "user-1", Email: "user@example.com"}

	pair, err := NewTokenPair(user, testSecret, 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	access := parse(t, pair.AccessToken)
	assert.Equal(t, "user-1", access["uid"])
	assert.Equal(t, "user@example.com", access["email"])
	assert.Equal(t, "access", access["typ"])

	refresh := parse(t, pair.RefreshToken)
	assert.Equal(t, "user-1", refresh["uid"])
	assert.Equal(t, "refresh", refresh["typ"])

	accessExp := time.Unix(int64(access["exp"].(float64)), 0)
	refreshExp := time.Unix(int64(refresh["exp"].(float64)), 0)
	assert.InDelta(t, time.Until(accessExp).Seconds(), (15 * time.Minute).Seconds(), 5)
	assert.InDelta(t, time.Until(refreshExp).Seconds(), (720 * time.Hour).Seconds(), 5)
}

func TestNewTokenPair_WrongSecretRejected(t *testing.T) {
	pair, err := NewTokenPair(entity.User{ID: "user-1"}, testSecret, time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = jwtGo.Parse(pair.AccessToken, func(token *jwtGo.Token) (interface{}, error) {
		return []byte("other-secret"), nil
	})
	require.Error(t, err)
}

package jwt

import (
	"time"

	"github.com/alx-polly/backend/internal/entity"
	"github.com/golang-jwt/jwt/v5"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

func NewTokenPair(user entity.User, secret string, accessTTL, refreshTTL time.Duration) (*TokenPair, error) {
	accessToken, err := newToken(user, secret, "access", accessTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, err := newToken(user, secret, "refresh", refreshTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func newToken(user entity.User, secret, typ string, ttl time.Duration) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)

	claims["uid"] = user.ID
	claims["email"] = user.Email
	claims["typ"] = typ
	claims["exp"] = time.Now().Add(ttl).Unix()

	return token.SignedString([]byte(secret))
}

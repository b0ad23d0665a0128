package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid token")

// Issuer signs and verifies the access/refresh token pair. The two token
// kinds use separate secrets so a leaked refresh secret cannot mint access
// tokens and vice versa.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
}

func NewIssuer(accessSecret, refreshSecret string) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
	}
}

func (i *Issuer) GenerateAccessToken(userID string) (string, error) {
	return generate(userID, i.accessSecret, AccessTokenTTL)
}

func (i *Issuer) GenerateRefreshToken(userID string) (string, error) {
	return generate(userID, i.refreshSecret, RefreshTokenTTL)
}

func generate(userID string, secret []byte, ttl time.Duration) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["userId"] = userID
	claims["exp"] = time.Now().Add(ttl).Unix()

	return token.SignedString(secret)
}

// VerifyAccessToken returns the user id carried by a valid access token.
func (i *Issuer) VerifyAccessToken(tokenString string) (string, error) {
	return verify(tokenString, i.accessSecret)
}

// VerifyRefreshToken returns the user id carried by a valid refresh token.
func (i *Issuer) VerifyRefreshToken(tokenString string) (string, error) {
	return verify(tokenString, i.refreshSecret)
}

func verify(tokenString string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenSignatureInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	userID, ok := claims["userId"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidToken
	}

	return userID, nil
}

package auth

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/skydrive/skydrive/pkg/types"
)

const userContextKey = "jwtUser"

var ErrInvalidToken = errors.New("invalid auth token")

// VerifyToken parses and validates an HMAC signed bearer token issued by the
// external credential service.
func VerifyToken(token, secret string) (*types.JWTClaims, error) {
	claims := &types.JWTClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func SetUser(c *gin.Context, claims *types.JWTClaims) {
	c.Set(userContextKey, claims)
}

// GetUser returns the authenticated caller id set by the auth middleware.
func GetUser(c *gin.Context) string {
	claims := c.MustGet(userContextKey).(*types.JWTClaims)
	return claims.Subject
}

package types

import "github.com/golang-jwt/jwt/v5"

// AppError carries the wrapped cause and the HTTP status the operation maps
// to at the boundary. A zero Code is treated as 500.
type AppError struct {
	Error error
	Code  int
}

type JWTClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}

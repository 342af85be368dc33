package model

import "github.com/golang-jwt/jwt"

// UserClaims is the bearer token payload. UserID falls back to the standard issuer claim.
type UserClaims struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	jwt.StandardClaims
}

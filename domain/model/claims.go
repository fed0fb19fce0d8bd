package model

import "github.com/golang-jwt/jwt"

// AdminClaims is the admin session token. Subject carries the external
// admin identity used as token owner.
type AdminClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.StandardClaims
}

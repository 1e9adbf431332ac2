package auth

import (
	"github.com/agriportal/agriportal-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	Email string
	Role  enums.Role
	JTI   string
}

// AccessTokenClaims represents the typed JWT presented by clients. Identity is
// the email address; users are not stored locally.
type AccessTokenClaims struct {
	Email string     `json:"email"`
	Role  enums.Role `json:"role"`
	jwt.RegisteredClaims
}

package auth

import "github.com/golang-jwt/jwt/v5"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// AccessTokenPayload is what callers provide when minting a token.
type AccessTokenPayload struct {
	Email    string
	Username string
	Role     string
}

// AccessTokenClaims is the JWT claim set carried by every access token.
type AccessTokenClaims struct {
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

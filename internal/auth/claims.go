package auth

import "github.com/golang-jwt/jwt/v5"

// Claims are the only supported session token claims.
// Role is kept as a raw string here and parsed into identity.Role on verify,
// so an unknown role fails verification instead of leaking through.
type Claims struct {
	jwt.RegisteredClaims

	UID  string `json:"uid"`
	Role string `json:"role"`
}

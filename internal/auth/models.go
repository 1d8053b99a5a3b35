package auth

import "github.com/golang-jwt/jwt/v5"

// Principal is the caller identity handed to visibility and admin checks.
// Privileged means the token belongs to the configured admin user; Elevated
// means the request carried the show-restricted signal. Both are required
// before restricted content or admin mutations open up.
type Principal struct {
	Name       string `json:"name"`
	Privileged bool   `json:"privileged"`
	Elevated   bool   `json:"elevated"`
}

// Anonymous is the principal for requests without credentials.
var Anonymous = Principal{}

// CanSeeRestricted reports whether restricted-tagged content is visible.
func (p Principal) CanSeeRestricted() bool {
	return p.Privileged && p.Elevated
}

// IsAdmin gates create/update/delete of admin-only resources.
func (p Principal) IsAdmin() bool {
	return p.Privileged && p.Elevated
}

// Claims is the JWT payload issued by Login.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"homestash/internal/config"
)

const tokenLifetime = 24 * time.Hour

// Service verifies credentials against the configured users file and issues
// bearer tokens. Credentials live in the injected config, never in package
// state.
type Service struct {
	cfg *config.Config
}

func NewService(cfg *config.Config) *Service {
	return &Service{cfg: cfg}
}

// Authenticate checks a username/password pair against the stored bcrypt hash.
func (s *Service) Authenticate(username, password string) error {
	hash, ok := s.cfg.Users[username]
	if !ok {
		return fmt.Errorf("unknown user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return fmt.Errorf("invalid credentials")
	}
	return nil
}

// IssueToken signs a token for an authenticated username.
func (s *Service) IssueToken(username string) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a bearer token and returns the username inside it.
func (s *Service) ParseToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	return claims.Username, nil
}

// PrincipalFor builds the caller principal from an authenticated username and
// the per-request elevated signal.
func (s *Service) PrincipalFor(username string, elevated bool) Principal {
	return Principal{
		Name:       username,
		Privileged: username != "" && username == s.cfg.AdminUser,
		Elevated:   elevated,
	}
}

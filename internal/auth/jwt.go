// Package auth verifies kiosk bearer tokens and enforces the role gate on
// the admin surface. Account creation and sign-in live elsewhere; this
// service only consumes the "current user / role" capability.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleNone       = "none"
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

var ErrInvalidToken = errors.New("invalid token")

type TokenClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// User is the authenticated caller attached to the request context.
type User struct {
	ID    string
	Email string
	Role  string
}

// IsAdmin reports whether the user may enter the admin surface.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

type Verifier struct {
	secret []byte
	ttl    time.Duration
}

func NewVerifier(secret []byte, ttl time.Duration) *Verifier {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Verifier{secret: secret, ttl: ttl}
}

// IssueToken mints a kiosk token. Used operationally to provision admin and
// jukebox surfaces.
func (v *Verifier) IssueToken(userID, email, role string) (string, error) {
	now := time.Now()
	claims := &TokenClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// ParseToken validates the signature and expiry and returns the caller.
func (v *Verifier) ParseToken(token string) (User, error) {
	var claims TokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return User{}, ErrInvalidToken
	}

	role := claims.Role
	if role == "" {
		role = RoleNone
	}
	return User{ID: claims.UserID, Email: claims.Email, Role: role}, nil
}

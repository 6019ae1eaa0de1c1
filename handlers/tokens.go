package handlers

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token scopes. Access tokens identify a session, email tokens back
// confirmation links, reset tokens carry a pending password change.
const (
	ScopeAccess = "access"
	ScopeEmail  = "email"
	ScopeReset  = "reset"
)

// EmailTokenTTL is how long email confirmation links stay valid
const EmailTokenTTL = 7 * 24 * time.Hour

// Package-level JWT secret for shared access
var sharedJWTSecret []byte

// JWTClaims represents JWT claims
type JWTClaims struct {
	UserID   int    `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	Scope    string `json:"scope"`
	Password string `json:"password,omitempty"`
	jwt.RegisteredClaims
}

func signToken(claims *JWTClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(sharedJWTSecret)
}

// GenerateAccessToken creates a session token for a user
func GenerateAccessToken(user *User, ttl time.Duration) (string, error) {
	return signToken(&JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		Scope:    ScopeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "contacthatch",
		},
	})
}

// GenerateEmailToken creates a long-lived token used in email confirmation links
func GenerateEmailToken(email string) (string, error) {
	return signToken(&JWTClaims{
		Scope: ScopeEmail,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(EmailTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "contacthatch",
		},
	})
}

// GenerateResetToken creates a token carrying the bcrypt hash of the new
// password. Installing the hash is deferred until the link is followed.
func GenerateResetToken(email, hashedPassword string, ttl time.Duration) (string, error) {
	return signToken(&JWTClaims{
		Scope:    ScopeReset,
		Password: hashedPassword,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "contacthatch",
		},
	})
}

// ParseToken validates a token string and returns its claims
func ParseToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return sharedJWTSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// EmailFromToken extracts the subject email from a token of the given scope
func EmailFromToken(tokenString, scope string) (string, error) {
	claims, err := ParseToken(tokenString)
	if err != nil {
		return "", err
	}
	if claims.Scope != scope || claims.Subject == "" {
		return "", fmt.Errorf("missing subject in token")
	}
	return claims.Subject, nil
}

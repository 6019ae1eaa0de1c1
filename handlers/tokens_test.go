package handlers

import (
	"strings"
	"testing"
	"time"
)

func setTestSecret() {
	sharedJWTSecret = []byte("test-jwt-secret-for-testing-only-32chars")
}

func TestAccessToken_RoundTrip(t *testing.T) {
	setTestSecret()

	user := &User{ID: 42, Username: "testuser", Role: "admin"}
	token, err := GenerateAccessToken(user, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("Expected user ID 42, got %d", claims.UserID)
	}
	if claims.Subject != "testuser" {
		t.Errorf("Expected subject 'testuser', got '%s'", claims.Subject)
	}
	if claims.Role != "admin" {
		t.Errorf("Expected role 'admin', got '%s'", claims.Role)
	}
	if claims.Scope != ScopeAccess {
		t.Errorf("Expected scope '%s', got '%s'", ScopeAccess, claims.Scope)
	}
}

func TestAccessToken_Expired(t *testing.T) {
	setTestSecret()

	user := &User{ID: 1, Username: "testuser"}
	token, err := GenerateAccessToken(user, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, err := ParseToken(token); err == nil {
		t.Error("Expected expired token to be rejected")
	}
}

func TestParseToken_Tampered(t *testing.T) {
	setTestSecret()

	user := &User{ID: 1, Username: "testuser"}
	token, _ := GenerateAccessToken(user, time.Hour)

	// Flip the payload portion
	parts := strings.Split(token, ".")
	tampered := parts[0] + ".eyJmYWtlIjoidHJ1ZSJ9." + parts[2]

	if _, err := ParseToken(tampered); err == nil {
		t.Error("Expected tampered token to be rejected")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	setTestSecret()

	user := &User{ID: 1, Username: "testuser"}
	token, _ := GenerateAccessToken(user, time.Hour)

	sharedJWTSecret = []byte("a-completely-different-secret-value-here")
	defer setTestSecret()

	if _, err := ParseToken(token); err == nil {
		t.Error("Expected token signed with another secret to be rejected")
	}
}

func TestEmailFromToken_Success(t *testing.T) {
	setTestSecret()

	token, err := GenerateEmailToken("test@example.com")
	if err != nil {
		t.Fatalf("GenerateEmailToken failed: %v", err)
	}

	email, err := EmailFromToken(token, ScopeEmail)
	if err != nil {
		t.Fatalf("EmailFromToken failed: %v", err)
	}
	if email != "test@example.com" {
		t.Errorf("Expected 'test@example.com', got '%s'", email)
	}
}

func TestEmailFromToken_WrongScope(t *testing.T) {
	setTestSecret()

	user := &User{ID: 1, Username: "testuser"}
	token, _ := GenerateAccessToken(user, time.Hour)

	if _, err := EmailFromToken(token, ScopeEmail); err == nil {
		t.Error("Expected access token to be rejected for email scope")
	}
}

func TestResetToken_CarriesPassword(t *testing.T) {
	setTestSecret()

	token, err := GenerateResetToken("test@example.com", "bcrypt-hash-here", 30*time.Minute)
	if err != nil {
		t.Fatalf("GenerateResetToken failed: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}

	if claims.Scope != ScopeReset {
		t.Errorf("Expected scope '%s', got '%s'", ScopeReset, claims.Scope)
	}
	if claims.Subject != "test@example.com" {
		t.Errorf("Expected subject 'test@example.com', got '%s'", claims.Subject)
	}
	if claims.Password != "bcrypt-hash-here" {
		t.Errorf("Expected password hash in claims, got '%s'", claims.Password)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret-password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if hash == "secret-password" {
		t.Error("Hash must differ from the plaintext password")
	}
	if !CheckPassword("secret-password", hash) {
		t.Error("Expected matching password to verify")
	}
	if CheckPassword("wrong-password", hash) {
		t.Error("Expected mismatched password to fail")
	}
}

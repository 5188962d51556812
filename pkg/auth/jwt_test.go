package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/yourusername/teamflow/pkg/config"
)

func testManager() *JWTManager {
	return NewJWTManager(&config.JWTConfig{
		Secret:           "test-secret",
		AccessExpiresIn:  15 * time.Minute,
		RefreshExpiresIn: 24 * time.Hour,
		Issuer:           "teamflow",
	})
}

func TestGenerateAndVerifyToken(t *testing.T) {
	m := testManager()

	token, expiration, err := m.GenerateToken("u1", "user@example.com", "member", AccessToken)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if time.Until(expiration) > 15*time.Minute {
		t.Errorf("expiration = %v, want не дальше срока access токена", expiration)
	}

	claims, err := m.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
	if claims.UserID != "u1" || claims.Role != "member" || claims.Type != string(AccessToken) {
		t.Errorf("Claims = %+v, want исходные данные пользователя", claims)
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	m := testManager()

	if _, err := m.VerifyToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyToken() error = %v, want %v", err, ErrInvalidToken)
	}
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	m := NewJWTManager(&config.JWTConfig{
		Secret:           "test-secret",
		AccessExpiresIn:  -time.Minute,
		RefreshExpiresIn: 24 * time.Hour,
		Issuer:           "teamflow",
	})

	token, _, err := m.GenerateToken("u1", "user@example.com", "member", AccessToken)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, err := m.VerifyToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("VerifyToken() error = %v, want %v", err, ErrExpiredToken)
	}
}

func TestRefreshTokensRejectsAccessToken(t *testing.T) {
	m := testManager()

	accessToken, _, err := m.GenerateToken("u1", "user@example.com", "member", AccessToken)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, _, err := m.RefreshTokens(accessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("RefreshTokens() error = %v, want %v", err, ErrInvalidToken)
	}
}

func TestRefreshTokensIssuesNewPair(t *testing.T) {
	m := testManager()

	_, refreshToken, err := m.GenerateTokenPair("u1", "user@example.com", "member")
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}

	accessToken, newRefresh, err := m.RefreshTokens(refreshToken)
	if err != nil {
		t.Fatalf("RefreshTokens() error = %v", err)
	}
	if accessToken == "" || newRefresh == "" {
		t.Error("RefreshTokens() вернул пустой токен")
	}

	claims, err := m.VerifyToken(accessToken)
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
	if claims.Type != string(AccessToken) {
		t.Errorf("Type = %q, want %q", claims.Type, AccessToken)
	}
}

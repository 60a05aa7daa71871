package service

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sabordaterra/loja/internal/config"
	"github.com/sabordaterra/loja/internal/domain"
)

func createTestJWTService() JWTService {
	cfg := &config.Config{}
	cfg.App.Name = "loja-test"
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.AccessTokenTTL = 15 * time.Minute
	cfg.JWT.RefreshTokenTTL = 7 * 24 * time.Hour
	return NewJWTService(cfg, zap.NewNop())
}

func testUser() *domain.User {
	return &domain.User{
		ID:       7,
		Username: "mariana",
		Role:     domain.UserRoleUser,
		IsActive: true,
	}
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	service := createTestJWTService()

	pair, err := service.GenerateTokenPair(testUser())
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("Expected non-empty tokens")
	}

	claims, err := service.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken failed: %v", err)
	}
	if claims.UserID != 7 || claims.Username != "mariana" {
		t.Errorf("Unexpected claims: %+v", claims)
	}
	if claims.Type != "access" {
		t.Errorf("Expected access token type, got %s", claims.Type)
	}
}

func TestJWTService_TokenTypeMismatch(t *testing.T) {
	service := createTestJWTService()

	pair, err := service.GenerateTokenPair(testUser())
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}

	// 刷新令牌不能当访问令牌使用
	if _, err := service.ValidateAccessToken(pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
	if _, err := service.ValidateRefreshToken(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTService_InvalidToken(t *testing.T) {
	service := createTestJWTService()

	if _, err := service.ValidateAccessToken("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTService_RefreshTokenPair(t *testing.T) {
	service := createTestJWTService()

	pair, err := service.GenerateTokenPair(testUser())
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}

	newPair, err := service.RefreshTokenPair(pair.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshTokenPair failed: %v", err)
	}

	claims, err := service.ValidateAccessToken(newPair.AccessToken)
	if err != nil {
		t.Fatalf("New access token invalid: %v", err)
	}
	if claims.UserID != 7 {
		t.Errorf("Expected user_id 7, got %d", claims.UserID)
	}

	// 访问令牌不能用来刷新
	if _, err := service.RefreshTokenPair(pair.AccessToken); err == nil {
		t.Error("Expected refresh with access token to fail")
	}
}

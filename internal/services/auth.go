package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/temcen/wardrobe/internal/config"
	"github.com/temcen/wardrobe/pkg/models"
)

const tokenIssuer = "github.com/temcen/wardrobe"

type AuthService struct {
	tokenTTL    time.Duration
	logger      *logrus.Logger
	redisClient *redis.Client
	jwtSecret   []byte
}

// NewAuthService builds the token service. Sessions are tracked in Redis when a
// client is given; without one, any validly signed unexpired token is accepted.
func NewAuthService(cfg config.AuthConfig, logger *logrus.Logger, redisClient *redis.Client) *AuthService {
	return &AuthService{
		tokenTTL:    cfg.TokenTTL,
		logger:      logger,
		redisClient: redisClient,
		jwtSecret:   []byte(cfg.JWTSecret),
	}
}

func sessionKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("session:%s", ownerID)
}

func (s *AuthService) GenerateToken(ctx context.Context, ownerID uuid.UUID) (string, error) {
	now := time.Now()
	claims := &models.JWTClaims{
		OwnerID: ownerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	if s.redisClient != nil {
		if err := s.redisClient.Set(ctx, sessionKey(ownerID), tokenString, s.tokenTTL).Err(); err != nil {
			s.logger.WithError(err).Warn("Failed to store session in Redis")
		}
	}

	return tokenString, nil
}

func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.OwnerID == uuid.Nil {
		return nil, fmt.Errorf("%w: invalid token claims", models.ErrUnauthorized)
	}

	if s.redisClient != nil {
		exists, err := s.redisClient.Exists(ctx, sessionKey(claims.OwnerID)).Result()
		if err != nil {
			s.logger.WithError(err).Warn("Failed to check session in Redis")
		} else if exists == 0 {
			return nil, fmt.Errorf("%w: session not found or expired", models.ErrUnauthorized)
		}
	}

	return claims, nil
}

func (s *AuthService) RevokeToken(ctx context.Context, ownerID uuid.UUID) error {
	if s.redisClient == nil {
		return nil
	}
	if err := s.redisClient.Del(ctx, sessionKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

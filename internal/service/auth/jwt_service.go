package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/appinventor-skill/pkg/config"
)

// RoleOperator is the only role allowed to read the report audit trail.
const RoleOperator = "operator"

var ErrMissingSecret = errors.New("jwt secret not configured")

// Claims represents the custom JWT claims used by the admin API.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// JWTService issues and validates HS256 tokens for the admin API.
type JWTService struct {
	secret   []byte
	duration time.Duration
	issuer   string
	log      *zap.Logger
}

// NewJWTService creates a new JWTService instance.
func NewJWTService(cfg config.JWTConfig, log *zap.Logger) (*JWTService, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	duration := cfg.TokenDuration
	if duration <= 0 {
		duration = time.Hour
	}

	log.Info("JWT service initialized",
		zap.Duration("token_duration", duration),
		zap.String("issuer", cfg.Issuer),
	)

	return &JWTService{
		secret:   []byte(cfg.Secret),
		duration: duration,
		issuer:   cfg.Issuer,
		log:      log,
	}, nil
}

// GenerateToken creates a signed token for subject with the given role.
func (s *JWTService) GenerateToken(subject, role string) (string, error) {
	jti := uuid.New().String()
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jti,
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.secret)
	if err != nil {
		s.log.Error("failed to sign token",
			zap.String("subject", subject),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	s.log.Debug("token generated",
		zap.String("subject", subject),
		zap.String("jti", jti),
	)

	return signedToken, nil
}

// ValidateToken parses and validates a token string, returning its claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		s.log.Debug("token validation failed", zap.Error(err))
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	s.log.Debug("token validated",
		zap.String("subject", claims.Subject),
		zap.String("jti", claims.ID),
	)

	return claims, nil
}

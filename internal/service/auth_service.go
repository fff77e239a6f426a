package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"invoicebridge/internal/config"
	"invoicebridge/internal/domain"
)

// accessAudience is the audience of every token this service issues.
const accessAudience = "access"

// Claims represents the JWT claims with tenant context.
type Claims struct {
	jwt.RegisteredClaims
	TenantID uuid.UUID       `json:"tenant_id"`
	UserID   uuid.UUID       `json:"user_id"`
	Email    string          `json:"email"`
	Role     domain.UserRole `json:"role"`
}

// TokenInput is the DTO for issuing an access token. Users and tenants live in
// the identity service; this service only signs and checks tokens.
type TokenInput struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Email    string
	Role     domain.UserRole
	// TTL overrides the configured access token expiry when positive.
	TTL time.Duration
}

// AccessToken is a signed token and its expiry.
type AccessToken struct {
	Token     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthService defines the authentication contract.
type AuthService interface {
	GenerateToken(input TokenInput) (*AccessToken, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	cfg config.JWTConfig
	now func() time.Time
}

// NewAuthService creates a new AuthService implementation.
func NewAuthService(cfg config.JWTConfig) AuthService {
	return &authService{cfg: cfg, now: time.Now}
}

func (s *authService) GenerateToken(input TokenInput) (*AccessToken, error) {
	if input.TenantID == uuid.Nil || input.UserID == uuid.Nil {
		return nil, fmt.Errorf("auth.GenerateToken: tenant and user are required")
	}
	role := input.Role
	if role == "" {
		role = domain.RoleMember
	}
	ttl := s.cfg.AccessTokenExpiry
	if input.TTL > 0 {
		ttl = input.TTL
	}

	now := s.now()
	expiry := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   input.UserID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{accessAudience},
		},
		TenantID: input.TenantID,
		UserID:   input.UserID,
		Email:    input.Email,
		Role:     role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}
	return &AccessToken{Token: signed, ExpiresAt: expiry}, nil
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithAudience(accessAudience), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	if claims.TenantID == uuid.Nil || claims.UserID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

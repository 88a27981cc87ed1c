package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers both unknown usernames and wrong passwords,
// so the response cannot be used to probe for accounts.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// ErrInvalidToken indicates an unparsable, forged or expired token.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims is the JWT payload shared by access and refresh tokens.
type Claims struct {
	UserID   uuid.UUID     `json:"user_id"`
	Username string        `json:"username"`
	RoleID   uuid.NullUUID `json:"role_id"`
	RoleName string        `json:"role"`
	jwt.RegisteredClaims
}

// TokenConfig carries the signing material for both token kinds.
type TokenConfig struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
}

// TokenPair is the login/refresh response payload.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Service wraps authentication business rules: credential verification and
// JWT issuance/parsing.
type Service struct {
	repo   Repository
	tokens TokenConfig
	now    func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, tokens TokenConfig) *Service {
	return &Service{repo: repo, tokens: tokens, now: time.Now}
}

// WithNow overrides the clock for tests.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Authenticate validates username/password credentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// IssueTokens signs a fresh access/refresh token pair for the user.
func (s *Service) IssueTokens(user *User) (TokenPair, error) {
	access, err := s.sign(user, s.tokens.AccessSecret, s.tokens.AccessTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("auth: sign access token: %w", err)
	}
	refresh, err := s.sign(user, s.tokens.RefreshSecret, s.tokens.RefreshTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("auth: sign refresh token: %w", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ParseAccess verifies an access token and returns its claims.
func (s *Service) ParseAccess(token string) (*Claims, error) {
	return s.parse(token, s.tokens.AccessSecret)
}

// Refresh verifies a refresh token and issues a new pair for the same
// identity, re-reading the user so revoked accounts or role changes take
// effect immediately.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.parse(refreshToken, s.tokens.RefreshSecret)
	if err != nil {
		return TokenPair{}, err
	}
	user, err := s.repo.FindByUsername(ctx, claims.Username)
	if err != nil {
		return TokenPair{}, ErrInvalidToken
	}
	return s.IssueTokens(user)
}

func (s *Service) sign(user *User, secret string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RoleID:   user.RoleID,
		RoleName: user.RoleName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   user.Username,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (s *Service) parse(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

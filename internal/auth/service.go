package auth

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kdiomande/courrier-registry/internal"
	"golang.org/x/crypto/bcrypt"
)

// AccountRepository defines the credential lookups the service needs.
type AccountRepository interface {
	GetByEmail(email string) (*Account, error)
}

// TokenGenerator issues and validates the bearer tokens carried by API
// callers.
type TokenGenerator interface {
	GenerateAccessToken(userID int64) (string, error)
	GenerateRefreshToken(userID int64) (string, error)
	ValidateAccessToken(token string) (int64, error)
	ValidateRefreshToken(token string) (int64, error)
}

type Service struct {
	accounts AccountRepository
	tokens   TokenGenerator
	logger   *slog.Logger
}

func NewService(accounts AccountRepository, tokens TokenGenerator, logger *slog.Logger) *Service {
	return &Service{accounts: accounts, tokens: tokens, logger: logger}
}

// Authenticate verifies credentials and returns a token pair whose subject
// is the directory user id.
func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	account, err := s.accounts.GetByEmail(dto.Email)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(dto.Password)); err != nil {
		s.logger.Warn("failed login attempt", "email", dto.Email)
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	return s.issueTokens(account.UserID)
}

// Refresh validates a refresh token and issues a fresh pair.
func (s *Service) Refresh(refreshToken string) (AuthTokens, error) {
	userID, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidToken
	}
	return s.issueTokens(userID)
}

// ResolveCaller maps a bearer token to the directory user id.
func (s *Service) ResolveCaller(accessToken string) (int64, error) {
	userID, err := s.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		return 0, internal.ErrInvalidToken
	}
	return userID, nil
}

func (s *Service) issueTokens(userID int64) (AuthTokens, error) {
	access, err := s.tokens.GenerateAccessToken(userID)
	if err != nil {
		return AuthTokens{}, internal.NewPersistenceError("failed to issue access token", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(userID)
	if err != nil {
		return AuthTokens{}, internal.NewPersistenceError("failed to issue refresh token", err)
	}
	return AuthTokens{AccessToken: access, RefreshToken: refresh}, nil
}

// JWTTokenGenerator signs HMAC tokens with separate access and refresh
// secrets.
type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

func (g *JWTTokenGenerator) GenerateAccessToken(userID int64) (string, error) {
	return g.generate(userID, g.AccessTokenTTL, g.AccessTokenSecret)
}

func (g *JWTTokenGenerator) GenerateRefreshToken(userID int64) (string, error) {
	return g.generate(userID, g.RefreshTokenTTL, g.RefreshTokenSecret)
}

func (g *JWTTokenGenerator) ValidateAccessToken(token string) (int64, error) {
	return g.validate(token, g.AccessTokenSecret)
}

func (g *JWTTokenGenerator) ValidateRefreshToken(token string) (int64, error) {
	return g.validate(token, g.RefreshTokenSecret)
}

func (g *JWTTokenGenerator) generate(userID int64, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (g *JWTTokenGenerator) validate(raw string, secret []byte) (int64, error) {
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return 0, fmt.Errorf("missing subject claim")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed subject claim: %w", err)
	}
	return userID, nil
}

package services

import (
	"fmt"
	"time"

	"kontak/internal/apperrors"
	"kontak/internal/config"

	"github.com/dgrijalva/jwt-go"
)

// Scope marker carried by verification tokens so a token minted for one
// purpose cannot be replayed as another.
const scopeEmailVerification = "email_verification"

// TokenService mints and decodes the signed, time-limited tokens used by
// the auth flow: short-lived access tokens, longer-lived refresh tokens and
// medium-lived email-verification tokens. All are HS256 over a shared
// secret held in configuration.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	verifyTTL  time.Duration
}

// NewTokenService creates a new TokenService from the JWT configuration.
func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{
		secret:     []byte(cfg.Secret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		verifyTTL:  cfg.VerificationTokenTTL,
	}
}

// CreateAccessToken mints a short-lived token whose subject is the username.
func (s *TokenService) CreateAccessToken(username string) (string, error) {
	return s.sign(jwt.MapClaims{
		"sub": username,
		"exp": time.Now().Add(s.accessTTL).Unix(),
		"iat": time.Now().Unix(),
	})
}

// CreateRefreshToken mints a longer-lived token with the same claim shape
// as an access token.
func (s *TokenService) CreateRefreshToken(username string) (string, error) {
	return s.sign(jwt.MapClaims{
		"sub": username,
		"exp": time.Now().Add(s.refreshTTL).Unix(),
		"iat": time.Now().Unix(),
	})
}

// CreateVerificationToken mints a token proving control of an email
// address. It carries a scope marker so it cannot pass for an access token.
func (s *TokenService) CreateVerificationToken(email string) (string, error) {
	return s.sign(jwt.MapClaims{
		"sub":   email,
		"scope": scopeEmailVerification,
		"exp":   time.Now().Add(s.verifyTTL).Unix(),
		"iat":   time.Now().Unix(),
	})
}

// DecodeAccessToken verifies signature and expiry and returns the subject
// username. Refresh tokens share the access claim shape and decode here
// too; verification tokens are rejected by their scope marker.
func (s *TokenService) DecodeAccessToken(tokenString string) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", err
	}
	if scope, _ := claims["scope"].(string); scope == scopeEmailVerification {
		return "", fmt.Errorf("%w: verification token used as access token", apperrors.ErrInvalidToken)
	}
	return s.subject(claims)
}

// DecodeVerificationToken verifies signature, expiry and the verification
// scope, and returns the subject email.
func (s *TokenService) DecodeVerificationToken(tokenString string) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", err
	}
	if scope, _ := claims["scope"].(string); scope != scopeEmailVerification {
		return "", fmt.Errorf("%w: missing verification scope", apperrors.ErrInvalidToken)
	}
	return s.subject(claims)
}

func (s *TokenService) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (s *TokenService) parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

func (s *TokenService) subject(claims jwt.MapClaims) (string, error) {
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("%w: missing subject", apperrors.ErrInvalidToken)
	}
	return sub, nil
}

package services

import (
	"errors"
	"time"

	"simple-chats/config"
	chats_errors "simple-chats/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService issues and verifies signed, timestamped tokens carrying a
// user id. Password-reset and API-auth tokens share the mechanism but
// have independently configured default expirations; both can be
// overridden per call.
type TokenService struct {
	secret   []byte
	resetTTL time.Duration
	authTTL  time.Duration
}

func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		secret:   []byte(cfg.SecretKey),
		resetTTL: time.Duration(cfg.ResetTokenExpiryMin) * time.Minute,
		authTTL:  time.Duration(cfg.AuthTokenExpiryMin) * time.Minute,
	}
}

type tokenClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

func (s *TokenService) IssueResetToken(userID int64, ttl ...time.Duration) (string, error) {
	return s.issue(userID, pickTTL(s.resetTTL, ttl))
}

func (s *TokenService) IssueAuthToken(userID int64, ttl ...time.Duration) (string, error) {
	return s.issue(userID, pickTTL(s.authTTL, ttl))
}

func (s *TokenService) issue(userID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify returns the embedded user id. Expiration and signature failures
// are reported as distinct errors so callers can branch: an expired token
// is user-recoverable, a malformed or forged one is a hard reject.
func (s *TokenService) Verify(tokenString string) (int64, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, chats_errors.ErrTokenInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, chats_errors.ErrTokenExpired
		}
		return 0, chats_errors.ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return 0, chats_errors.ErrTokenInvalid
	}
	return claims.UserID, nil
}

func pickTTL(fallback time.Duration, override []time.Duration) time.Duration {
	if len(override) > 0 {
		return override[0]
	}
	return fallback
}

package services

import (
	"cinestream/config"
	"cinestream/internal/models"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "cinestream"

var ErrInvalidToken = errors.New("invalid or expired token")

type IssuedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AuthService issues and verifies HS256 bearer tokens whose subject is the user id.
type AuthService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	log    logger.Logger
}

func NewAuthService(cfg config.Config) *AuthService {
	return &AuthService{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.JWTTTL(),
		now:    time.Now,
		log:    logger.New("AuthService"),
	}
}

func (s *AuthService) IssueToken(user *models.User) (IssuedToken, error) {
	log := s.log.Function("IssueToken")

	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)

	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return IssuedToken{}, log.Err("failed to sign token", err, "userID", user.ID)
	}

	return IssuedToken{Token: signed, ExpiresAt: expiresAt}, nil
}

// ParseToken verifies the signature, issuer and expiry and returns the user id.
func (s *AuthService) ParseToken(ctx context.Context, tokenString string) (uint, error) {
	log := s.log.Function("ParseToken").TraceFromContext(ctx)

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		log.Debug("Rejected bearer token", "error", err)
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		log.Debug("Rejected bearer token subject", "subject", claims.Subject)
		return 0, ErrInvalidToken
	}

	return uint(userID), nil
}

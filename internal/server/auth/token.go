package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/openreach/cms-server/internal/common"
)

// Token type discriminators. Refresh tokens are not issued by this service;
// the constant reserves the claim value so the two can never collide.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// AccessClaims is the claim set carried by an access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Type   string `json:"type"`
}

// TokenService signs and verifies access tokens with a process-wide HS256
// secret. It holds no per-request state.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	return &TokenService{secret: secret, ttl: ttl}
}

// IssueAccessToken signs a token for the given identity, valid for the
// configured lifetime from now.
func (s *TokenService) IssueAccessToken(userID, email, name string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: userID,
		Email:  email,
		Name:   name,
		Type:   TokenTypeAccess,
	})

	return token.SignedString(s.secret)
}

// VerifyAccessToken parses and validates a token string. The signing method
// is pinned to HS256 to rule out algorithm-confusion attacks, and a token
// whose type claim is not "access" is rejected even with a valid signature.
// All failure modes collapse to common.ErrInvalidToken.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Type != TokenTypeAccess || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

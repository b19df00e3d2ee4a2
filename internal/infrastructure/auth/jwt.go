package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/garyjia/field-service/internal/application/port"
	"github.com/garyjia/field-service/internal/domain/entity"
)

// ErrInvalidToken is returned for any token that fails verification
var ErrInvalidToken = errors.New("invalid token")

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Config holds token signing settings
type Config struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// claims is the JWT payload
type claims struct {
	UserID    int64       `json:"user_id"`
	Role      entity.Role `json:"role"`
	TokenType string      `json:"token_type"`
	jwt.RegisteredClaims
}

// JWTIssuer implements port.TokenIssuer with HS256 tokens
type JWTIssuer struct {
	cfg Config
	now func() time.Time
}

// NewJWTIssuer creates a new JWTIssuer
func NewJWTIssuer(cfg Config) *JWTIssuer {
	return &JWTIssuer{cfg: cfg, now: time.Now}
}

// Issue creates an access and a refresh token for the user
func (j *JWTIssuer) Issue(user *entity.User) (*port.TokenPair, error) {
	now := j.now()
	accessExp := now.Add(j.cfg.AccessTTL)
	refreshExp := now.Add(j.cfg.RefreshTTL)

	access, err := j.sign(user, tokenTypeAccess, now, accessExp)
	if err != nil {
		return nil, err
	}
	refresh, err := j.sign(user, tokenTypeRefresh, now, refreshExp)
	if err != nil {
		return nil, err
	}

	return &port.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// ParseAccess verifies an access token
func (j *JWTIssuer) ParseAccess(token string) (*port.TokenClaims, error) {
	return j.parse(token, tokenTypeAccess)
}

// ParseRefresh verifies a refresh token
func (j *JWTIssuer) ParseRefresh(token string) (*port.TokenClaims, error) {
	return j.parse(token, tokenTypeRefresh)
}

func (j *JWTIssuer) sign(user *entity.User, tokenType string, now, exp time.Time) (string, error) {
	c := &claims{
		UserID:    user.ID,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    j.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(j.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

func (j *JWTIssuer) parse(token, tokenType string) (*port.TokenClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
	}
	if j.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.cfg.Issuer))
	}

	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		return []byte(j.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || c.TokenType != tokenType || c.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return &port.TokenClaims{UserID: c.UserID, Role: c.Role}, nil
}

// Verify interface compliance
var _ port.TokenIssuer = (*JWTIssuer)(nil)

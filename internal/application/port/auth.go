package port

import (
	"time"

	"github.com/garyjia/field-service/internal/domain/entity"
)

// TokenPair is the credential set returned on login
type TokenPair struct {
	AccessToken      string    `json:"access"`
	RefreshToken     string    `json:"refresh"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// TokenClaims is what a verified token asserts about its holder
type TokenClaims struct {
	UserID int64
	Role   entity.Role
}

// TokenIssuer issues and verifies bearer tokens
type TokenIssuer interface {
	Issue(user *entity.User) (*TokenPair, error)
	ParseAccess(token string) (*TokenClaims, error)
	ParseRefresh(token string) (*TokenClaims, error)
}

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

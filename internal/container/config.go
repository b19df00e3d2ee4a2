// Package container provides dependency injection and lifecycle management
// for the field service backend.
package container

import (
	"fmt"
	"time"
)

// Config holds all configuration for the Container.
// It aggregates configurations for all subsystems.
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Token and identity configuration
	Auth AuthConfig

	// Proof storage configuration
	Storage StorageConfig

	// Server configuration
	Server ServerConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime
	ConnMaxLifetime time.Duration

	// BusyTimeout is how long a writer waits for the database lock
	BusyTimeout time.Duration
}

// AuthConfig holds token signing and identity settings.
type AuthConfig struct {
	JWTSecret  string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// BcryptCost of zero selects the library default
	BcryptCost int

	// AllowAdminRegistration lets the public registration endpoint create admins
	AllowAdminRegistration bool

	// AdminUsername and AdminPassword bootstrap an admin account on start
	AdminUsername string
	AdminPassword string
}

// StorageConfig holds proof file storage settings.
type StorageConfig struct {
	// ProofDir is the base directory for uploaded proof files
	ProofDir string

	// MaxUploadSize is the largest accepted proof file in bytes
	MaxUploadSize int64
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string
	Port           int
	Mode           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            "data/field_service.db",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			BusyTimeout:     5 * time.Second,
		},
		Auth: AuthConfig{
			Issuer:     "field-service",
			AccessTTL:  60 * time.Minute,
			RefreshTTL: 24 * time.Hour,
		},
		Storage: StorageConfig{
			ProofDir:      "media",
			MaxUploadSize: 10 << 20,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			Mode:         "release",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		return fmt.Errorf("auth token lifetimes must be positive")
	}

	if c.Storage.ProofDir == "" {
		return fmt.Errorf("storage.proof_dir is required")
	}

	return nil
}

package config

import (
	"github.com/garyjia/field-service/internal/container"
)

// ToContainerConfig converts the application Config to a container.Config.
// This provides a bridge between the file-based config loaded by viper
// and the container's configuration structure.
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
			BusyTimeout:     c.Database.BusyTimeout,
		},
		Auth: container.AuthConfig{
			JWTSecret:              c.Auth.JWTSecret,
			Issuer:                 c.Auth.Issuer,
			AccessTTL:              c.Auth.AccessTTL,
			RefreshTTL:             c.Auth.RefreshTTL,
			BcryptCost:             c.Auth.BcryptCost,
			AllowAdminRegistration: c.Auth.AllowAdminRegistration,
			AdminUsername:          c.Auth.AdminUsername,
			AdminPassword:          c.Auth.AdminPassword,
		},
		Storage: container.StorageConfig{
			ProofDir:      c.Storage.ProofDir,
			MaxUploadSize: c.Storage.MaxUploadSize,
		},
		Server: container.ServerConfig{
			Host:           c.Server.Host,
			Port:           c.Server.Port,
			Mode:           c.Server.Mode,
			ReadTimeout:    c.Server.ReadTimeout,
			WriteTimeout:   c.Server.WriteTimeout,
			AllowedOrigins: c.Server.AllowedOrigins,
		},
	}
}

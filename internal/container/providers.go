package container

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/garyjia/field-service/internal/application/dispatcher"
	"github.com/garyjia/field-service/internal/application/port"
	"github.com/garyjia/field-service/internal/application/service"
	"github.com/garyjia/field-service/internal/infrastructure/auth"
	"github.com/garyjia/field-service/internal/infrastructure/persistence/repository"
	"github.com/garyjia/field-service/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/field-service/internal/infrastructure/storage"
	"github.com/garyjia/field-service/pkg/database"
	"github.com/garyjia/field-service/pkg/utils"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.DB
}

// AuthBundle holds the credential components.
type AuthBundle struct {
	Tokens port.TokenIssuer
	Hasher port.PasswordHasher
}

// ServiceDeps holds dependencies for creating services.
type ServiceDeps struct {
	Repos      *RepositoryBundle
	TxManager  port.TransactionManager
	Storage    port.FileStorage
	Auth       *AuthBundle
	Dispatcher dispatcher.Dispatcher
	AuthCfg    *AuthConfig
	Logger     *zap.Logger
}

// ProvideDatabase opens the database and applies pending migrations.
func ProvideDatabase(ctx context.Context, cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		BusyTimeout:     cfg.BusyTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(db, logger).Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(db *database.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		User:           repository.NewUserRepository(db.DB, logger),
		ServiceRequest: repository.NewServiceRequestRepository(db.DB, logger),
		Task:           repository.NewTaskRepository(db.DB, logger),
	}, nil
}

// ProvideStorage creates the proof file storage.
func ProvideStorage(cfg *StorageConfig, logger *zap.Logger) (port.FileStorage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage config is required")
	}
	if cfg.ProofDir == "" {
		return nil, fmt.Errorf("proof directory is required")
	}

	return storage.NewLocalFileStorage(cfg.ProofDir, cfg.MaxUploadSize, logger), nil
}

// ProvideAuth creates the token issuer and password hasher.
func ProvideAuth(cfg *AuthConfig) (*AuthBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("auth config is required")
	}

	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range", cost)
	}

	return &AuthBundle{
		Tokens: auth.NewJWTIssuer(auth.Config{
			Secret:     cfg.JWTSecret,
			Issuer:     cfg.Issuer,
			AccessTTL:  cfg.AccessTTL,
			RefreshTTL: cfg.RefreshTTL,
		}),
		Hasher: auth.NewBcryptHasher(cost),
	}, nil
}

// ProvideDispatcher creates the event dispatcher and subscribes the lifecycle logger.
func ProvideDispatcher(logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	kv := utils.NewKVLogger(logger)
	disp := dispatcher.NewDispatcher(dispatcher.WithLogger(kv))
	disp.Subscribe("lifecycle-logger", dispatcher.LoggingHandler(kv))

	return disp, nil
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.Repos == nil || deps.TxManager == nil || deps.Storage == nil || deps.Auth == nil || deps.AuthCfg == nil {
		return nil, fmt.Errorf("incomplete service dependencies")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	logger := utils.NewKVLogger(deps.Logger)
	repos := deps.Repos

	users := service.NewUserService(
		repos.User,
		deps.Auth.Hasher,
		deps.Auth.Tokens,
		service.UserServiceConfig{AllowAdminRegistration: deps.AuthCfg.AllowAdminRegistration},
		deps.Dispatcher,
		logger,
	)

	return &ServiceBundle{
		Users:       users,
		Requests:    service.NewRequestService(repos.ServiceRequest, repos.Task, deps.Storage, deps.TxManager, deps.Dispatcher, logger),
		Assignments: service.NewAssignmentService(repos.ServiceRequest, repos.Task, users, deps.TxManager, deps.Dispatcher, logger),
		Tasks:       service.NewTaskService(repos.Task, repos.ServiceRequest, deps.Storage, deps.TxManager, deps.Dispatcher, logger),
		Dashboard:   service.NewDashboardService(repos.User, repos.ServiceRequest, repos.Task, logger),
	}, nil
}

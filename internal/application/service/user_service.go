package service

import (
	"context"
	"errors"
	"strings"

	"github.com/garyjia/field-service/internal/application/port"
	"github.com/garyjia/field-service/internal/domain/apperror"
	"github.com/garyjia/field-service/internal/domain/entity"
	"github.com/garyjia/field-service/internal/domain/event"
	"github.com/garyjia/field-service/pkg/utils"
)

// ErrUnauthenticated is returned when a bearer token is missing, invalid or
// belongs to a user who can no longer sign in
var ErrUnauthenticated = errors.New("authentication credentials were not provided or are invalid")

const minPasswordLength = 8

// UserService manages identities, credentials and approvals
type UserService interface {
	IdentityLookup

	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*port.TokenPair, error)
	Authenticate(ctx context.Context, accessToken string) (entity.Principal, error)
	EnsureAdmin(ctx context.Context, username, password string) (*entity.User, error)

	GetProfile(ctx context.Context, p entity.Principal) (*entity.User, error)
	UpdateProfile(ctx context.Context, p entity.Principal, input ProfileInput) (*entity.User, error)

	ListUsers(ctx context.Context, p entity.Principal, filter UserListFilter) ([]*entity.User, error)
	ApproveFieldWorker(ctx context.Context, p entity.Principal, id int64) (*entity.User, error)
	RejectFieldWorker(ctx context.Context, p entity.Principal, id int64) (*entity.User, error)
	ToggleActive(ctx context.Context, p entity.Principal, id int64) (*entity.User, error)
}

// RegisterInput holds a registration form
type RegisterInput struct {
	Username        string
	Email           string
	FirstName       string
	LastName        string
	Password        string
	PasswordConfirm string
	Role            string
	PhoneNumber     string
}

// ProfileInput holds the self-editable profile fields; nil fields stay unchanged
type ProfileInput struct {
	Email       *string
	FirstName   *string
	LastName    *string
	PhoneNumber *string
}

// UserListFilter narrows a user listing
type UserListFilter struct {
	Role   *string
	Limit  int
	Offset int
}

// AuthResult is returned on registration and login
type AuthResult struct {
	Refresh string       `json:"refresh"`
	Access  string       `json:"access"`
	User    *entity.User `json:"user"`
}

// UserServiceConfig holds identity rules that vary per deployment
type UserServiceConfig struct {
	// AllowAdminRegistration lets the public registration endpoint create admins
	AllowAdminRegistration bool
}

type userServiceImpl struct {
	userRepo port.UserRepository
	hasher   port.PasswordHasher
	tokens   port.TokenIssuer
	cfg      UserServiceConfig
	events   EventPublisher
	logger   Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo port.UserRepository,
	hasher port.PasswordHasher,
	tokens port.TokenIssuer,
	cfg UserServiceConfig,
	events EventPublisher,
	logger Logger,
) UserService {
	return &userServiceImpl{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		cfg:      cfg,
		events:   events,
		logger:   logger,
	}
}

// Register creates an identity and signs it in. Field workers start unapproved.
func (s *userServiceImpl) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, apperror.Validation("Username is required.")
	}
	if input.Password == "" {
		return nil, apperror.Validation("Password is required.")
	}
	if input.Role == "" {
		return nil, apperror.Validation("Role is required.")
	}

	role, err := entity.ParseRole(input.Role)
	if err != nil {
		return nil, apperror.Validation("%q is not a valid role.", input.Role)
	}
	if role == entity.RoleAdmin && !s.cfg.AllowAdminRegistration {
		return nil, apperror.Validation("Admin accounts cannot be registered.")
	}

	if len(input.Password) < minPasswordLength {
		return nil, apperror.Validation("This password is too short. It must contain at least %d characters.", minPasswordLength)
	}
	if input.Password != input.PasswordConfirm {
		return nil, apperror.Validation("Passwords don't match.")
	}

	phone := strings.TrimSpace(input.PhoneNumber)
	if role == entity.RoleFieldWorker && phone == "" {
		return nil, apperror.Validation("Phone number is required for field workers.")
	}
	email := strings.TrimSpace(input.Email)
	if err := validateContact(email, phone); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperror.Internal(err, "failed to hash password")
	}

	user := &entity.User{
		Username:     username,
		Email:        email,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		PhoneNumber:  phone,
		Role:         role,
		IsApproved:   role != entity.RoleFieldWorker,
		IsActive:     true,
		PasswordHash: hash,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, port.ErrDuplicate) {
			return nil, apperror.Validation("A user with that username already exists.")
		}
		s.logger.Error("Failed to register user", "username", username, "error", err)
		return nil, apperror.Internal(err, "failed to create user")
	}

	s.logger.Info("User registered", "user_id", user.ID, "username", user.Username, "role", user.Role)
	return s.signIn(user)
}

// Login verifies credentials and issues a token pair
func (s *userServiceImpl) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	if username == "" || password == "" {
		return nil, apperror.Validation("Must include username and password.")
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load user")
	}
	if user == nil || s.hasher.Compare(user.PasswordHash, password) != nil {
		s.logger.Info("Login rejected", "username", username)
		return nil, apperror.Validation("Invalid credentials.")
	}
	if !user.IsActive {
		return nil, apperror.Validation("User account is disabled.")
	}

	s.logger.Info("User logged in", "user_id", user.ID)
	return s.signIn(user)
}

// Refresh exchanges a refresh token for a new token pair
func (s *userServiceImpl) Refresh(ctx context.Context, refreshToken string) (*port.TokenPair, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperror.Internal(err, "failed to issue tokens")
	}
	return pair, nil
}

// Authenticate resolves an access token to the principal of an active user.
// The role is read from storage, not from the token.
func (s *userServiceImpl) Authenticate(ctx context.Context, accessToken string) (entity.Principal, error) {
	claims, err := s.tokens.ParseAccess(accessToken)
	if err != nil {
		return entity.Principal{}, ErrUnauthenticated
	}

	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return entity.Principal{}, err
	}
	return user.Principal(), nil
}

// EnsureAdmin creates the named admin account unless a user with that
// username already exists
func (s *userServiceImpl) EnsureAdmin(ctx context.Context, username, password string) (*entity.User, error) {
	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load user")
	}
	if existing != nil {
		return existing, nil
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperror.Internal(err, "failed to hash password")
	}

	user := &entity.User{
		Username:     username,
		Role:         entity.RoleAdmin,
		IsApproved:   true,
		IsActive:     true,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperror.Internal(err, "failed to create admin")
	}

	s.logger.Info("Admin account created", "user_id", user.ID, "username", username)
	return user, nil
}

// GetProfile returns the caller's own user record
func (s *userServiceImpl) GetProfile(ctx context.Context, p entity.Principal) (*entity.User, error) {
	return s.mustGet(ctx, p.ID, "User not found.")
}

// UpdateProfile edits the caller's contact details
func (s *userServiceImpl) UpdateProfile(ctx context.Context, p entity.Principal, input ProfileInput) (*entity.User, error) {
	user, err := s.mustGet(ctx, p.ID, "User not found.")
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		user.Email = strings.TrimSpace(*input.Email)
	}
	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.PhoneNumber != nil {
		phone := strings.TrimSpace(*input.PhoneNumber)
		if user.Role == entity.RoleFieldWorker && phone == "" {
			return nil, apperror.Validation("Phone number is required for field workers.")
		}
		user.PhoneNumber = phone
	}
	if err := validateContact(user.Email, user.PhoneNumber); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update profile", "user_id", p.ID, "error", err)
		return nil, apperror.Internal(err, "failed to update profile")
	}
	return user, nil
}

// ListUsers returns all users to admins and nothing to anyone else
func (s *userServiceImpl) ListUsers(ctx context.Context, p entity.Principal, filter UserListFilter) ([]*entity.User, error) {
	if !p.IsAdmin() {
		return []*entity.User{}, nil
	}

	limit, offset := pageLimits(filter.Limit, filter.Offset)
	repoFilter := port.UserFilter{Limit: limit, Offset: offset}
	if filter.Role != nil {
		role, err := entity.ParseRole(*filter.Role)
		if err != nil {
			return nil, apperror.Validation("%q is not a valid role.", *filter.Role)
		}
		repoFilter.Role = &role
	}

	users, err := s.userRepo.List(ctx, repoFilter)
	if err != nil {
		s.logger.Error("Failed to list users", "error", err)
		return nil, apperror.Internal(err, "failed to list users")
	}
	if users == nil {
		users = []*entity.User{}
	}
	return users, nil
}

// ApproveFieldWorker lets a field worker receive assignments
func (s *userServiceImpl) ApproveFieldWorker(ctx context.Context, p entity.Principal, id int64) (*entity.User, error) {
	return s.setApproval(ctx, p, id, true)
}

// RejectFieldWorker revokes a field worker's approval.
// Existing assignments are not re-validated.
func (s *userServiceImpl) RejectFieldWorker(ctx context.Context, p entity.Principal, id int64) (*entity.User, error) {
	return s.setApproval(ctx, p, id, false)
}

func (s *userServiceImpl) setApproval(ctx context.Context, p entity.Principal, id int64, approved bool) (*entity.User, error) {
	if !p.IsAdmin() {
		return nil, apperror.PermissionDenied("Permission denied.")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load user")
	}
	if user == nil || user.Role != entity.RoleFieldWorker {
		return nil, apperror.NotFound("Field worker not found.")
	}

	user.IsApproved = approved
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update approval", "user_id", id, "error", err)
		return nil, apperror.Internal(err, "failed to update user")
	}

	s.logger.Info("Field worker approval changed", "user_id", id, "approved", approved, "actor_id", p.ID)
	if approved {
		publish(ctx, s.events, s.logger, event.NewEvent(event.TypeUserApproved, user.ID, p.ID, nil))
	}
	return user, nil
}

// ToggleActive flips the active flag of any user
func (s *userServiceImpl) ToggleActive(ctx context.Context, p entity.Principal, id int64) (*entity.User, error) {
	if !p.IsAdmin() {
		return nil, apperror.PermissionDenied("Permission denied.")
	}

	user, err := s.mustGet(ctx, id, "User not found.")
	if err != nil {
		return nil, err
	}

	user.IsActive = !user.IsActive
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to toggle user", "user_id", id, "error", err)
		return nil, apperror.Internal(err, "failed to update user")
	}

	s.logger.Info("User active flag changed", "user_id", id, "active", user.IsActive, "actor_id", p.ID)
	return user, nil
}

// GetIdentity implements IdentityLookup
func (s *userServiceImpl) GetIdentity(ctx context.Context, id int64) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load user")
	}
	return user, nil
}

func (s *userServiceImpl) signIn(user *entity.User) (*AuthResult, error) {
	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperror.Internal(err, "failed to issue tokens")
	}
	return &AuthResult{Refresh: pair.RefreshToken, Access: pair.AccessToken, User: user}, nil
}

func (s *userServiceImpl) mustGet(ctx context.Context, id int64, notFound string) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load user")
	}
	if user == nil {
		return nil, apperror.NotFound("%s", notFound)
	}
	return user, nil
}

func (s *userServiceImpl) activeUser(ctx context.Context, id int64) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load user")
	}
	if user == nil || !user.IsActive {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// validateContact checks the optional contact fields of a profile
func validateContact(email, phone string) error {
	if email != "" {
		if err := utils.ValidateEmail(email); err != nil {
			return apperror.Validation("Enter a valid email address.")
		}
	}
	if err := utils.ValidatePhoneNumber(phone); err != nil {
		return apperror.Validation("Ensure the phone number has no more than %d characters.", utils.MaxPhoneNumberLength)
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/field-service/internal/application/port"
	"github.com/garyjia/field-service/internal/domain/apperror"
	"github.com/garyjia/field-service/internal/domain/entity"
	"github.com/garyjia/field-service/internal/domain/event"
)

type mockUserRepo struct {
	rows map[int64]*entity.User
}

func newMockUserRepo(users ...*entity.User) *mockUserRepo {
	m := &mockUserRepo{rows: make(map[int64]*entity.User)}
	for _, u := range users {
		cp := *u
		m.rows[u.ID] = &cp
	}
	return m
}

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error {
	for _, u := range m.rows {
		if u.Username == user.Username {
			return port.ErrDuplicate
		}
	}
	user.ID = int64(len(m.rows) + 100)
	cp := *user
	m.rows[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	u, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	for _, u := range m.rows {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *entity.User) error {
	cp := *user
	m.rows[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) List(ctx context.Context, filter port.UserFilter) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range m.rows {
		if filter.Role == nil || u.Role == *filter.Role {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockUserRepo) CountByRole(ctx context.Context) (map[entity.Role]int, error) {
	counts := make(map[entity.Role]int)
	for _, u := range m.rows {
		counts[u.Role]++
	}
	return counts, nil
}

// mockHasher prefixes passwords instead of hashing them
type mockHasher struct{}

func (mockHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (mockHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// mockTokens encodes the token type and user ID in the token text
type mockTokens struct{}

func (mockTokens) Issue(user *entity.User) (*port.TokenPair, error) {
	id := strconv.FormatInt(user.ID, 10)
	return &port.TokenPair{AccessToken: "access-" + id, RefreshToken: "refresh-" + id}, nil
}

func (mockTokens) ParseAccess(token string) (*port.TokenClaims, error) {
	return parseMockToken(token, "access-")
}

func (mockTokens) ParseRefresh(token string) (*port.TokenClaims, error) {
	return parseMockToken(token, "refresh-")
}

func parseMockToken(token, prefix string) (*port.TokenClaims, error) {
	if !strings.HasPrefix(token, prefix) {
		return nil, errors.New("invalid token")
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(token, prefix), 10, 64)
	if err != nil {
		return nil, err
	}
	return &port.TokenClaims{UserID: id}, nil
}

func newUserFixture(users ...*entity.User) (UserService, *mockUserRepo, *mockPublisher) {
	repo := newMockUserRepo(users...)
	publisher := &mockPublisher{}
	svc := NewUserService(repo, mockHasher{}, mockTokens{}, UserServiceConfig{}, publisher, &mockLogger{})
	return svc, repo, publisher
}

func validRegistration(role string) RegisterInput {
	return RegisterInput{
		Username:        "jdoe",
		Email:           "jdoe@example.com",
		Password:        "s3cret-pass",
		PasswordConfirm: "s3cret-pass",
		Role:            role,
		PhoneNumber:     "+1 555 0100",
	}
}

func TestUserService_Register(t *testing.T) {
	tests := []struct {
		role         string
		wantApproved bool
	}{
		{"customer", true},
		{"field_worker", false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			svc, repo, _ := newUserFixture()

			res, err := svc.Register(context.Background(), validRegistration(tt.role))
			require.NoError(t, err)

			assert.Equal(t, tt.wantApproved, res.User.IsApproved)
			assert.True(t, res.User.IsActive)
			assert.Equal(t, "hashed:s3cret-pass", repo.rows[res.User.ID].PasswordHash)
			assert.Equal(t, "access-"+strconv.FormatInt(res.User.ID, 10), res.Access)
			assert.NotEmpty(t, res.Refresh)
		})
	}
}

func TestUserService_RegisterRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *RegisterInput)
		wantMsg string
	}{
		{"missing username", func(in *RegisterInput) { in.Username = " " }, "Username is required."},
		{"missing role", func(in *RegisterInput) { in.Role = "" }, "Role is required."},
		{"unknown role", func(in *RegisterInput) { in.Role = "manager" }, `"manager" is not a valid role.`},
		{"admin", func(in *RegisterInput) { in.Role = "admin" }, "Admin accounts cannot be registered."},
		{"short password", func(in *RegisterInput) { in.Password, in.PasswordConfirm = "abc", "abc" }, "This password is too short. It must contain at least 8 characters."},
		{"mismatch", func(in *RegisterInput) { in.PasswordConfirm = "other-pass" }, "Passwords don't match."},
		{"worker without phone", func(in *RegisterInput) { in.Role = "field_worker"; in.PhoneNumber = "" }, "Phone number is required for field workers."},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }, "Enter a valid email address."},
		{"long phone", func(in *RegisterInput) { in.PhoneNumber = "+1 555 0100 0100 99" }, "Ensure the phone number has no more than 15 characters."},
		{"duplicate", func(in *RegisterInput) { in.Username = "taken" }, "A user with that username already exists."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newUserFixture(&entity.User{ID: 1, Username: "taken", Role: entity.RoleCustomer})
			in := validRegistration("customer")
			tt.mutate(&in)

			_, err := svc.Register(context.Background(), in)
			assert.ErrorIs(t, err, apperror.ErrValidation)
			assert.Equal(t, tt.wantMsg, apperror.MessageOf(err))
		})
	}
}

func TestUserService_Login(t *testing.T) {
	active := &entity.User{ID: 1, Username: "alice", Role: entity.RoleCustomer, IsActive: true, PasswordHash: "hashed:pw"}
	disabled := &entity.User{ID: 2, Username: "bob", Role: entity.RoleCustomer, IsActive: false, PasswordHash: "hashed:pw"}
	svc, _, _ := newUserFixture(active, disabled)
	ctx := context.Background()

	res, err := svc.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "access-1", res.Access)
	assert.Equal(t, "refresh-1", res.Refresh)
	assert.Equal(t, "alice", res.User.Username)

	tests := []struct {
		username, password, wantMsg string
	}{
		{"", "pw", "Must include username and password."},
		{"alice", "", "Must include username and password."},
		{"alice", "wrong", "Invalid credentials."},
		{"nobody", "pw", "Invalid credentials."},
		{"bob", "pw", "User account is disabled."},
	}
	for _, tt := range tests {
		_, err := svc.Login(ctx, tt.username, tt.password)
		assert.ErrorIs(t, err, apperror.ErrValidation)
		assert.Equal(t, tt.wantMsg, apperror.MessageOf(err))
	}
}

func TestUserService_AuthenticateAndRefresh(t *testing.T) {
	svc, repo, _ := newUserFixture(
		&entity.User{ID: 1, Username: "alice", Role: entity.RoleFieldWorker, IsApproved: true, IsActive: true},
	)
	ctx := context.Background()

	p, err := svc.Authenticate(ctx, "access-1")
	require.NoError(t, err)
	assert.Equal(t, entity.Principal{ID: 1, Role: entity.RoleFieldWorker, Approved: true}, p)

	_, err = svc.Authenticate(ctx, "refresh-1")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.Authenticate(ctx, "access-9")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	pair, err := svc.Refresh(ctx, "refresh-1")
	require.NoError(t, err)
	assert.Equal(t, "access-1", pair.AccessToken)

	repo.rows[1].IsActive = false
	_, err = svc.Authenticate(ctx, "access-1")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.Refresh(ctx, "refresh-1")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestUserService_Profile(t *testing.T) {
	svc, _, _ := newUserFixture(&entity.User{ID: 3, Username: "worker", Role: entity.RoleFieldWorker, PhoneNumber: "555"})
	ctx := context.Background()

	u, err := svc.UpdateProfile(ctx, worker, ProfileInput{FirstName: strPtr("Wanda"), Email: strPtr("w@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "Wanda", u.FirstName)
	assert.Equal(t, "555", u.PhoneNumber)

	_, err = svc.UpdateProfile(ctx, worker, ProfileInput{PhoneNumber: strPtr("")})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	got, err := svc.GetProfile(ctx, worker)
	require.NoError(t, err)
	assert.Equal(t, "w@example.com", got.Email)

	_, err = svc.GetProfile(ctx, stranger)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUserService_Approval(t *testing.T) {
	svc, repo, publisher := newUserFixture(
		&entity.User{ID: 2, Username: "cust", Role: entity.RoleCustomer, IsApproved: true, IsActive: true},
		&entity.User{ID: 3, Username: "work", Role: entity.RoleFieldWorker, IsActive: true},
	)
	ctx := context.Background()

	_, err := svc.ApproveFieldWorker(ctx, customer, 3)
	assert.ErrorIs(t, err, apperror.ErrPermissionDenied)
	assert.Equal(t, "Permission denied.", apperror.MessageOf(err))

	_, err = svc.ApproveFieldWorker(ctx, admin, 2)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, "Field worker not found.", apperror.MessageOf(err))

	u, err := svc.ApproveFieldWorker(ctx, admin, 3)
	require.NoError(t, err)
	assert.True(t, u.IsApproved)
	assert.True(t, repo.rows[3].IsApproved)
	assert.Equal(t, []event.Type{event.TypeUserApproved}, publisher.types())

	u, err = svc.RejectFieldWorker(ctx, admin, 3)
	require.NoError(t, err)
	assert.False(t, u.IsApproved)

	u, err = svc.ToggleActive(ctx, admin, 2)
	require.NoError(t, err)
	assert.False(t, u.IsActive)
	u, err = svc.ToggleActive(ctx, admin, 2)
	require.NoError(t, err)
	assert.True(t, u.IsActive)

	_, err = svc.ToggleActive(ctx, admin, 404)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = svc.ToggleActive(ctx, worker, 2)
	assert.ErrorIs(t, err, apperror.ErrPermissionDenied)
}

func TestUserService_ListUsers(t *testing.T) {
	svc, _, _ := newUserFixture(
		&entity.User{ID: 1, Username: "root", Role: entity.RoleAdmin},
		&entity.User{ID: 3, Username: "work", Role: entity.RoleFieldWorker},
	)
	ctx := context.Background()

	users, err := svc.ListUsers(ctx, admin, UserListFilter{})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = svc.ListUsers(ctx, admin, UserListFilter{Role: strPtr("field_worker")})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "work", users[0].Username)

	users, err = svc.ListUsers(ctx, customer, UserListFilter{})
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserService_EnsureAdmin(t *testing.T) {
	svc, repo, _ := newUserFixture()
	ctx := context.Background()

	first, err := svc.EnsureAdmin(ctx, "root", "changeme1")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, first.Role)

	second, err := svc.EnsureAdmin(ctx, "root", "ignored")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.rows, 1)
}

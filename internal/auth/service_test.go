package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetwatch/fleetwatch/internal/shared"
)

type mockUserRepo struct {
	users   map[int64]*User
	byEmail map[string]*User
	nextID  int64

	findError   error
	createError error
	updateError error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:   make(map[int64]*User),
		byEmail: make(map[string]*User),
		nextID:  1,
	}
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	if m.findError != nil {
		return nil, m.findError
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*User, error) {
	if m.findError != nil {
		return nil, m.findError
	}
	u, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user User) (*User, error) {
	if m.createError != nil {
		return nil, m.createError
	}
	if _, taken := m.byEmail[user.Email]; taken {
		return nil, ErrEmailTaken
	}
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.nextID++
	m.users[user.ID] = &user
	m.byEmail[user.Email] = &user
	copied := user
	return &copied, nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	if m.updateError != nil {
		return m.updateError
	}
	u, ok := m.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	return nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]User, error) {
	if m.findError != nil {
		return nil, m.findError
	}
	var out []User
	for id := int64(1); id < m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

var _ Repository = (*mockUserRepo)(nil)

func newTestService(repo Repository) *Service {
	return NewService(repo, NewTokenManager("test-secret", time.Hour))
}

func TestRegister(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestService(repo)

	user, token, expiresAt, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "driver@fleetwatch.local",
		Password: "Str0ng!pass",
		Name:     "Driver One",
	})
	require.NoError(t, err)

	assert.Equal(t, RoleUser, user.Role, "every registration starts as USER")
	assert.Equal(t, "driver@fleetwatch.local", user.Email)
	assert.NotEqual(t, "Str0ng!pass", user.PasswordHash)
	assert.True(t, CheckPassword(user.PasswordHash, "Str0ng!pass"))
	assert.True(t, expiresAt.After(time.Now()))

	identity, err := svc.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, string(RoleUser), identity.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestService(repo)

	req := RegisterRequest{Email: "dup@fleetwatch.local", Password: "Str0ng!pass", Name: "First"}
	_, _, _, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, _, _, err = svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestService(repo)
	registered, _, _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "driver@fleetwatch.local",
		Password: "Str0ng!pass",
		Name:     "Driver One",
	})
	require.NoError(t, err)

	user, token, _, err := svc.Login(context.Background(), LoginRequest{
		Email:    "driver@fleetwatch.local",
		Password: "Str0ng!pass",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, token)
}

func TestLoginDoesNotRevealWhichFieldFailed(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestService(repo)
	_, _, _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "known@fleetwatch.local",
		Password: "Str0ng!pass",
		Name:     "Known",
	})
	require.NoError(t, err)

	_, _, _, unknownErr := svc.Login(context.Background(), LoginRequest{
		Email:    "unknown@fleetwatch.local",
		Password: "Str0ng!pass",
	})
	_, _, _, wrongErr := svc.Login(context.Background(), LoginRequest{
		Email:    "known@fleetwatch.local",
		Password: "wrong-password",
	})

	assert.ErrorIs(t, unknownErr, shared.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, shared.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error(),
		"unknown email and wrong password must be indistinguishable")
}

func TestLoginRepositoryFailureIsNotCredentialError(t *testing.T) {
	repo := newMockUserRepo()
	repo.findError = errors.New("connection refused")
	svc := newTestService(repo)

	_, _, _, err := svc.Login(context.Background(), LoginRequest{
		Email:    "driver@fleetwatch.local",
		Password: "Str0ng!pass",
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestService(repo)
	user, _, _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "driver@fleetwatch.local",
		Password: "Old!pass1A",
		Name:     "Driver",
	})
	require.NoError(t, err)

	updated, err := svc.ChangePassword(context.Background(), user.ID, "Old!pass1A", "New!pass1A")
	require.NoError(t, err)
	assert.True(t, CheckPassword(updated.PasswordHash, "New!pass1A"))
	assert.False(t, CheckPassword(updated.PasswordHash, "Old!pass1A"))

	// The old credential no longer authenticates.
	_, _, _, err = svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "Old!pass1A"})
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	_, _, _, err = svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "New!pass1A"})
	assert.NoError(t, err)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestService(repo)
	user, _, _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "driver@fleetwatch.local",
		Password: "Old!pass1A",
		Name:     "Driver",
	})
	require.NoError(t, err)

	_, err = svc.ChangePassword(context.Background(), user.ID, "not-the-old-one", "New!pass1A")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	// Stored hash untouched after the rejected attempt.
	_, _, _, err = svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "Old!pass1A"})
	assert.NoError(t, err)
}

func TestChangePasswordKeepsTokensValid(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestService(repo)
	user, token, _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "driver@fleetwatch.local",
		Password: "Old!pass1A",
		Name:     "Driver",
	})
	require.NoError(t, err)

	_, err = svc.ChangePassword(context.Background(), user.ID, "Old!pass1A", "New!pass1A")
	require.NoError(t, err)

	// Stateless tokens survive a password change until natural expiry.
	identity, err := svc.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
}

func TestProfileNotFound(t *testing.T) {
	svc := newTestService(newMockUserRepo())

	_, err := svc.Profile(context.Background(), 999)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListUsers(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestService(repo)
	for _, email := range []string{"a@fleetwatch.local", "b@fleetwatch.local"} {
		_, _, _, err := svc.Register(context.Background(), RegisterRequest{
			Email: email, Password: "Str0ng!pass", Name: "User",
		})
		require.NoError(t, err)
	}

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a@fleetwatch.local", users[0].Email)
	assert.Equal(t, "b@fleetwatch.local", users[1].Email)
}

package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/croptrack/croptrack/internal/domain/entity"
	repo "github.com/croptrack/croptrack/internal/domain/repository"
	"github.com/croptrack/croptrack/pkg/helpers"
)

// fakeUserRepo is an in-memory UserRepository that enforces username
// uniqueness like the real table does.
type fakeUserRepo struct {
	nextID int64
	users  map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	if _, ok := f.users[u.Username]; ok {
		return repo.ErrDuplicate
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.users[u.Username] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func newUserService(r repo.UserRepository) *UserService {
	tokens := helpers.NewTokenManager("test-secret", time.Hour)
	return NewUserService(r, tokens, nil, nil, nil, false)
}

func TestRegisterThenAuthenticate(t *testing.T) {
	svc := newUserService(newFakeUserRepo())
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "secret1", "")
	require.NoError(t, err)
	require.NotZero(t, u.ID)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.True(t, helpers.CompareHashAndPassword(u.PasswordHash, "secret1"))

	got, err := svc.Authenticate(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestRegisterValidation(t *testing.T) {
	svc := newUserService(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "secret1", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register(ctx, "alice", "", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register(ctx, "   ", "secret1", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	r := newFakeUserRepo()
	svc := newUserService(r)
	ctx := context.Background()

	first, err := svc.Register(ctx, "alice", "secret1", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other", "")
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	// the first registration is unaffected
	require.Len(t, r.users, 1)
	got, err := svc.Authenticate(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	svc := newUserService(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "secret1", "")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginIssuesSessionToken(t *testing.T) {
	svc := newUserService(newFakeUserRepo())
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "secret1", "")
	require.NoError(t, err)

	got, token, exp, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.True(t, exp.After(time.Now()))

	claims, err := svc.Tokens.ParseSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.NotEmpty(t, claims.SessionID)
}

func TestLoginBadCredentialsCreatesNoSession(t *testing.T) {
	svc := newUserService(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "secret1", "")
	require.NoError(t, err)

	_, token, _, err := svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, token)
}

func TestLogoutIsIdempotent(t *testing.T) {
	svc := newUserService(newFakeUserRepo())
	ctx := context.Background()

	// no session exists; logging out must still be a no-op, not an error
	assert.NoError(t, svc.Logout(ctx, 42))
	assert.NoError(t, svc.Logout(ctx, 42))
}

func TestCurrentUser(t *testing.T) {
	svc := newUserService(newFakeUserRepo())
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "secret1", "")
	require.NoError(t, err)

	got, err := svc.CurrentUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = svc.CurrentUser(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

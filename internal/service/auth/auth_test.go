package auth

import (
	"context"
	"testing"
	"time"

	"ChatHive/internal/app_errors"
	"ChatHive/internal/models"
	"ChatHive/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) add(email, password, role string) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	r.users[email] = &models.User{Email: email, Password: string(hash), Nickname: email, Role: role}
}

func (r *fakeUserRepo) UserByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, app_errors.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := r.users[email]
	return ok, nil
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user models.User) (*models.User, error) {
	if _, ok := r.users[user.Email]; ok {
		return nil, app_errors.ErrUserExists
	}
	r.users[user.Email] = &user
	return &user, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, email, hashedPassword string) error {
	u, ok := r.users[email]
	if !ok {
		return app_errors.ErrUserNotFound
	}
	u.Password = hashedPassword
	return nil
}

func (r *fakeUserRepo) DeleteUser(_ context.Context, email string) error {
	if _, ok := r.users[email]; !ok {
		return app_errors.ErrUserNotFound
	}
	delete(r.users, email)
	return nil
}

type fakeTokenCache struct {
	denylisted map[string]time.Duration
	bindings   map[string]string
}

func newFakeTokenCache() *fakeTokenCache {
	return &fakeTokenCache{
		denylisted: make(map[string]time.Duration),
		bindings:   make(map[string]string),
	}
}

func (c *fakeTokenCache) Denylist(_ context.Context, accessToken string, ttl time.Duration) error {
	c.denylisted[accessToken] = ttl
	return nil
}

func (c *fakeTokenCache) IsDenylisted(_ context.Context, accessToken string) (bool, error) {
	_, ok := c.denylisted[accessToken]
	return ok, nil
}

func (c *fakeTokenCache) StoreRefresh(_ context.Context, subject, refreshToken string, _ time.Duration) error {
	c.bindings[subject] = refreshToken
	return nil
}

func (c *fakeTokenCache) Refresh(_ context.Context, subject string) (string, error) {
	return c.bindings[subject], nil
}

func (c *fakeTokenCache) DeleteRefresh(_ context.Context, subject string) error {
	delete(c.bindings, subject)
	return nil
}

func newTestService(t *testing.T) (*AuthService, *fakeUserRepo, *fakeTokenCache, *time.Time) {
	t.Helper()
	m, current := newTestManager(30*time.Minute, 7*24*time.Hour)
	users := newFakeUserRepo()
	cache := newFakeTokenCache()
	svc := NewAuthService(logger.New("local"), m, users, cache, nil)
	return svc, users, cache, current
}

func TestLoginBindsRefreshToken(t *testing.T) {
	svc, users, cache, _ := newTestService(t)
	users.add("alice@example.com", "secret1", models.RoleUser)

	pair, ident, err := svc.Login(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", ident.Subject)
	assert.Equal(t, pair.RefreshToken, cache.bindings["alice@example.com"])

	_, _, err = svc.Login(context.Background(), "alice@example.com", "wrong-pass")
	assert.ErrorIs(t, err, app_errors.ErrIncorrectPassword)

	_, _, err = svc.Login(context.Background(), "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, app_errors.ErrUserNotFound)
}

func TestAuthenticateRejectsDeletedUser(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	users.add("alice@example.com", "secret1", models.RoleUser)

	pair, _, err := svc.Login(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)

	ident, err := svc.Authenticate(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleUser}, ident.Roles)

	delete(users.users, "alice@example.com")
	_, err = svc.Authenticate(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, app_errors.ErrUserNotFound)
}

func TestRenewRotatesPairAndBinding(t *testing.T) {
	svc, users, cache, current := newTestService(t)
	users.add("alice@example.com", "secret1", models.RoleUser)

	pair, _, err := svc.Login(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)

	// Role changes between issue and renewal must surface in the new pair.
	users.users["alice@example.com"].Role = models.JoinRoles([]string{models.RoleUser, models.RoleManager})

	*current = current.Add(31 * time.Minute)
	renewed, ident, err := svc.Renew(context.Background(), "alice@example.com", pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, renewed.AccessToken)
	assert.NotEqual(t, pair.RefreshToken, renewed.RefreshToken)
	assert.Equal(t, renewed.RefreshToken, cache.bindings["alice@example.com"])
	assert.Equal(t, []string{models.RoleUser, models.RoleManager}, ident.Roles)

	// The superseded refresh token is dead: renewing with it kills the
	// binding outright.
	_, _, err = svc.Renew(context.Background(), "alice@example.com", pair.RefreshToken)
	assert.ErrorIs(t, err, app_errors.ErrRefreshMismatch)
	assert.Empty(t, cache.bindings["alice@example.com"])
}

func TestRenewExpiredRefreshForcesRelogin(t *testing.T) {
	svc, users, cache, current := newTestService(t)
	users.add("alice@example.com", "secret1", models.RoleUser)

	pair, _, err := svc.Login(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)

	*current = current.Add(7*24*time.Hour + time.Minute)
	_, _, err = svc.Renew(context.Background(), "alice@example.com", pair.RefreshToken)
	assert.ErrorIs(t, err, app_errors.ErrRefreshExpired)
	assert.Empty(t, cache.bindings["alice@example.com"])
}

func TestRenewWithoutBinding(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	users.add("alice@example.com", "secret1", models.RoleUser)

	_, _, err := svc.Renew(context.Background(), "alice@example.com", "whatever")
	assert.ErrorIs(t, err, app_errors.ErrRefreshMismatch)
}

func TestRevokeAccessDenylistsAndUnbinds(t *testing.T) {
	svc, users, cache, _ := newTestService(t)
	users.add("alice@example.com", "secret1", models.RoleUser)

	pair, _, err := svc.Login(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, svc.RevokeAccess(context.Background(), pair.AccessToken, "alice@example.com"))

	hit, err := svc.IsDenylisted(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 30*time.Minute, cache.denylisted[pair.AccessToken])
	assert.Empty(t, cache.bindings["alice@example.com"])
}

func TestChangePasswordRevokesSession(t *testing.T) {
	svc, users, cache, _ := newTestService(t)
	users.add("alice@example.com", "secret1", models.RoleUser)

	pair, _, err := svc.Login(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), "alice@example.com", "wrong", "newsecret", pair.AccessToken)
	assert.ErrorIs(t, err, app_errors.ErrIncorrectPassword)

	require.NoError(t, svc.ChangePassword(context.Background(), "alice@example.com", "secret1", "newsecret", pair.AccessToken))

	hit, err := svc.IsDenylisted(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Empty(t, cache.bindings["alice@example.com"])

	_, _, err = svc.Login(context.Background(), "alice@example.com", "newsecret")
	assert.NoError(t, err)
}

func TestRegisterPasswordBounds(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), models.User{Email: "a@b.c", Password: "short"})
	assert.ErrorIs(t, err, app_errors.ErrIncorrectPassword)

	_, err = svc.Register(context.Background(), models.User{Email: "a@b.c", Password: "way-too-long-password"})
	assert.ErrorIs(t, err, app_errors.ErrIncorrectPassword)

	created, err := svc.Register(context.Background(), models.User{Email: "a@b.c", Password: "secret1", Nickname: "ab"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, created.Role)
	assert.NotEqual(t, "secret1", created.Password)
}

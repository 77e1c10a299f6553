package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ChatHive/internal/app_errors"
	"ChatHive/internal/config"
	"ChatHive/internal/models"
	"ChatHive/internal/service/auth"
	"ChatHive/internal/storage/redis_store"
	"ChatHive/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var interceptorKey = []byte("interceptor-test-signing-key!!!!")

type memUserRepo struct {
	users map[string]*models.User
}

func (r *memUserRepo) UserByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, app_errors.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := r.users[email]
	return ok, nil
}

func (r *memUserRepo) CreateUser(_ context.Context, user models.User) (*models.User, error) {
	r.users[user.Email] = &user
	return &user, nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, email, hashedPassword string) error {
	r.users[email].Password = hashedPassword
	return nil
}

func (r *memUserRepo) DeleteUser(_ context.Context, email string) error {
	delete(r.users, email)
	return nil
}

type interceptorFixture struct {
	router    *gin.Engine
	cache     *redis_store.TokenCache
	redis     *miniredis.Miniredis
	service   *auth.AuthService
	tokens    *auth.TokenManager
	expired   *auth.TokenManager // mints already-expired access tokens
	deleteHit bool               // set when DELETE /v1/my-account reaches its handler
}

const testSubject = "alice@example.com"

func newInterceptorFixture(t *testing.T) *interceptorFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache := redis_store.NewWithClient(client)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	users := &memUserRepo{users: map[string]*models.User{
		testSubject: {Email: testSubject, Password: string(hash), Nickname: "alice", Role: models.RoleUser},
	}}

	tokens := auth.NewTokenManager(interceptorKey, "chathive-test", 30*time.Minute, 7*24*time.Hour)
	// Same key, negative access lifetime: everything it issues is already
	// expired but carries a live refresh token.
	expired := auth.NewTokenManager(interceptorKey, "chathive-test", -time.Minute, 7*24*time.Hour)

	log := logger.New("local")
	service := auth.NewAuthService(log, tokens, users, cache, nil)

	cfg := config.JWT{
		AccessTTL:     30 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		AccessCookie:  "access_token",
		RefreshCookie: "refresh_token",
		EmailCookie:   "email",
	}

	f := &interceptorFixture{cache: cache, redis: mr, service: service, tokens: tokens, expired: expired}

	p := NewAuthMiddlewareProvider(log, service, cfg)
	r := gin.New()
	r.Use(p.Authenticate)
	r.GET("/v1/whoami", RequireAuth, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"subject": Identity(c).Subject})
	})
	r.DELETE("/v1/my-account", func(c *gin.Context) {
		f.deleteHit = true
		c.JSON(http.StatusOK, gin.H{"authenticated": Identity(c) != nil})
	})
	f.router = r
	return f
}

func (f *interceptorFixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func cookieByName(resp *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range resp.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestInterceptorNoTokenStaysAnonymous(t *testing.T) {
	f := newInterceptorFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
	resp := f.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "authentication required")
}

func TestInterceptorBearerHeader(t *testing.T) {
	f := newInterceptorFixture(t)
	pair, err := f.tokens.Issue(testSubject, []string{models.RoleUser})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	resp := f.do(t, req)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), testSubject)
}

func TestInterceptorAccessCookieFallback(t *testing.T) {
	f := newInterceptorFixture(t)
	pair, err := f.tokens.Issue(testSubject, []string{models.RoleUser})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: pair.AccessToken})
	resp := f.do(t, req)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestInterceptorDenylistedTokenRejected(t *testing.T) {
	f := newInterceptorFixture(t)
	pair, err := f.tokens.Issue(testSubject, []string{models.RoleUser})
	require.NoError(t, err)
	require.NoError(t, f.cache.Denylist(context.Background(), pair.AccessToken, 30*time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	resp := f.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "token revoked")

	// Every session cookie goes, with the HttpOnly attribute it was set with.
	access := cookieByName(resp, "access_token")
	require.NotNil(t, access)
	assert.Empty(t, access.Value)
	assert.False(t, access.HttpOnly)

	refresh := cookieByName(resp, "refresh_token")
	require.NotNil(t, refresh)
	assert.Empty(t, refresh.Value)

	email := cookieByName(resp, "email")
	require.NotNil(t, email)
	assert.Empty(t, email.Value)
}

func TestInterceptorDenylistUnavailableFailsClosed(t *testing.T) {
	f := newInterceptorFixture(t)
	pair, err := f.tokens.Issue(testSubject, []string{models.RoleUser})
	require.NoError(t, err)

	f.redis.Close()

	req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	resp := f.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "authentication unavailable")
}

func TestInterceptorSilentRenewal(t *testing.T) {
	f := newInterceptorFixture(t)
	ctx := context.Background()

	pair, err := f.expired.Issue(testSubject, []string{models.RoleUser})
	require.NoError(t, err)
	require.NoError(t, f.cache.StoreRefresh(ctx, testSubject, pair.RefreshToken, 7*24*time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: pair.RefreshToken})
	resp := f.do(t, req)

	// Renewed mid-request: the route sees the identity and the response
	// carries the fresh pair.
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), testSubject)

	access := cookieByName(resp, "access_token")
	require.NotNil(t, access)
	assert.NotEmpty(t, access.Value)
	assert.NotEqual(t, pair.AccessToken, access.Value)
	assert.False(t, access.HttpOnly)

	refresh := cookieByName(resp, "refresh_token")
	require.NotNil(t, refresh)
	assert.NotEqual(t, pair.RefreshToken, refresh.Value)
	assert.True(t, refresh.HttpOnly)

	email := cookieByName(resp, "email")
	require.NotNil(t, email)
	assert.Equal(t, testSubject, email.Value)

	// Rolling rotation: the cache now binds the new refresh token.
	bound, err := f.cache.Refresh(ctx, testSubject)
	require.NoError(t, err)
	assert.Equal(t, refresh.Value, bound)
}

func TestInterceptorRenewalNeedsRefreshCookie(t *testing.T) {
	f := newInterceptorFixture(t)
	pair, err := f.expired.Issue(testSubject, []string{models.RoleUser})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	resp := f.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	access := cookieByName(resp, "access_token")
	require.NotNil(t, access)
	assert.Empty(t, access.Value)
}

func TestInterceptorRenewalMismatchKillsBinding(t *testing.T) {
	f := newInterceptorFixture(t)
	ctx := context.Background()

	pair, err := f.expired.Issue(testSubject, []string{models.RoleUser})
	require.NoError(t, err)
	require.NoError(t, f.cache.StoreRefresh(ctx, testSubject, "a-different-binding", 7*24*time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: pair.RefreshToken})
	resp := f.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	// Suspected replay: every outstanding session dies with the binding.
	bound, err := f.cache.Refresh(ctx, testSubject)
	require.NoError(t, err)
	assert.Empty(t, bound)
}

func TestInterceptorTamperedTokenNeverRenews(t *testing.T) {
	f := newInterceptorFixture(t)
	ctx := context.Background()

	pair, err := f.expired.Issue(testSubject, []string{models.RoleUser})
	require.NoError(t, err)
	require.NoError(t, f.cache.StoreRefresh(ctx, testSubject, pair.RefreshToken, 7*24*time.Hour))

	tampered := pair.AccessToken[:len(pair.AccessToken)-5] + "XXXXX"
	req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+tampered)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: pair.RefreshToken})
	resp := f.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	// The binding was never touched: no renewal was attempted.
	bound, err := f.cache.Refresh(ctx, testSubject)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, bound)
}

func TestInterceptorSkipsAccountDeletion(t *testing.T) {
	f := newInterceptorFixture(t)
	ctx := context.Background()

	pair, err := f.expired.Issue(testSubject, []string{models.RoleUser})
	require.NoError(t, err)
	require.NoError(t, f.cache.StoreRefresh(ctx, testSubject, pair.RefreshToken, 7*24*time.Hour))

	req := httptest.NewRequest(http.MethodDelete, "/v1/my-account", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: pair.RefreshToken})
	resp := f.do(t, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, f.deleteHit)
	assert.Contains(t, resp.Body.String(), `"authenticated":false`)

	// No renewal happened on the exempt route.
	bound, err := f.cache.Refresh(ctx, testSubject)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, bound)
}

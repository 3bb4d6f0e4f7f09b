package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"vidtube/internal/domain"
	"vidtube/internal/pkg/token"
)

type fakeUserResolver struct {
	users map[int64]*domain.User
}

func (f *fakeUserResolver) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func testIssuer() *token.Issuer {
	return token.NewIssuer(token.Config{
		AccessSecret:  "mw-access-secret",
		RefreshSecret: "mw-refresh-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
	})
}

func protectedRouter(issuer *token.Issuer, users UserResolver) *gin.Engine {
	router := gin.New()
	router.Use(RequireAuth(issuer, users))
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetInt64("user_id")})
	})
	return router
}

func existingUsers() *fakeUserResolver {
	return &fakeUserResolver{users: map[int64]*domain.User{
		42: {ID: 42, Username: "alice", Email: "a@x.com", PasswordHash: "hash"},
	}}
}

func TestRequireAuth_BearerHeader(t *testing.T) {
	issuer := testIssuer()
	router := protectedRouter(issuer, existingUsers())

	tok, err := issuer.Generate(token.KindAccess, 42)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "42")
}

func TestRequireAuth_Cookie(t *testing.T) {
	issuer := testIssuer()
	router := protectedRouter(issuer, existingUsers())

	tok, err := issuer.Generate(token.KindAccess, 42)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: tok})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuth_NoToken(t *testing.T) {
	router := protectedRouter(testIssuer(), existingUsers())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_MISSING")
}

func TestRequireAuth_WrongSecret(t *testing.T) {
	router := protectedRouter(testIssuer(), existingUsers())

	forger := token.NewIssuer(token.Config{
		AccessSecret:  "some-other-secret",
		RefreshSecret: "irrelevant",
		AccessTTL:     time.Hour,
		RefreshTTL:    time.Hour,
	})
	forged, err := forger.Generate(token.KindAccess, 42)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	expired := token.NewIssuer(token.Config{
		AccessSecret:  "mw-access-secret",
		RefreshSecret: "mw-refresh-secret",
		AccessTTL:     -time.Minute,
		RefreshTTL:    time.Hour,
	})
	router := protectedRouter(testIssuer(), existingUsers())

	tok, err := expired.Generate(token.KindAccess, 42)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_RefreshTokenRejected(t *testing.T) {
	issuer := testIssuer()
	router := protectedRouter(issuer, existingUsers())

	// A refresh token must not grant access to protected routes.
	refresh, err := issuer.Generate(token.KindRefresh, 42)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_DeletedUser(t *testing.T) {
	issuer := testIssuer()
	router := protectedRouter(issuer, &fakeUserResolver{users: map[int64]*domain.User{}})

	tok, err := issuer.Generate(token.KindAccess, 42)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_WrongAuthScheme(t *testing.T) {
	router := protectedRouter(testIssuer(), existingUsers())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Basic dGVzdA==")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_MISSING")
}

package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ideahub/ideas-hub/internal/logging"
	"github.com/ideahub/ideas-hub/internal/models"
	"github.com/ideahub/ideas-hub/internal/store"
)

func setupAuthTest(t *testing.T) (*gin.Engine, store.UserStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Idea{}))

	users := store.NewUserStore(db)
	logger := logging.NewLogger("error", "text")

	router := gin.New()
	router.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	router.POST("/register", HandleRegister(users, logger))
	router.POST("/login", HandleLogin(users, logger))
	router.GET("/logout", HandleLogout(logger))
	router.GET("/protected", RequireAuth(), func(c *gin.Context) {
		identity := CurrentIdentity(c)
		c.String(http.StatusOK, identity.Name)
	})

	return router, users
}

func postForm(router *gin.Engine, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterEstablishesSession(t *testing.T) {
	router, users := setupAuthTest(t)

	w := postForm(router, "/register", url.Values{
		"username": {"alice"},
		"password": {"password123"},
	}, nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	user, err := users.GetByUsername(t.Context(), "alice")
	require.NoError(t, err)
	assert.Equal(t, models.AuthMethodLocal, user.AuthMethod)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "password123", user.PasswordHash)

	// The session cookie grants access to protected routes.
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "alice", resp.Body.String())
}

func TestRegisterValidation(t *testing.T) {
	router, _ := setupAuthTest(t)

	t.Run("missing fields", func(t *testing.T) {
		w := postForm(router, "/register", url.Values{"username": {"alice"}}, nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Contains(t, w.Header().Get("Location"), "missing_fields")
	})

	t.Run("duplicate username", func(t *testing.T) {
		form := url.Values{"username": {"bob"}, "password": {"pw"}}
		postForm(router, "/register", form, nil)

		w := postForm(router, "/register", form, nil)
		assert.Contains(t, w.Header().Get("Location"), "username_taken")
	})
}

func TestLogin(t *testing.T) {
	router, users := setupAuthTest(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.DefaultCost)
	require.NoError(t, err)
	require.NoError(t, users.Create(t.Context(), &models.User{
		Username:     "alice",
		PasswordHash: string(hash),
		AuthMethod:   models.AuthMethodLocal,
	}))

	t.Run("valid credentials", func(t *testing.T) {
		w := postForm(router, "/login", url.Values{
			"username": {"alice"},
			"password": {"correct horse"},
		}, nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})

	t.Run("wrong password", func(t *testing.T) {
		w := postForm(router, "/login", url.Values{
			"username": {"alice"},
			"password": {"wrong"},
		}, nil)
		assert.Contains(t, w.Header().Get("Location"), "invalid_credentials")
	})

	t.Run("unknown user", func(t *testing.T) {
		w := postForm(router, "/login", url.Values{
			"username": {"mallory"},
			"password": {"whatever"},
		}, nil)
		assert.Contains(t, w.Header().Get("Location"), "invalid_credentials")
	})

	t.Run("federated account cannot use password login", func(t *testing.T) {
		_, err := users.UpsertGoogle(t.Context(), "google-1", "Fed User", "fed@example.com")
		require.NoError(t, err)

		w := postForm(router, "/login", url.Values{
			"username": {"Fed User"},
			"password": {"anything"},
		}, nil)
		assert.Contains(t, w.Header().Get("Location"), "invalid_credentials")
	})
}

func TestLogoutInvalidatesSession(t *testing.T) {
	router, _ := setupAuthTest(t)

	w := postForm(router, "/register", url.Values{
		"username": {"alice"},
		"password": {"pw"},
	}, nil)
	cookies := w.Result().Cookies()

	// Logout clears the session.
	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	logoutResp := httptest.NewRecorder()
	router.ServeHTTP(logoutResp, req)
	assert.Equal(t, http.StatusFound, logoutResp.Code)
	assert.Equal(t, "/login", logoutResp.Header().Get("Location"))

	// The refreshed cookie no longer grants access.
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	for _, c := range logoutResp.Result().Cookies() {
		req.AddCookie(c)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/login", resp.Header().Get("Location"))
}

func TestRequireAuthRedirectsAnonymous(t *testing.T) {
	router, _ := setupAuthTest(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

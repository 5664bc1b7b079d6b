package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"
	"golang.org/x/crypto/bcrypt"

	"github.com/ideahub/ideas-hub/internal/models"
	"github.com/ideahub/ideas-hub/internal/store"
)

// ShowLogin renders the login form
func ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.tmpl", gin.H{
		"PageTitle": "Log in",
		"Error":     c.Query("error"),
	})
}

// ShowRegister renders the registration form
func ShowRegister(c *gin.Context) {
	c.HTML(http.StatusOK, "register.tmpl", gin.H{
		"PageTitle": "Register",
		"Error":     c.Query("error"),
	})
}

// HandleRegister creates a local account and establishes a session
func HandleRegister(users store.UserStore, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := strings.TrimSpace(c.PostForm("username"))
		password := c.PostForm("password")

		if username == "" || password == "" {
			c.Redirect(http.StatusFound, "/register?error=missing_fields")
			return
		}

		if _, err := users.GetByUsername(c.Request.Context(), username); err == nil {
			c.Redirect(http.StatusFound, "/register?error=username_taken")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			logger.Error("Password hashing failed", "error", err)
			c.Redirect(http.StatusFound, "/register?error=internal")
			return
		}

		user := models.User{
			Username:     username,
			PasswordHash: string(hash),
			AuthMethod:   models.AuthMethodLocal,
		}
		if err := users.Create(c.Request.Context(), &user); err != nil {
			logger.Error("User creation failed", "error", err)
			c.Redirect(http.StatusFound, "/register?error=internal")
			return
		}

		if err := establishSession(c, &user); err != nil {
			logger.Error("Session save failed", "error", err)
			c.Redirect(http.StatusFound, "/login?error=session_failed")
			return
		}

		logger.Info("User registered", "username", username)
		c.Redirect(http.StatusFound, "/")
	}
}

// HandleLogin checks local credentials and establishes a session
func HandleLogin(users store.UserStore, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := strings.TrimSpace(c.PostForm("username"))
		password := c.PostForm("password")

		user, err := users.GetByUsername(c.Request.Context(), username)
		if err != nil || user.PasswordHash == "" {
			// Unknown user and federated-only account fail the same way.
			c.Redirect(http.StatusFound, "/login?error=invalid_credentials")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			c.Redirect(http.StatusFound, "/login?error=invalid_credentials")
			return
		}

		if err := establishSession(c, user); err != nil {
			logger.Error("Session save failed", "error", err)
			c.Redirect(http.StatusFound, "/login?error=session_failed")
			return
		}

		if err := users.TouchLogin(c.Request.Context(), user.ID); err != nil {
			logger.Warn("Failed to record login time", "error", err)
		}

		logger.Info("User authenticated", "username", user.Username, "method", models.AuthMethodLocal)
		c.Redirect(http.StatusFound, "/")
	}
}

// HandleGoogleLogin initiates the Google OAuth flow
func HandleGoogleLogin(c *gin.Context) {
	// Gothic requires the "provider" query parameter
	q := c.Request.URL.Query()
	q.Add("provider", "google")
	c.Request.URL.RawQuery = q.Encode()

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// HandleGoogleCallback completes the OAuth flow, upserts the user by Google
// account id, and establishes the session
func HandleGoogleCallback(users store.UserStore, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Gothic requires the "provider" query parameter
		q := c.Request.URL.Query()
		q.Add("provider", "google")
		c.Request.URL.RawQuery = q.Encode()

		gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
		if err != nil {
			logger.Warn("OAuth callback failed", "error", err)
			c.Redirect(http.StatusFound, "/login?error=auth_failed")
			return
		}

		name := gothUser.Name
		if name == "" {
			name = gothUser.Email
		}

		user, err := users.UpsertGoogle(c.Request.Context(), gothUser.UserID, name, gothUser.Email)
		if err != nil {
			logger.Error("Federated user upsert failed", "error", err)
			c.Redirect(http.StatusFound, "/login?error=auth_failed")
			return
		}

		if err := establishSession(c, user); err != nil {
			logger.Error("Session save failed", "error", err)
			c.Redirect(http.StatusFound, "/login?error=session_failed")
			return
		}

		logger.Info("User authenticated", "username", user.Username, "method", models.AuthMethodGoogle)
		c.Redirect(http.StatusFound, "/")
	}
}

// HandleLogout clears the session and redirects to login
func HandleLogout(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		session.Clear()

		if err := session.Save(); err != nil {
			logger.Warn("Session clear failed", "error", err)
		}

		c.Redirect(http.StatusFound, "/login")
	}
}

func establishSession(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Set(KeyUserID, user.ID)
	session.Set(KeyUserName, user.Username)
	session.Set(KeyAuthMethod, user.AuthMethod)
	return session.Save()
}

package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"heritage_auth/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "client_state.json")
}

// backendStub serves the auth envelope the way the real backend does
func backendStub(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/auth/login", func(c *gin.Context) {
		var req struct{ Email, Password string }
		require.NoError(t, c.ShouldBindJSON(&req))
		if req.Email == "remote@x.com" && req.Password == "secret1" {
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"token":   "remote-token",
				"user":    gin.H{"email": "remote@x.com", "name": "Remote", "role": model.RoleUser},
			})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid credentials"})
	})
	router.POST("/api/auth/register", func(c *gin.Context) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "user with this email already exists"})
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestAuthenticate_RemoteSuccessPersistsSession(t *testing.T) {
	srv := backendStub(t)
	c := New(srv.URL, statePath(t))

	res, err := c.Authenticate(context.Background(), "remote@x.com", "secret1")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "remote@x.com", res.User.Email)
	assert.Equal(t, "/admin/user-dashboard", res.User.Dashboard)

	token, err := c.Token()
	require.NoError(t, err)
	assert.Equal(t, "remote-token", token)

	sess, err := c.CurrentUser()
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "remote@x.com", sess.Email)
}

func TestAuthenticate_RemoteDomainFailureIsFinal(t *testing.T) {
	srv := backendStub(t)
	c := New(srv.URL, statePath(t))

	// The seed account would match locally, but a reachable backend's
	// rejection must not be papered over by the fallback.
	res, err := c.Authenticate(context.Background(), "admin@heritage.com", "admin123")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "invalid credentials", res.Message)

	sess, err := c.CurrentUser()
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestAuthenticate_UnreachableBackendFallsBackToSeeds(t *testing.T) {
	srv := backendStub(t)
	url := srv.URL
	srv.Close()

	c := New(url, statePath(t))
	res, err := c.Authenticate(context.Background(), "Admin@Heritage.com", "admin123")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, model.RoleAdmin, res.User.Role)
	assert.Equal(t, "/admin/enthusiast-dashboard", res.User.Dashboard)

	// Fallback logins carry no backend token
	token, err := c.Token()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestRegister_RemoteDomainFailureIsFinal(t *testing.T) {
	srv := backendStub(t)
	c := New(srv.URL, statePath(t))

	res, err := c.Register(context.Background(), "new@x.com", "secret1", "New", model.RoleUser)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "user with this email already exists", res.Message)
}

func TestLocalRegisterAndAuthenticate(t *testing.T) {
	c := New("", statePath(t))
	ctx := context.Background()

	res, err := c.Register(ctx, "Local@X.com", "secret1", "Local", model.RoleUser)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "registration successful, you can now login", res.Message)

	// Registration does not log the user in
	sess, err := c.CurrentUser()
	require.NoError(t, err)
	assert.Nil(t, sess)

	res, err = c.Authenticate(ctx, "local@x.com", "secret1")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "local@x.com", res.User.Email)

	sess, err = c.CurrentUser()
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "local@x.com", sess.Email)

	require.NoError(t, c.Logout())
	sess, err = c.CurrentUser()
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestLocalRegister_Validation(t *testing.T) {
	c := New("", statePath(t))
	ctx := context.Background()

	res, err := c.Register(ctx, "a@x.com", "secret1", "", model.RoleUser)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "all fields are required", res.Message)

	res, err = c.Register(ctx, "a@x.com", "12345", "Alice", model.RoleUser)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "password must be at least 6 characters", res.Message)

	// Seed emails are taken
	res, err = c.Register(ctx, "ADMIN@heritage.com", "secret1", "Impostor", model.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "user with this email already exists", res.Message)
}

func TestLocalAuthenticate_WrongPassword(t *testing.T) {
	c := New("", statePath(t))

	res, err := c.Authenticate(context.Background(), "admin@heritage.com", "wrong")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "invalid email or password", res.Message)
}

func TestPredefinedUsers(t *testing.T) {
	c := New("", statePath(t))

	_, err := c.Register(context.Background(), "local@x.com", "secret1", "Local", model.RoleTourGuide)
	require.NoError(t, err)

	users, err := c.PredefinedUsers()
	require.NoError(t, err)
	require.Len(t, users, 4)
	assert.Equal(t, "admin@heritage.com", users[0].Email)
	assert.Equal(t, "local@x.com", users[3].Email)
	assert.Equal(t, "/admin/tour-guide-dashboard", users[3].Dashboard)
}

func TestRememberCredentials(t *testing.T) {
	c := New("", statePath(t))

	creds, err := c.RememberedCredentials()
	require.NoError(t, err)
	assert.Nil(t, creds)

	require.NoError(t, c.RememberCredentials("A@X.com", "secret1"))

	creds, err = c.RememberedCredentials()
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "a@x.com", creds.Email)
	assert.Equal(t, "secret1", creds.Password)

	require.NoError(t, c.ClearRememberedCredentials())
	creds, err = c.RememberedCredentials()
	require.NoError(t, err)
	assert.Nil(t, creds)
}

// storedOTPCode reads the live code straight from local state
func storedOTPCode(t *testing.T, c *Client, email string) string {
	t.Helper()
	var otps []model.OTP
	_, err := c.state.Get(keyOTPs, &otps)
	require.NoError(t, err)
	for _, o := range otps {
		if o.Email == email {
			return o.Code
		}
	}
	t.Fatalf("no stored otp for %s", email)
	return ""
}

func TestLocalForgotPasswordFlow(t *testing.T) {
	c := New("", statePath(t))
	ctx := context.Background()

	_, err := c.Register(ctx, "local@x.com", "secret1", "Local", model.RoleUser)
	require.NoError(t, err)

	res, err := c.InitiateForgotPassword("nobody@x.com")
	require.NoError(t, err)
	assert.False(t, res.Success)

	res, err = c.InitiateForgotPassword("Local@X.com")
	require.NoError(t, err)
	require.True(t, res.Success)
	code := storedOTPCode(t, c, "local@x.com")

	res, err = c.VerifyOTPAndReset("local@x.com", "999999", "newsecret")
	require.NoError(t, err)
	if code != "999999" {
		assert.False(t, res.Success)
		assert.Equal(t, "invalid otp", res.Message)
	}

	res, err = c.VerifyOTPAndReset("local@x.com", code, "12345")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "password must be at least 6 characters", res.Message)

	res, err = c.VerifyOTPAndReset("local@x.com", code, "newsecret")
	require.NoError(t, err)
	require.True(t, res.Success)

	// Code is consumed
	res, err = c.VerifyOTPAndReset("local@x.com", code, "another1")
	require.NoError(t, err)
	assert.False(t, res.Success)

	// The new password is live, the old one is not
	res, err = c.Authenticate(ctx, "local@x.com", "secret1")
	require.NoError(t, err)
	assert.False(t, res.Success)
	res, err = c.Authenticate(ctx, "local@x.com", "newsecret")
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestLocalForgotPassword_SeedAccountsAreFixed(t *testing.T) {
	c := New("", statePath(t))
	ctx := context.Background()

	res, err := c.InitiateForgotPassword("user@heritage.com")
	require.NoError(t, err)
	require.True(t, res.Success)
	code := storedOTPCode(t, c, "user@heritage.com")

	res, err = c.VerifyOTPAndReset("user@heritage.com", code, "newsecret")
	require.NoError(t, err)
	require.True(t, res.Success)

	// Seed credentials are immutable: the original password still works
	res, err = c.Authenticate(ctx, "user@heritage.com", "user123")
	require.NoError(t, err)
	assert.True(t, res.Success)
}

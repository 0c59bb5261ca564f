// Package client is the offline-capable auth client. It attempts the remote
// backend first and degrades to a local, file-backed fallback only when the
// backend is unreachable. The fallback mirrors the server's validation rules
// but stores plaintext passwords in local state; that is a known, accepted
// weakness of the degraded mode and must not be mistaken for the security of
// the backend path.
package client

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strings"
	"time"

	"heritage_auth/internal/client/localstate"
	"heritage_auth/internal/model"
)

// Local state keys (localStorage analogs)
const (
	keyAuthToken   = "authToken"
	keyCurrentUser = "currentUser"
	keyRegistered  = "registeredUsers"
	keyRemembered  = "rememberedCredentials"
	keyOTPs        = "passwordOtps"
)

// otpTTL matches the server-side password-reset validity window
const otpTTL = 10 * time.Minute

// Session is the logged-in identity kept in local state
type Session struct {
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Role      string `json:"role"`
	Dashboard string `json:"dashboard,omitempty"`
}

// Result is the outcome of an auth operation, remote or local
type Result struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	User    *Session `json:"user,omitempty"`
}

// Credentials are remembered login credentials. Stored in plaintext as an
// explicitly insecure convenience feature of the offline mode.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// localUser is a locally registered (or seed) account. Passwords are
// plaintext; see the package comment.
type localUser struct {
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role"`
	Dashboard string    `json:"dashboard"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// seedAccounts are the built-in fallback accounts with fixed dashboard
// routes. They are not persisted and cannot be changed.
var seedAccounts = []localUser{
	{Email: "admin@heritage.com", Password: "admin123", Role: model.RoleAdmin, Dashboard: "/admin/enthusiast-dashboard"},
	{Email: "user@heritage.com", Password: "user123", Role: model.RoleUser, Dashboard: "/admin/user-dashboard"},
	{Email: "creator@heritage.com", Password: "creator123", Role: model.RoleContentCreator, Dashboard: "/admin/content-creator-dashboard"},
}

// DashboardPath maps a role to its dashboard route
func DashboardPath(role string) string {
	switch role {
	case model.RoleAdmin:
		return "/admin/enthusiast-dashboard"
	case model.RoleUser:
		return "/admin/user-dashboard"
	case model.RoleContentCreator:
		return "/admin/content-creator-dashboard"
	case model.RoleTourGuide:
		return "/admin/tour-guide-dashboard"
	default:
		return "/admin/user-dashboard"
	}
}

// Client is an auth client with a remote-first, local-fallback strategy
type Client struct {
	baseURL string
	httpc   *http.Client
	state   *localstate.Store
}

// New creates a Client. An empty baseURL disables the remote path entirely
// (pure offline mode).
func New(baseURL, statePath string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 10 * time.Second},
		state:   localstate.New(statePath),
	}
}

// apiResponse is the backend's JSON envelope
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
	User    *struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	} `json:"user"`
}

// postJSON returns an error only on transport or protocol failure. A decoded
// response is a definitive answer whatever its HTTP status.
func (c *Client) postJSON(ctx context.Context, path string, body any) (*apiResponse, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &decoded, nil
}

// acceptRemote turns a decoded backend response into a Result. A domain-level
// failure is returned as-is and never triggers the local fallback.
func (c *Client) acceptRemote(resp *apiResponse) (*Result, error) {
	if !resp.Success || resp.User == nil {
		return &Result{Success: false, Message: resp.Message}, nil
	}
	sess := &Session{
		Email:     resp.User.Email,
		Name:      resp.User.Name,
		Role:      resp.User.Role,
		Dashboard: DashboardPath(resp.User.Role),
	}
	if resp.Token != "" {
		if err := c.state.Set(keyAuthToken, resp.Token); err != nil {
			return nil, err
		}
	}
	if err := c.state.Set(keyCurrentUser, sess); err != nil {
		return nil, err
	}
	return &Result{Success: true, User: sess}, nil
}

// Authenticate logs in, remote-first
func (c *Client) Authenticate(ctx context.Context, email, password string) (*Result, error) {
	if c.baseURL != "" {
		resp, err := c.postJSON(ctx, "/api/auth/login", map[string]string{"email": email, "password": password})
		if err == nil {
			return c.acceptRemote(resp)
		}
		log.Printf("Backend unreachable (%v); falling back to local auth", err)
	}
	return c.localAuthenticate(email, password)
}

// Register creates an account, remote-first
func (c *Client) Register(ctx context.Context, email, password, name, role string) (*Result, error) {
	if c.baseURL != "" {
		resp, err := c.postJSON(ctx, "/api/auth/register", map[string]string{
			"email": email, "password": password, "name": name, "role": role,
		})
		if err == nil {
			return c.acceptRemote(resp)
		}
		log.Printf("Backend unreachable (%v); falling back to local registration", err)
	}
	return c.localRegister(email, password, name, role)
}

// localUsers returns seed accounts plus locally registered ones. Seeds take
// precedence over a registered account with the same email.
func (c *Client) localUsers() ([]localUser, error) {
	users := make([]localUser, len(seedAccounts))
	copy(users, seedAccounts)

	var registered []localUser
	if _, err := c.state.Get(keyRegistered, &registered); err != nil {
		return nil, err
	}
	for _, ru := range registered {
		exists := false
		for i := range users {
			if model.NormalizeEmail(users[i].Email) == model.NormalizeEmail(ru.Email) {
				exists = true
				break
			}
		}
		if !exists {
			users = append(users, ru)
		}
	}
	return users, nil
}

func (c *Client) localAuthenticate(email, password string) (*Result, error) {
	users, err := c.localUsers()
	if err != nil {
		return nil, err
	}
	normalized := model.NormalizeEmail(email)
	for i := range users {
		if model.NormalizeEmail(users[i].Email) == normalized && users[i].Password == password {
			sess := &Session{
				Email:     users[i].Email,
				Name:      users[i].Name,
				Role:      users[i].Role,
				Dashboard: users[i].Dashboard,
			}
			if err := c.state.Set(keyCurrentUser, sess); err != nil {
				return nil, err
			}
			return &Result{Success: true, User: sess}, nil
		}
	}
	return &Result{Success: false, Message: "invalid email or password"}, nil
}

func (c *Client) localRegister(email, password, name, role string) (*Result, error) {
	if email == "" || password == "" || name == "" || role == "" {
		return &Result{Success: false, Message: "all fields are required"}, nil
	}
	if len(password) < 6 {
		return &Result{Success: false, Message: "password must be at least 6 characters"}, nil
	}

	users, err := c.localUsers()
	if err != nil {
		return nil, err
	}
	normalized := model.NormalizeEmail(email)
	for i := range users {
		if model.NormalizeEmail(users[i].Email) == normalized {
			return &Result{Success: false, Message: "user with this email already exists"}, nil
		}
	}

	newUser := localUser{
		Email:     normalized,
		Password:  password,
		Name:      name,
		Role:      role,
		Dashboard: DashboardPath(role),
		CreatedAt: time.Now().UTC(),
	}

	var registered []localUser
	if _, err := c.state.Get(keyRegistered, &registered); err != nil {
		return nil, err
	}
	registered = append(registered, newUser)
	if err := c.state.Set(keyRegistered, registered); err != nil {
		return nil, err
	}

	return &Result{
		Success: true,
		Message: "registration successful, you can now login",
		User:    &Session{Email: newUser.Email, Name: newUser.Name, Role: newUser.Role, Dashboard: newUser.Dashboard},
	}, nil
}

// CurrentUser returns the logged-in session, or nil when logged out
func (c *Client) CurrentUser() (*Session, error) {
	var sess Session
	ok, err := c.state.Get(keyCurrentUser, &sess)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

// Logout clears the session and token
func (c *Client) Logout() error {
	if err := c.state.Delete(keyCurrentUser); err != nil {
		return err
	}
	return c.state.Delete(keyAuthToken)
}

// Token returns the persisted bearer token, if any
func (c *Client) Token() (string, error) {
	var token string
	ok, err := c.state.Get(keyAuthToken, &token)
	if err != nil || !ok {
		return "", err
	}
	return token, nil
}

// PredefinedUsers lists the known local accounts (seeds plus registered),
// without passwords.
func (c *Client) PredefinedUsers() ([]Session, error) {
	users, err := c.localUsers()
	if err != nil {
		return nil, err
	}
	sessions := make([]Session, 0, len(users))
	for i := range users {
		sessions = append(sessions, Session{Email: users[i].Email, Role: users[i].Role, Dashboard: users[i].Dashboard})
	}
	return sessions, nil
}

// RememberCredentials persists login credentials in plaintext. Insecure by
// design of the original feature; kept only for the offline convenience flow.
func (c *Client) RememberCredentials(email, password string) error {
	return c.state.Set(keyRemembered, Credentials{Email: model.NormalizeEmail(email), Password: password})
}

// RememberedCredentials returns the remembered credentials, or nil
func (c *Client) RememberedCredentials() (*Credentials, error) {
	var creds Credentials
	ok, err := c.state.Get(keyRemembered, &creds)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &creds, nil
}

// ClearRememberedCredentials forgets the remembered credentials
func (c *Client) ClearRememberedCredentials() error {
	return c.state.Delete(keyRemembered)
}

// InitiateForgotPassword starts the local password-reset flow. The code is
// printed to the log as simulated delivery.
func (c *Client) InitiateForgotPassword(email string) (*Result, error) {
	users, err := c.localUsers()
	if err != nil {
		return nil, err
	}
	normalized := model.NormalizeEmail(email)
	found := false
	for i := range users {
		if model.NormalizeEmail(users[i].Email) == normalized {
			found = true
			break
		}
	}
	if !found {
		return &Result{Success: false, Message: "no account found for that email"}, nil
	}

	code, err := generateOTPCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate otp: %w", err)
	}

	var otps []model.OTP
	if _, err := c.state.Get(keyOTPs, &otps); err != nil {
		return nil, err
	}
	// New request evicts any prior live code for the email
	kept := otps[:0]
	for _, o := range otps {
		if model.NormalizeEmail(o.Email) != normalized {
			kept = append(kept, o)
		}
	}
	kept = append(kept, model.OTP{Email: normalized, Code: code, ExpiresAt: time.Now().Add(otpTTL)})
	if err := c.state.Set(keyOTPs, kept); err != nil {
		return nil, err
	}

	log.Printf("Forgot-password OTP for %s: %s (valid for %v)", email, code, otpTTL)
	return &Result{Success: true, Message: "otp generated and (simulated) sent to email"}, nil
}

// VerifyOTPAndReset consumes a live code and resets the local password.
// Seed accounts are fixed, so a reset only persists for locally registered
// users.
func (c *Client) VerifyOTPAndReset(email, code, newPassword string) (*Result, error) {
	if len(newPassword) < 6 {
		return &Result{Success: false, Message: "password must be at least 6 characters"}, nil
	}
	normalized := model.NormalizeEmail(email)

	var otps []model.OTP
	if _, err := c.state.Get(keyOTPs, &otps); err != nil {
		return nil, err
	}
	idx := -1
	for i := range otps {
		if model.NormalizeEmail(otps[i].Email) == normalized && otps[i].Code == code {
			idx = i
			break
		}
	}
	if idx == -1 {
		return &Result{Success: false, Message: "invalid otp"}, nil
	}
	if otps[idx].Expired(time.Now()) {
		otps = append(otps[:idx], otps[idx+1:]...)
		if err := c.state.Set(keyOTPs, otps); err != nil {
			return nil, err
		}
		return &Result{Success: false, Message: "otp expired"}, nil
	}

	users, err := c.localUsers()
	if err != nil {
		return nil, err
	}
	found := false
	for i := range users {
		if model.NormalizeEmail(users[i].Email) == normalized {
			found = true
			break
		}
	}
	if !found {
		return &Result{Success: false, Message: "user record not found"}, nil
	}

	var registered []localUser
	if _, err := c.state.Get(keyRegistered, &registered); err != nil {
		return nil, err
	}
	for i := range registered {
		if model.NormalizeEmail(registered[i].Email) == normalized {
			registered[i].Password = newPassword
			if err := c.state.Set(keyRegistered, registered); err != nil {
				return nil, err
			}
			break
		}
	}

	otps = append(otps[:idx], otps[idx+1:]...)
	if err := c.state.Set(keyOTPs, otps); err != nil {
		return nil, err
	}
	return &Result{Success: true, Message: "password reset successful"}, nil
}

// generateOTPCode returns 6 random ASCII digits
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

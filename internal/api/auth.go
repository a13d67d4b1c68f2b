package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

type RegisterRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Position        string `json:"position"`
	Address         string `json:"address,omitempty"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginResponse struct {
	Message   string `json:"message"`
	Token     string `json:"token"`
	UserID    int64  `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Login authenticates against the backend and persists the resulting
// session. The stored display name is "<first> <last>".
func (c *Client) Login(ctx context.Context, email, password string) (core.Session, error) {
	body := map[string]string{"email": email, "password": password}
	data, _, err := c.do(ctx, http.MethodPost, "/auth/login", body, false)
	if err != nil {
		return core.Session{}, err
	}

	var resp loginResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return core.Session{}, fmt.Errorf("decode login response: %w", err)
	}
	if strings.TrimSpace(resp.Token) == "" {
		return core.Session{}, &APIError{Status: http.StatusOK, Message: "login response carried no token"}
	}

	sess := core.Session{
		Token:     resp.Token,
		UserID:    strconv.FormatInt(resp.UserID, 10),
		UserEmail: email,
		UserName:  strings.TrimSpace(resp.FirstName + " " + resp.LastName),
	}
	if err := c.store.Save(ctx, sess); err != nil {
		return core.Session{}, fmt.Errorf("persist session: %w", err)
	}
	return sess, nil
}

// Register creates a new account. The password/confirm match is validated
// by callers before the request is built.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	_, _, err := c.do(ctx, http.MethodPost, "/auth/register", req, false)
	return err
}

// ForgotPassword resets the account password by email.
func (c *Client) ForgotPassword(ctx context.Context, email, newPassword, confirmPassword string) error {
	body := map[string]string{
		"email":           email,
		"newPassword":     newPassword,
		"confirmPassword": confirmPassword,
	}
	_, _, err := c.do(ctx, http.MethodPost, "/auth/forgot-password", body, false)
	return err
}

// Logout is purely client-side: token issuance and revocation live on the
// server, the client just forgets its credentials.
func (c *Client) Logout(ctx context.Context) error {
	return c.store.Clear(ctx)
}

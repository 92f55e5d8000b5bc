package client

import (
	"context"
	"net/http"
	"net/url"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileUpdate struct {
	Name  string `json:"name,omitempty"`
	Bio   string `json:"bio,omitempty"`
	Photo string `json:"photo,omitempty"`
}

type sessionUser struct {
	User
	Token string `json:"token"`
}

// Register creates the account. The server starts a session for it but the
// local state is left untouched until GetUser or Bootstrap.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var out sessionUser
	if err := c.do(ctx, http.MethodPost, "/register", req, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Login starts a session and loads the signed-in user.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/login", body, nil); err != nil {
		return nil, err
	}
	return c.GetUser(ctx)
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/logout", nil, nil); err != nil {
		return err
	}
	c.state.clear()
	return nil
}

// LoginStatus reports whether the stored session is valid. A rejected or
// missing session is a false answer, not an error.
func (c *Client) LoginStatus(ctx context.Context) (bool, error) {
	var loggedIn bool
	err := c.do(ctx, http.MethodGet, "/login-status", nil, &loggedIn)
	if IsStatus(err, http.StatusUnauthorized) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return loggedIn, nil
}

func (c *Client) GetUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/user", nil, &user); err != nil {
		return nil, err
	}
	c.state.setUser(&user)
	return &user, nil
}

func (c *Client) UpdateUser(ctx context.Context, update ProfileUpdate) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPatch, "/user", update, &user); err != nil {
		return nil, err
	}
	c.state.setUser(&user)
	return &user, nil
}

func (c *Client) RequestEmailVerification(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/verify-email", nil, nil)
}

// VerifyUser consumes a verification token and refreshes the signed-in user
// when there is one.
func (c *Client) VerifyUser(ctx context.Context, token string) error {
	if err := c.do(ctx, http.MethodPost, "/verify-user/"+url.PathEscape(token), nil, nil); err != nil {
		return err
	}
	if c.State().User == nil {
		return nil
	}
	_, err := c.GetUser(ctx)
	return err
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/forgot-password", map[string]string{"email": email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	return c.do(ctx, http.MethodPost, "/reset-password/"+url.PathEscape(token), map[string]string{"password": password}, nil)
}

func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	body := map[string]string{"currentPassword": currentPassword, "newPassword": newPassword}
	return c.do(ctx, http.MethodPatch, "/change-password", body, nil)
}

func (c *Client) GetAllUsers(ctx context.Context) ([]User, error) {
	var all []User
	if err := c.do(ctx, http.MethodGet, "/admin/users", nil, &all); err != nil {
		return nil, err
	}
	c.state.setAllUsers(all)
	return all, nil
}

// DeleteUser removes a user and reloads the admin list.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(id), nil, nil); err != nil {
		return err
	}
	_, err := c.GetAllUsers(ctx)
	return err
}

// Bootstrap restores state for an existing session: the user when the
// session is valid, and the user list when that user is an admin.
func (c *Client) Bootstrap(ctx context.Context) error {
	loggedIn, err := c.LoginStatus(ctx)
	if err != nil || !loggedIn {
		c.state.clear()
		return err
	}

	user, err := c.GetUser(ctx)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		_, err = c.GetAllUsers(ctx)
	}
	return err
}

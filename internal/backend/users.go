package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/iliyamo/bqomis-portal/internal/model"
)

// Authenticate calls POST /users/authenticate.  The backend answers 200
// with an empty body for unknown credentials; that case maps to
// ErrInvalidCredentials.
func (c *Client) Authenticate(ctx context.Context, cred model.Credentials) (*model.User, error) {
	var out *model.User
	if err := c.do(ctx, "POST /users/authenticate", http.MethodPost, "/users/authenticate", nil, cred, &out); err != nil {
		if hasStatus(err, http.StatusUnauthorized) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if out == nil || out.ID == 0 {
		return nil, ErrInvalidCredentials
	}
	return out, nil
}

// GetUser calls GET /users/{id}.
func (c *Client) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var out model.User
	if err := c.do(ctx, "GET /users/{id}", http.MethodGet, idPath("/users", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser calls PUT /users/{id} with profile fields.
func (c *Client) UpdateUser(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error) {
	var out model.User
	if err := c.do(ctx, "PUT /users/{id}", http.MethodPut, idPath("/users", id), nil, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PatchUser calls PATCH /users/{id}; used by admins to change username,
// phone number or role.
func (c *Client) PatchUser(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error) {
	var out model.User
	if err := c.do(ctx, "PATCH /users/{id}", http.MethodPatch, idPath("/users", id), nil, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateUser calls POST /users.  It serves public sign-up as well as admin
// created accounts.
func (c *Client) CreateUser(ctx context.Context, in model.NewUser) (*model.User, error) {
	var out model.User
	if err := c.do(ctx, "POST /users", http.MethodPost, "/users", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword calls POST /users/change-password.  The success body is
// ignored; the backend may answer with JSON, text or nothing.
func (c *Client) ChangePassword(ctx context.Context, in model.PasswordChange) error {
	return c.do(ctx, "POST /users/change-password", http.MethodPost, "/users/change-password", nil, in, nil)
}

// ListUsersByRoles calls GET /users?roles=A,B.
func (c *Client) ListUsersByRoles(ctx context.Context, roles ...string) ([]model.User, error) {
	var out []model.User
	q := url.Values{}
	q.Set("roles", strings.Join(roles, ","))
	if err := c.do(ctx, "GET /users?roles", http.MethodGet, "/users", q, nil, &out); err != nil {
		return nil, err
	}
	return orEmpty(out), nil
}

// ListTestUsers calls GET /users?role=TESTER, the account pool used by the
// synthetic data generator.
func (c *Client) ListTestUsers(ctx context.Context) ([]model.User, error) {
	var out []model.User
	q := url.Values{}
	q.Set("role", model.RoleTester)
	if err := c.do(ctx, "GET /users?role", http.MethodGet, "/users", q, nil, &out); err != nil {
		return nil, err
	}
	return orEmpty(out), nil
}

// DeleteUser calls DELETE /users/{id}.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, "DELETE /users/{id}", http.MethodDelete, idPath("/users", id), nil, nil, nil)
}

// ListRoles calls GET /roles.
func (c *Client) ListRoles(ctx context.Context) ([]model.Role, error) {
	var out []model.Role
	if err := c.do(ctx, "GET /roles", http.MethodGet, "/roles", nil, nil, &out); err != nil {
		return nil, err
	}
	return orEmpty(out), nil
}

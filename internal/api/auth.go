package api

import (
	"context"
	"net/http"

	"github.com/julianstephens/habitual/internal/models"
)

// SignIn authenticates with email and password. The session cookie from the
// response is kept in the client's jar.
func (c *Client) SignIn(ctx context.Context, email, password string) (models.User, error) {
	var resp models.AuthResponse
	err := c.Do(ctx, http.MethodPost, "/auth/login", models.Credentials{Email: email, Password: password}, &resp)
	return resp.User, err
}

func (c *Client) SignUp(ctx context.Context, email, password, name string) (models.User, error) {
	var resp models.AuthResponse
	err := c.Do(ctx, http.MethodPost, "/auth/register", models.Credentials{Email: email, Password: password, Name: name}, &resp)
	return resp.User, err
}

func (c *Client) SignOut(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Me returns the user behind the current session cookie.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	var resp models.AuthResponse
	err := c.Do(ctx, http.MethodGet, "/auth/me", nil, &resp)
	return resp.User, err
}

func (c *Client) Profile(ctx context.Context) (models.User, error) {
	var user models.User
	err := c.Do(ctx, http.MethodGet, "/users/profile", nil, &user)
	return user, err
}

func (c *Client) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (models.User, error) {
	var user models.User
	err := c.Do(ctx, http.MethodPut, "/users/profile", upd, &user)
	return user, err
}

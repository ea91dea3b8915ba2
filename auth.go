package qbt

import (
	"context"
	"net/http"

	"github.com/aqbt/qbt/params"
)

// AuthAPI groups session management endpoints.
type AuthAPI struct {
	c *Client
}

// Login submits credentials and establishes the session cookie. The server
// answers 200 for both outcomes; only the literal body "Ok." is success.
func (api *AuthAPI) Login(ctx context.Context, username, password string) error {
	d := params.New().Str("username", username).Str("password", password)
	body, err := api.c.requestText(ctx, http.MethodPost, "auth/login", nil, formBody(d))
	if err != nil {
		return err
	}
	if body != "Ok." {
		return NewAPIError(ErrorCodeLoginFailed, 0, body, nil)
	}
	return nil
}

// Logout invalidates the session cookie.
func (api *AuthAPI) Logout(ctx context.Context) error {
	return api.c.postForm(ctx, "auth/logout", nil)
}

package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

type loginResponse struct {
	AccessToken string `json:"access_token"`
	Token       string `json:"token"`
}

func (r *loginResponse) bearer() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

// Login exchanges credentials for a bearer token. The backend normally
// takes a JSON body; some deployments only accept form encoding, which
// they signal with a 422, so that shape is retried automatically.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out loginResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", nil, map[string]string{
		"username": username,
		"password": password,
	}, &out)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnprocessableEntity {
		out = loginResponse{}
		err = c.loginForm(ctx, username, password, &out)
	}
	if err != nil {
		return "", err
	}

	token := out.bearer()
	if token == "" {
		return "", errors.New("login response carried no token")
	}
	return token, nil
}

func (c *Client) loginForm(ctx context.Context, username, password string, out *loginResponse) error {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/auth/login", nil),
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.execute(req, out)
}

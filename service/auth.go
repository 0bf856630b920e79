package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"salon-admin-cli/model"
)

const xsrfCookieName = "XSRF-TOKEN"

// LoginError carries the backend's reason for refusing credentials.
type LoginError struct {
	Message string
	Fields  map[string][]string
}

func (e *LoginError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		if msgs := e.Fields[key]; len(msgs) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", key, msgs[0]))
		}
	}
	if e.Message == "" {
		return strings.Join(parts, "; ")
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// CSRFToken primes the session cookie and returns the decoded XSRF token.
func (c *Client) CSRFToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+csrfCookiePath, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch csrf cookie: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return "", &APIError{StatusCode: res.StatusCode, Status: res.Status, Endpoint: req.URL.String()}
	}

	for _, cookie := range res.Cookies() {
		if cookie.Name != xsrfCookieName {
			continue
		}
		token, err := url.QueryUnescape(cookie.Value)
		if err != nil {
			return "", fmt.Errorf("decode csrf cookie: %w", err)
		}
		return token, nil
	}
	return "", errors.New("csrf cookie missing from response")
}

// Login exchanges credentials for an API token.
func (c *Client) Login(ctx context.Context, email string, password string) (model.LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return model.LoginResult{}, errors.New("email and password are required")
	}

	var result model.LoginResult
	err := c.doJSON(ctx, apiRequest{
		method:   http.MethodPost,
		endpoint: c.baseURL + loginPath,
		body:     model.LoginRequest{Email: email, Password: password},
	}, &result)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			var body model.LoginResult
			_ = json.Unmarshal([]byte(apiErr.Body), &body)
			msg := body.Message
			if msg == "" {
				msg = "invalid email or password"
			}
			return model.LoginResult{}, &LoginError{Message: msg, Fields: body.Errors}
		}
		return model.LoginResult{}, err
	}
	if result.Token == "" {
		return model.LoginResult{}, errors.New("login response did not include a token")
	}
	return result, nil
}

// Logout revokes the token on the backend.
func (c *Client) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return c.doJSON(ctx, apiRequest{
		method:   http.MethodPost,
		endpoint: c.baseURL + logoutPath,
		token:    token,
	}, nil)
}

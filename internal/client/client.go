// Package client implements an API client for the zapbank service,
// used by the zapctl operator tool.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	ErrBadRequest         = errors.New("bad request")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrSomethingWentWrong = errors.New("something went wrong")
)

type Client struct {
	client *resty.Client
}

func New(baseURL string, opts ...Option) *Client {
	cfg := &httpConfig{
		baseURL:            baseURL,
		retryCount:         3,
		retryWaitTime:      1 * time.Second,
		retryMaxWaitTime:   10 * time.Second,
		retryAfterInterval: 2,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &Client{
		client: newHTTPClient(cfg),
	}
}

type Option func(c *httpConfig)

func WithRetryCount(count int) Option {
	return func(c *httpConfig) {
		c.retryCount = count
	}
}

func WithRetryWaitTime(waitTime time.Duration) Option {
	return func(c *httpConfig) {
		c.retryWaitTime = waitTime
	}
}

func WithRetryMaxWaitTime(maxWaitTime time.Duration) Option {
	return func(c *httpConfig) {
		c.retryMaxWaitTime = maxWaitTime
	}
}

type Session struct {
	Token   string `json:"token"`
	Created bool   `json:"created"`
}

type UserInfo struct {
	Username string `json:"username"`
	Zaps     int64  `json:"zaps"`
}

type DonationResult struct {
	Message string `json:"message"`
	Zaps    int64  `json:"zaps"`
}

// Login authenticates an account holder. An unknown username is
// auto-provisioned server-side; Created reports whether that
// happened.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	session := new(Session)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"username": username, "password": password}).
		SetResult(session).
		Post("/login")
	if err != nil {
		return nil, fmt.Errorf("client.R: %w", err)
	}

	if err := statusError(resp); err != nil {
		return nil, err
	}

	return session, nil
}

// AdminLogin exchanges the shared admin key for an admin token.
func (c *Client) AdminLogin(ctx context.Context, adminKey string) (string, error) {
	result := new(struct {
		Token string `json:"token"`
	})

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"adminKey": adminKey}).
		SetResult(result).
		Post("/admin/login")
	if err != nil {
		return "", fmt.Errorf("client.R: %w", err)
	}

	if err := statusError(resp); err != nil {
		return "", err
	}

	return result.Token, nil
}

// Donate credits amount zaps to the given username.
func (c *Client) Donate(ctx context.Context, token, username string, amount int64) (*DonationResult, error) {
	result := new(DonationResult)

	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(map[string]any{"username": username, "amount": amount}).
		SetResult(result).
		Post("/admin/donate")
	if err != nil {
		return nil, fmt.Errorf("client.R: %w", err)
	}

	if err := statusError(resp); err != nil {
		return nil, err
	}

	return result, nil
}

// ListUsers returns every account with its balance.
func (c *Client) ListUsers(ctx context.Context, token string) ([]UserInfo, error) {
	result := make([]UserInfo, 0)

	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&result).
		Get("/admin/users")
	if err != nil {
		return nil, fmt.Errorf("client.R: %w", err)
	}

	if err := statusError(resp); err != nil {
		return nil, err
	}

	return result, nil
}

// Me returns the account behind the given user token.
func (c *Client) Me(ctx context.Context, token string) (*UserInfo, error) {
	result := new(UserInfo)

	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(result).
		Get("/me")
	if err != nil {
		return nil, fmt.Errorf("client.R: %w", err)
	}

	if err := statusError(resp); err != nil {
		return nil, err
	}

	return result, nil
}

func statusError(resp *resty.Response) error {
	switch resp.StatusCode() {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrUserNotFound
	case http.StatusConflict:
		return ErrUserAlreadyExists
	default:
		return ErrSomethingWentWrong
	}
}

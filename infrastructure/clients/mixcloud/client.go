package mixcloud

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"golang.org/x/time/rate"

	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/model"
	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/repository"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/logger"
)

const apiTimeout = 30 * time.Second

type apiParams struct {
	AccessToken string `url:"access_token,omitempty"`
}

// Client calls the public Mixcloud API. Requests are throttled client side.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(baseURL string, requestsPerMinute int, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: apiTimeout}
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	every := time.Minute / time.Duration(requestsPerMinute)
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Every(every), 5),
	}
}

func (c *Client) GetCloudcast(ctx context.Context, key, accessToken string) (*model.Cloudcast, error) {
	var cloudcast model.Cloudcast
	if err := c.get(ctx, "get cloudcast", "/"+strings.Trim(key, "/")+"/", accessToken, &cloudcast); err != nil {
		return nil, err
	}
	if cloudcast.Key == "" {
		return nil, fmt.Errorf("%w: incomplete cloudcast data", ErrAPIRequestFailed)
	}
	return &cloudcast, nil
}

// GetMe returns the account that owns accessToken.
func (c *Client) GetMe(ctx context.Context, accessToken string) (*model.MixcloudUser, error) {
	var user model.MixcloudUser
	if err := c.get(ctx, "get me", "/me/", accessToken, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) get(ctx context.Context, operation, path, accessToken string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}

	values, err := query.Values(apiParams{AccessToken: accessToken})
	if err != nil {
		return err
	}
	endpoint := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}
	// logged without the query string so the access token never reaches the logs
	logURL := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Operation: operation, URL: logURL, Err: err}
	}
	defer resp.Body.Close()

	logger.FromContext(ctx).WithFields(map[string]interface{}{
		"url":           logURL,
		"status":        resp.StatusCode,
		"authenticated": accessToken != "",
		"duration":      time.Since(start).String(),
	}).Debug("Mixcloud API response")

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &APIError{Operation: operation, URL: logURL, StatusCode: resp.StatusCode, Err: ErrShowNotFound}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &APIError{Operation: operation, URL: logURL, StatusCode: resp.StatusCode, Err: ErrAuthenticationFailed}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &APIError{Operation: operation, URL: logURL, StatusCode: resp.StatusCode, Err: ErrRateLimited}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &APIError{Operation: operation, URL: logURL, StatusCode: resp.StatusCode, Err: ErrAPIRequestFailed}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Operation: operation, URL: logURL, StatusCode: resp.StatusCode, Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{Operation: operation, URL: logURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: invalid JSON: %v", ErrAPIRequestFailed, err)}
	}
	return nil
}

var _ repository.IMixcloudAPI = (*Client)(nil)

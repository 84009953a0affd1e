package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/lad94220/ML-Lab1/pkg/insights"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Detail)
}

type Info struct {
	Message string `json:"message"`
	Model   string `json:"model"`
	Version string `json:"version"`
}

type Health struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

type Client struct {
	base *url.URL
	http *http.Client
}

// Dial prepares a client for the API at addr, which is either a URL or a
// host:port. No request is made.
func Dial(addr string) (*Client, error) {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("parse address: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("address %q has no host", addr)
	}
	return &Client{
		base: u,
		http: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (c *Client) Info(ctx context.Context) (*Info, error) {
	var out Info
	if err := c.get(ctx, "/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.get(ctx, "/healthz", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Predict(ctx context.Context, carat float64, cut, color, clarity string) (float64, error) {
	q := url.Values{}
	q.Set("carat", strconv.FormatFloat(carat, 'f', -1, 64))
	q.Set("cut", cut)
	q.Set("color", color)
	q.Set("clarity", clarity)

	var out struct {
		PredictedPrice float64 `json:"predicted_price"`
	}
	if err := c.get(ctx, "/api/predict", q, &out); err != nil {
		return 0, err
	}
	return out.PredictedPrice, nil
}

func (c *Client) Insights(ctx context.Context) (*insights.Insights, error) {
	var out insights.Insights
	if err := c.get(ctx, "/api/insights", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.base.JoinPath(path)
	if q != nil {
		u.RawQuery = q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		var e struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(body, &e) != nil || e.Detail == "" {
			e.Detail = strings.TrimSpace(string(body))
		}
		return &APIError{Status: resp.StatusCode, Detail: e.Detail}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

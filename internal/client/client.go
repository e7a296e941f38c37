package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/idilsaglam/freezers/internal/model"
)

// DefaultAPI is the base URL used when no host is configured.
const DefaultAPI = "http://localhost:1228/api"

// RequestIDHeader carries a fresh id on every request so client and
// server logs can be matched.
const RequestIDHeader = "X-Request-Id"

// maxErrorBody caps how much of an error response is kept for messages.
const maxErrorBody = 512

// Client talks to the freezer inventory REST API.
type Client struct {
	api  string
	http *http.Client
	log  zerolog.Logger
}

// New returns a client for api. A nil hc gets a client with a cookie jar
// and the given timeout so the session opened by Login is reused.
func New(api string, hc *http.Client, timeout time.Duration, logger zerolog.Logger) *Client {
	if hc == nil {
		jar, _ := cookiejar.New(nil)
		hc = &http.Client{Jar: jar, Timeout: timeout}
	}
	return &Client{
		api:  strings.TrimRight(api, "/"),
		http: hc,
		log:  logger.With().Str("component", "client").Logger(),
	}
}

// API returns the base URL.
func (c *Client) API() string { return c.api }

func (c *Client) endpoint(segments ...string) string {
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, c.api)
	for _, s := range segments {
		parts = append(parts, url.PathEscape(s))
	}
	return strings.Join(parts, "/")
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	id := uuid.NewString()
	req.Header.Set(RequestIDHeader, id)

	c.log.Debug().Str("method", method).Str("url", endpoint).Str("request_id", id).Msg("request")
	return c.http.Do(req)
}

// expectOK drains and closes resp on failure and reports the status.
func expectOK(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{Code: resp.StatusCode, Status: resp.Status, Body: strings.TrimSpace(string(b))}
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if err := expectOK(resp); err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}

// Login opens a session for login.
func (c *Client) Login(ctx context.Context, login string) error {
	resp, err := c.do(ctx, http.MethodPost, c.endpoint("auth"), map[string]string{"login": login})
	if err != nil {
		return c.wrap("login", err)
	}
	if err := expectOK(resp); err != nil {
		return c.wrap("login", err)
	}
	defer resp.Body.Close()
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return c.wrap("login", err)
	}
	return nil
}

// Freezers lists every freezer id.
func (c *Client) Freezers(ctx context.Context) ([]string, error) {
	var ids []string
	if err := c.getJSON(ctx, c.endpoint("freezers"), &ids); err != nil {
		return nil, c.wrap("freezers", err)
	}
	return ids, nil
}

// FreezersBy lists one page of freezer ids. Zero limit or offset is left
// to the server default.
func (c *Client) FreezersBy(ctx context.Context, limit, offset int) ([]string, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	endpoint := c.endpoint("freezers")
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	var ids []string
	if err := c.getJSON(ctx, endpoint, &ids); err != nil {
		return nil, c.wrap("freezers by", err)
	}
	return ids, nil
}

// Freezer fetches one freezer.
func (c *Client) Freezer(ctx context.Context, id string) (model.Freezer, error) {
	var f model.Freezer
	if err := c.getJSON(ctx, c.endpoint("freezers", id), &f); err != nil {
		return model.Freezer{}, c.wrap("freezer", err)
	}
	return f, nil
}

// ImageBytes fetches the raw image of a freezer.
func (c *Client) ImageBytes(ctx context.Context, id string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, c.endpoint("freezers", id, "image"), nil)
	if err != nil {
		return nil, c.wrap("image", err)
	}
	if err := expectOK(resp); err != nil {
		return nil, c.wrap("image", err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.wrap("image", err)
	}
	return b, nil
}

// UpdateFreezer submits f. A nil freezer with a nil error means the
// server refused the update, usually for lack of privileges.
func (c *Client) UpdateFreezer(ctx context.Context, f model.Freezer) (*model.Freezer, error) {
	resp, err := c.do(ctx, http.MethodPost, c.endpoint("freezers", "update"), f)
	if err != nil {
		return nil, c.wrap("update freezer", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn().Str("id", f.Name).Int("status", resp.StatusCode).Msg("update refused")
		return nil, nil
	}
	var out model.Freezer
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, c.wrap("update freezer", err)
	}
	return &out, nil
}

// DeleteFreezer removes a freezer and reports whether the server accepted it.
func (c *Client) DeleteFreezer(ctx context.Context, id string) (bool, error) {
	resp, err := c.do(ctx, http.MethodDelete, c.endpoint("freezers", id), nil)
	if err != nil {
		return false, c.wrap("delete freezer", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

// Product looks up a catalog product. A missing product is (nil, nil).
func (c *Client) Product(ctx context.Context, id string) (*model.Product, error) {
	resp, err := c.do(ctx, http.MethodGet, c.endpoint("products", id), nil)
	if err != nil {
		return nil, c.wrap("product", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, nil
	}
	if err := expectOK(resp); err != nil {
		return nil, c.wrap("product", err)
	}
	defer resp.Body.Close()
	var p model.Product
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, c.wrap("product", err)
	}
	return &p, nil
}

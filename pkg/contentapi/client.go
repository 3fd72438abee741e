// Package contentapi talks to the external service that cleans submitted
// documentation, generates learning material, grades challenges and keeps
// per-user progress.
package contentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// API is the surface services depend on.
type API interface {
	FetchCleanDoc(ctx context.Context, source, userID string) (*Doc, error)
	GenerateAll(ctx context.Context, text, userID, docID string) (*Generated, error)
	FetchUserDocs(ctx context.Context, userID string) ([]Doc, error)
	GetProgress(ctx context.Context, userID string) (*Progress, error)
	UpdateProgress(ctx context.Context, userID string, xpEarned int, challengeTitle string) (*Progress, error)
	Leaderboard(ctx context.Context) ([]LeaderboardEntry, error)
	SubmitChallenge(ctx context.Context, userID, docID, solution string) (*Submission, error)
	GenerateReport(ctx context.Context, userID string) (string, error)
	DeleteDoc(ctx context.Context, userID, docID string) error
	DeleteAccount(ctx context.Context, userID string) error
}

type Config struct {
	BaseURL string
	// Timeout applies per call; generation endpoints are slow.
	Timeout time.Duration
	// RatePerSecond limits outbound calls; zero disables the limiter.
	RatePerSecond float64
	Burst         int
}

type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	timeout time.Duration
}

var _ API = (*Client)(nil)

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		limiter: limiter,
		timeout: timeout,
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("content api %s: %w", path, err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("content api %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("content api %s: read body: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("content api %s: decode response: %w", path, err)
	}
	return nil
}

func (c *Client) FetchCleanDoc(ctx context.Context, source, userID string) (*Doc, error) {
	var resp struct {
		Doc Doc `json:"doc"`
	}
	err := c.do(ctx, http.MethodPost, "/api/fetch_clean_doc", nil, map[string]string{
		"source": source,
		"userId": userID,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Doc, nil
}

func (c *Client) GenerateAll(ctx context.Context, text, userID, docID string) (*Generated, error) {
	var resp Generated
	err := c.do(ctx, http.MethodPost, "/api/generate_all", nil, map[string]string{
		"text":   text,
		"userId": userID,
		"docId":  docID,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) FetchUserDocs(ctx context.Context, userID string) ([]Doc, error) {
	var resp struct {
		Docs []Doc `json:"docs"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/fetch_user_docs", url.Values{"userId": {userID}}, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Docs == nil {
		return []Doc{}, nil
	}
	return resp.Docs, nil
}

func (c *Client) GetProgress(ctx context.Context, userID string) (*Progress, error) {
	var resp Progress
	if err := c.do(ctx, http.MethodGet, "/api/get_progress", url.Values{"user_id": {userID}}, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdateProgress(ctx context.Context, userID string, xpEarned int, challengeTitle string) (*Progress, error) {
	var resp Progress
	err := c.do(ctx, http.MethodPost, "/api/update_progress", nil, map[string]any{
		"user_id":         userID,
		"xp_earned":       xpEarned,
		"challenge_title": challengeTitle,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	var resp struct {
		Leaderboard []LeaderboardEntry `json:"leaderboard"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/leaderboard", nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Leaderboard == nil {
		return []LeaderboardEntry{}, nil
	}
	return resp.Leaderboard, nil
}

func (c *Client) SubmitChallenge(ctx context.Context, userID, docID, solution string) (*Submission, error) {
	var resp Submission
	err := c.do(ctx, http.MethodPost, "/api/submit_challenge", nil, map[string]string{
		"user_id":       userID,
		"doc_id":        docID,
		"user_solution": solution,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GenerateReport(ctx context.Context, userID string) (string, error) {
	var resp struct {
		Report string `json:"report"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/generate_report", nil, map[string]string{"user_id": userID}, &resp); err != nil {
		return "", err
	}
	return resp.Report, nil
}

func (c *Client) DeleteDoc(ctx context.Context, userID, docID string) error {
	return c.do(ctx, http.MethodPost, "/api/delete-doc", nil, map[string]string{
		"userId": userID,
		"docId":  docID,
	}, nil)
}

func (c *Client) DeleteAccount(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodPost, "/api/delete-account", nil, map[string]string{"userId": userID}, nil)
}

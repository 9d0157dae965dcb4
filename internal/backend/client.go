// Package backend is the HTTP client for the remote finance API. It owns
// authentication, the single refresh-and-retry on 401, and the mapping of
// transport failures onto the error taxonomy callers branch on.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fino/internal/core"
	"fino/internal/log"
)

// Config holds the client's connection settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the remote API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *TokenSource
	logger     *log.Logger
}

// New creates a client. A nil logger falls back to the default config.
func New(cfg Config, tokens *TokenSource, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		logger:     logger.WithComponent(log.ComponentBackend),
	}
}

// do performs one authenticated request. On a 401 it refreshes the token
// and retries exactly once; a second 401 surfaces as ErrUnauthenticated.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	token, err := c.tokens.Access()
	if err != nil {
		return err
	}

	status, retryable, err := c.send(ctx, method, path, body, out, token)
	if err == nil || !retryable {
		return err
	}
	if status != http.StatusUnauthorized {
		return err
	}

	fresh, refreshErr := c.tokens.refreshRequest(ctx, c.httpClient, c.baseURL, token)
	if refreshErr != nil {
		c.logger.WarnContext(ctx, "token refresh failed",
			log.FieldPath, path, log.FieldError, refreshErr.Error())
		return refreshErr
	}

	_, _, err = c.send(ctx, method, path, body, out, fresh)
	return err
}

// send performs the raw HTTP exchange once. retryable reports whether the
// failure is a candidate for the refresh-and-retry path.
func (c *Client) send(ctx context.Context, method, path string, body, out any, token string) (status int, retryable bool, err error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, false, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, false, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, false, &APIError{Kind: ErrUnreachable, Method: method, Path: path, Detail: err.Error()}
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "request completed",
		log.FieldMethod, method,
		log.FieldPath, path,
		log.FieldStatusCode, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{
			Kind:       classify(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Detail:     strings.TrimSpace(string(detail)),
		}
		return resp.StatusCode, resp.StatusCode == http.StatusUnauthorized, apiErr
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, false, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return resp.StatusCode, false, nil
}

// Transactions fetches every transaction.
func (c *Client) Transactions(ctx context.Context) ([]core.Transaction, error) {
	var out []core.Transaction
	if err := c.do(ctx, http.MethodGet, "/transactions/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTransaction posts a new transaction and returns the stored record.
func (c *Client) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	var out core.Transaction
	if err := c.do(ctx, http.MethodPost, "/transactions/", t, &out); err != nil {
		return core.Transaction{}, err
	}
	return out, nil
}

// UpdateTransaction replaces a transaction by ID.
func (c *Client) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	var out core.Transaction
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/transactions/%d/", t.ID), t, &out); err != nil {
		return core.Transaction{}, err
	}
	return out, nil
}

// DeleteTransaction removes a transaction by ID.
func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/transactions/%d/", id), nil, nil)
}

// Budgets fetches every budget.
func (c *Client) Budgets(ctx context.Context) ([]core.Budget, error) {
	var out []core.Budget
	if err := c.do(ctx, http.MethodGet, "/budgets/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateBudget posts a new budget.
func (c *Client) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	var out core.Budget
	if err := c.do(ctx, http.MethodPost, "/budgets/", b, &out); err != nil {
		return core.Budget{}, err
	}
	return out, nil
}

// UpdateBudget replaces a budget by ID.
func (c *Client) UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	var out core.Budget
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/budgets/%d/", b.ID), b, &out); err != nil {
		return core.Budget{}, err
	}
	return out, nil
}

// DeleteBudget removes a budget by ID.
func (c *Client) DeleteBudget(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/budgets/%d/", id), nil, nil)
}

// Goals fetches every goal with its nested strategy items and
// contributions.
func (c *Client) Goals(ctx context.Context) ([]core.Goal, error) {
	var out []core.Goal
	if err := c.do(ctx, http.MethodGet, "/goals/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Goal fetches a single goal by ID.
func (c *Client) Goal(ctx context.Context, id int64) (core.Goal, error) {
	var out core.Goal
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/goals/%d/", id), nil, &out); err != nil {
		return core.Goal{}, err
	}
	return out, nil
}

// CreateGoal posts a new goal.
func (c *Client) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	var out core.Goal
	if err := c.do(ctx, http.MethodPost, "/goals/", g, &out); err != nil {
		return core.Goal{}, err
	}
	return out, nil
}

// UpdateGoal replaces a goal by ID.
func (c *Client) UpdateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	var out core.Goal
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/goals/%d/", g.ID), g, &out); err != nil {
		return core.Goal{}, err
	}
	return out, nil
}

// DeleteGoal removes a goal by ID.
func (c *Client) DeleteGoal(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/goals/%d/", id), nil, nil)
}

// CreateContribution records a deposit toward a goal. The server owns the
// goal's running total; callers re-fetch the goal to observe it.
func (c *Client) CreateContribution(ctx context.Context, contrib core.Contribution) (core.Contribution, error) {
	var out core.Contribution
	if err := c.do(ctx, http.MethodPost, "/contributions/", contrib, &out); err != nil {
		return core.Contribution{}, err
	}
	return out, nil
}

// CreateStrategyItem adds a plan line to a goal's strategy.
func (c *Client) CreateStrategyItem(ctx context.Context, item core.StrategyItem) (core.StrategyItem, error) {
	var out core.StrategyItem
	if err := c.do(ctx, http.MethodPost, "/strategy/", item, &out); err != nil {
		return core.StrategyItem{}, err
	}
	return out, nil
}

// UpdateStrategyItem replaces a strategy item by ID.
func (c *Client) UpdateStrategyItem(ctx context.Context, item core.StrategyItem) (core.StrategyItem, error) {
	var out core.StrategyItem
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/strategy/%d/", item.ID), item, &out); err != nil {
		return core.StrategyItem{}, err
	}
	return out, nil
}

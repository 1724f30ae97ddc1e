package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/rs/zerolog/log"
)

type restClient struct {
	cfg        Config
	httpClient *http.Client
}

func newRESTClient(cfg Config) *restClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 1000
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 20
	}
	cfg.Retry = cfg.Retry.normalized()
	return &restClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *restClient) authenticateRequest(req *http.Request) {
	if c.cfg.PAT != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.PAT)
		return
	}
	if c.cfg.Email != "" && c.cfg.Token != "" {
		req.SetBasicAuth(c.cfg.Email, c.cfg.Token)
	}
}

// do executes one GET request and classifies the response status into
// the error taxonomy. The caller owns retrying transient failures.
func (c *restClient) do(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	c.authenticateRequest(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Only caller cancellation aborts outright. A fired per-page
		// deadline reaches here as context.DeadlineExceeded and stays
		// retryable like any other transport failure.
		if errors.Is(err, context.Canceled) {
			return err
		}
		return &TransientError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return classifyStatus(resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode jira response: %w", err)
	}
	return nil
}

func classifyStatus(status int, body string) error {
	switch {
	case status == http.StatusBadRequest:
		return &QueryRejectedError{Status: status, Body: body}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &AuthError{Status: status}
	case status == http.StatusNotFound:
		return &NotFoundError{Status: status}
	case status == http.StatusTooManyRequests || status >= 500:
		return &TransientError{Status: status}
	default:
		return fmt.Errorf("jira api returned status %d: %s", status, body)
	}
}

func (c *restClient) SearchPage(ctx context.Context, jql string, fields []string, startAt, maxResults int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("jql", jql)
	params.Set("startAt", fmt.Sprintf("%d", startAt))
	params.Set("maxResults", fmt.Sprintf("%d", maxResults))
	if len(fields) > 0 {
		params.Set("fields", strings.Join(fields, ","))
	}

	searchURL := fmt.Sprintf("%s/rest/api/2/search?%s", strings.TrimRight(c.cfg.BaseURL, "/"), params.Encode())
	log.Debug().Str("url", searchURL).Int("startAt", startAt).Msg("Jira search page")

	t := timeout.New[*SearchResponse](timeout.Config{
		DefaultTimeout: c.cfg.Timeout,
	})
	return t.Execute(ctx, c.cfg.Timeout, func(ctx context.Context) (*SearchResponse, error) {
		var result SearchResponse
		if err := c.do(ctx, searchURL, &result); err != nil {
			if qr, ok := err.(*QueryRejectedError); ok {
				qr.JQL = jql
			}
			return nil, err
		}
		return &result, nil
	})
}

// retryablePage reports whether a single page attempt may be retried.
// Beyond the transient taxonomy this covers the per-page deadline,
// which can surface as a bare context.DeadlineExceeded (or a net
// timeout) when the timeout window closes before the transport error
// does. The caller rules out parent-context expiry first.
func retryablePage(err error) bool {
	if IsTransient(err) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

// searchPageRetry fetches one page, retrying transient failures with
// bounded exponential backoff. Non-transient failures surface
// immediately.
func (c *restClient) searchPageRetry(ctx context.Context, jql string, fields []string, startAt, maxResults int) (*SearchResponse, error) {
	var lastErr error
	for attempt := 0; attempt < c.cfg.Retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			wait := c.cfg.Retry.Backoff(attempt - 1)
			log.Debug().Dur("wait", wait).Int("attempt", attempt).Int("startAt", startAt).Msg("Retrying Jira page")
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
		}
		resp, err := c.SearchPage(ctx, jql, fields, startAt, maxResults)
		if err == nil {
			return resp, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !retryablePage(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("page fetch failed after %d attempts: %w", c.cfg.Retry.MaxAttempts, lastErr)
}

func (c *restClient) SearchAll(ctx context.Context, jql string, fields []string) ([]RawRecord, error) {
	var records []RawRecord
	startAt := 0
	pages := 0

	for startAt < c.cfg.MaxResults {
		if pages >= c.cfg.MaxPages {
			return nil, &ResultTooLargeError{Pages: pages, MaxPages: c.cfg.MaxPages}
		}

		size := c.cfg.PageSize
		if remaining := c.cfg.MaxResults - startAt; remaining < size {
			size = remaining
		}

		resp, err := c.searchPageRetry(ctx, jql, fields, startAt, size)
		if err != nil {
			return nil, err
		}
		records = append(records, resp.Issues...)
		pages++

		if len(resp.Issues) < size {
			break
		}
		startAt += len(resp.Issues)
	}

	log.Info().Int("records", len(records)).Int("pages", pages).Msg("Jira search complete")
	return records, nil
}

func (c *restClient) Boards(ctx context.Context, projectKey string) ([]Board, error) {
	params := url.Values{}
	if projectKey != "" {
		params.Set("projectKeyOrId", projectKey)
	}
	params.Set("maxResults", "50")

	boardURL := fmt.Sprintf("%s/rest/agile/1.0/board?%s", strings.TrimRight(c.cfg.BaseURL, "/"), params.Encode())
	var result struct {
		Values []Board `json:"values"`
	}
	if err := c.do(ctx, boardURL, &result); err != nil {
		return nil, fmt.Errorf("failed to list boards for %q: %w", projectKey, err)
	}
	return result.Values, nil
}

func (c *restClient) Sprints(ctx context.Context, boardID int, state string, startAt, maxResults int) (*SprintPage, error) {
	params := url.Values{}
	if state != "" {
		params.Set("state", state)
	}
	if startAt > 0 {
		params.Set("startAt", fmt.Sprintf("%d", startAt))
	}
	if maxResults > 0 {
		params.Set("maxResults", fmt.Sprintf("%d", maxResults))
	}

	sprintURL := fmt.Sprintf("%s/rest/agile/1.0/board/%d/sprint?%s", strings.TrimRight(c.cfg.BaseURL, "/"), boardID, params.Encode())
	var result SprintPage
	if err := c.do(ctx, sprintURL, &result); err != nil {
		return nil, fmt.Errorf("failed to list sprints for board %d: %w", boardID, err)
	}
	return &result, nil
}

package jira

import (
	"context"
	"time"
)

// Config holds the authentication and connection settings for Jira.
type Config struct {
	BaseURL string

	// Basic auth (Jira Cloud: email + API token)
	Email string
	Token string

	// Personal Access Token (Jira Data Center). Takes precedence over basic auth.
	PAT string

	// Performance Settings
	Timeout    time.Duration
	PageSize   int
	MaxResults int
	MaxPages   int
	Retry      RetryPolicy
}

// Client is the interface for interacting with Jira.
type Client interface {
	// SearchPage executes a single page of a JQL search.
	SearchPage(ctx context.Context, jql string, fields []string, startAt, maxResults int) (*SearchResponse, error)

	// SearchAll paginates a JQL search to completion, retrying transient
	// page failures. The returned records preserve page-then-record order.
	SearchAll(ctx context.Context, jql string, fields []string) ([]RawRecord, error)

	// Boards lists the Agile boards attached to a project.
	Boards(ctx context.Context, projectKey string) ([]Board, error)

	// Sprints lists one page of a board's sprints filtered by state
	// (active, closed, future or empty for all).
	Sprints(ctx context.Context, boardID int, state string, startAt, maxResults int) (*SprintPage, error)
}

// NewClient creates a new Jira client based on the provided configuration.
func NewClient(cfg Config) Client {
	return newRESTClient(cfg)
}

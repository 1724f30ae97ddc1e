package jira

import (
	"errors"
	"fmt"
)

// AuthError indicates the credentials were rejected (401/403). Fatal,
// never retried.
type AuthError struct {
	Status int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("jira authentication failed (status %d): check JIRA_PAT or JIRA_EMAIL/JIRA_TOKEN", e.Status)
}

// QueryRejectedError indicates the remote service rejected a specific
// JQL string as malformed (400). The caller should fall back to the
// next query variant instead of retrying this one.
type QueryRejectedError struct {
	JQL    string
	Status int
	Body   string
}

func (e *QueryRejectedError) Error() string {
	return fmt.Sprintf("jira rejected query (status %d): %s", e.Status, e.JQL)
}

// NotFoundError indicates the requested resource does not exist (404),
// typically a board or sprint that was deleted or never visible.
type NotFoundError struct {
	Status int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("jira resource not found (status %d)", e.Status)
}

// TransientError wraps a network failure or a 429/5xx response. Safe to
// retry with backoff.
type TransientError struct {
	Status int
	Err    error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transient jira failure: %v", e.Err)
	}
	return fmt.Sprintf("transient jira failure (status %d)", e.Status)
}

func (e *TransientError) Unwrap() error { return e.Err }

// ResultTooLargeError guards against unbounded pagination.
type ResultTooLargeError struct {
	Pages    int
	MaxPages int
}

func (e *ResultTooLargeError) Error() string {
	return fmt.Sprintf("jira result too large: pagination exceeded %d pages", e.MaxPages)
}

// IsTransient reports whether err may be resolved by retrying.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

package jira

import "time"

// SearchResponse is the top-level container for Jira search results.
type SearchResponse struct {
	Total      int         `json:"total"`
	StartAt    int         `json:"startAt"`
	MaxResults int         `json:"maxResults"`
	Issues     []RawRecord `json:"issues"`
}

// RawRecord is a single issue as returned by the search API. Field
// availability and value shapes vary per project and instance; the
// normalizer is the only consumer of these payloads.
type RawRecord struct {
	Key    string    `json:"key"`
	Fields RawFields `json:"fields"`
}

// RawFields contains the specific fields we request. Story-point custom
// fields are deliberately untyped: different instances return numbers,
// strings or nothing at all under drifting field IDs.
type RawFields struct {
	Summary   string `json:"summary"`
	IssueType struct {
		Name    string `json:"name"`
		Subtask bool   `json:"subtask"`
	} `json:"issuetype"`
	Status struct {
		ID             string `json:"id"`
		Name           string `json:"name"`
		StatusCategory struct {
			Key string `json:"key"`
		} `json:"statusCategory"`
	} `json:"status"`
	Priority *struct {
		Name string `json:"name"`
	} `json:"priority,omitempty"`
	Resolution *struct {
		Name string `json:"name"`
	} `json:"resolution,omitempty"`
	Assignee *struct {
		Name         string `json:"name,omitempty"`
		DisplayName  string `json:"displayName,omitempty"`
		EmailAddress string `json:"emailAddress,omitempty"`
	} `json:"assignee,omitempty"`
	Created        string `json:"created"`
	ResolutionDate string `json:"resolutiondate"`

	CF10016 any `json:"customfield_10016,omitempty"`
	CF10026 any `json:"customfield_10026,omitempty"`
	CF10031 any `json:"customfield_10031,omitempty"`
	CF10010 any `json:"customfield_10010,omitempty"`
}

// CustomField returns the raw value of a custom field by identifier.
func (f RawFields) CustomField(id string) any {
	switch id {
	case "customfield_10016":
		return f.CF10016
	case "customfield_10026":
		return f.CF10026
	case "customfield_10031":
		return f.CF10031
	case "customfield_10010":
		return f.CF10010
	}
	return nil
}

// Board is an Agile board attached to a project.
type Board struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// SprintDTO is a sprint as returned by the Agile API.
type SprintDTO struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	State     string `json:"state"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// SprintPage is one page of a board's sprint listing.
type SprintPage struct {
	Values []SprintDTO `json:"values"`
	IsLast bool        `json:"isLast"`
}

// ParseTime is a helper for the strict Jira time format.
func ParseTime(s string) (time.Time, error) {
	return time.Parse("2006-01-02T15:04:05.000-0700", s)
}

package query

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidSpec marks caller errors: a spec missing the parameters its
// purpose requires. Not retried, surfaced immediately.
var ErrInvalidSpec = errors.New("invalid query spec")

// SprintFieldStyle selects which family of sprint clauses to emit.
// Some projects expose the sprint as a plain custom field instead of
// the Sprint JQL function.
type SprintFieldStyle int

const (
	StyleAuto SprintFieldStyle = iota
	StyleSprintField
	StyleCustomField
)

// Spec describes one query request. Immutable once built; Build never
// mutates it.
type Spec struct {
	Purpose  Purpose
	Project  string
	SprintID int

	// From/To bound HistoricalRange, formatted 2006-01-02.
	From string
	To   string

	SprintFieldStyle SprintFieldStyle
}

// Variant is a concrete query string derived from a Spec. Variants are
// ordered by decreasing confidence; Rank is the position in that order.
type Variant struct {
	JQL    string
	Fields []string
	Rank   int
}

const dateLayout = "2006-01-02"

// Build expands a spec into its ordered variant list. Output is
// deterministic: equal specs always produce identical variants.
func Build(s Spec) ([]Variant, error) {
	if strings.TrimSpace(s.Project) == "" {
		return nil, fmt.Errorf("%w: project is required", ErrInvalidSpec)
	}

	var jqls []string
	switch s.Purpose {
	case ValidateProject:
		jqls = []string{validateJQL(s.Project)}
	case ListSprints:
		jqls = []string{projectTerm(s.Project) + " AND Sprint is not EMPTY ORDER BY created DESC"}
	case SprintIssues:
		if s.SprintID <= 0 {
			return nil, fmt.Errorf("%w: sprint id is required for purpose %s", ErrInvalidSpec, s.Purpose)
		}
		jqls = sprintJQLVariants(s.Project, s.SprintID, s.SprintFieldStyle)
	case HistoricalRange:
		if s.From == "" || s.To == "" {
			return nil, fmt.Errorf("%w: both dates are required for purpose %s", ErrInvalidSpec, s.Purpose)
		}
		from, err := time.Parse(dateLayout, s.From)
		if err != nil {
			return nil, fmt.Errorf("%w: bad from date %q", ErrInvalidSpec, s.From)
		}
		to, err := time.Parse(dateLayout, s.To)
		if err != nil {
			return nil, fmt.Errorf("%w: bad to date %q", ErrInvalidSpec, s.To)
		}
		if to.Before(from) {
			return nil, fmt.Errorf("%w: date range %s..%s is inverted", ErrInvalidSpec, s.From, s.To)
		}
		jqls = historyJQLVariants(s.Project, s.From, s.To)
	default:
		return nil, fmt.Errorf("%w: unknown purpose", ErrInvalidSpec)
	}

	fields := Fields(s.Purpose)
	variants := make([]Variant, len(jqls))
	for i, jql := range jqls {
		variants[i] = Variant{JQL: jql, Fields: fields, Rank: i}
	}
	return variants, nil
}

// projectTerm quotes the project clause unless the key is a plain
// all-uppercase token, matching how Jira treats bare identifiers.
func projectTerm(project string) string {
	if project == strings.ToUpper(project) &&
		project != strings.ToLower(project) &&
		!strings.ContainsAny(project, " []") {
		return "project = " + project
	}
	return fmt.Sprintf("project = %q", project)
}

func validateJQL(project string) string {
	return projectTerm(project) + " ORDER BY created DESC"
}

// sprintJQLVariants returns the sprint clause formulations tried in
// priority order. The trailing ORDER BY keeps result ordering stable
// across variants.
func sprintJQLVariants(project string, sprintID int, style SprintFieldStyle) []string {
	proj := projectTerm(project)

	if style == StyleAuto && strings.Contains(strings.ToLower(project), "credcesta") {
		style = StyleCustomField
	}

	var clauses []string
	if style == StyleCustomField {
		clauses = []string{
			fmt.Sprintf("%s AND cf[10020] = %d", proj, sprintID),
			fmt.Sprintf("%s AND \"cf[10020]\" = %d", proj, sprintID),
			fmt.Sprintf("%s AND customfield_10020 = %d", proj, sprintID),
			fmt.Sprintf("%s AND \"customfield_10020\" = %d", proj, sprintID),
		}
	} else {
		clauses = []string{
			fmt.Sprintf("%s AND Sprint = %d", proj, sprintID),
			fmt.Sprintf("%s AND \"Sprint\" = %d", proj, sprintID),
			fmt.Sprintf("%s AND sprint = %d", proj, sprintID),
			fmt.Sprintf("%s AND \"Sprint\" in (%d)", proj, sprintID),
			fmt.Sprintf("%s AND Sprint in (%d)", proj, sprintID),
			fmt.Sprintf("%s AND cf[10020] = %d", proj, sprintID),
			fmt.Sprintf("%s AND cf[10010] = %d", proj, sprintID),
		}
	}

	for i, c := range clauses {
		clauses[i] = c + " ORDER BY cf[10031] ASC"
	}
	return clauses
}

// historyJQLVariants returns the strict historical query first, then a
// relaxed form without the story-points clause for instances where
// that field name is not recognized.
func historyJQLVariants(project, from, to string) []string {
	proj := projectTerm(project)
	base := fmt.Sprintf(
		"%s AND created >= %q AND created <= %q "+
			"AND resolution IS NOT EMPTY AND status NOT IN (Cancelado) "+
			"AND issuetype IN (Story, \"Debito Tecnico\", Spike)",
		proj, from, to+" 23:59",
	)
	return []string{
		base + " AND \"Story Points[Number]\" IS NOT EMPTY ORDER BY resolution DESC",
		base + " ORDER BY resolution DESC",
	}
}

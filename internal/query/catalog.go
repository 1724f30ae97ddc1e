package query

import "strconv"

// Purpose identifies what a query is for. Each purpose binds an exact
// field list: fewer fields risks missing data, more risks
// unsupported-field rejections from drifting instances.
type Purpose int

const (
	ValidateProject Purpose = iota
	ListSprints
	HistoricalRange
	SprintIssues
)

func (p Purpose) String() string {
	switch p {
	case ValidateProject:
		return "validate"
	case ListSprints:
		return "sprints"
	case HistoricalRange:
		return "history"
	case SprintIssues:
		return "sprint"
	}
	return "unknown"
}

func (p Purpose) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(p.String())), nil
}

// defaultFields is the shared base list. The custom fields cover the
// story-point, epic-link, official-assignee and sprint slots seen
// across instances.
var defaultFields = []string{
	"key", "summary", "issuetype", "status", "assignee",
	"created", "resolved", "resolutiondate", "resolution",
	"customfield_10016",
	"customfield_10026",
	"customfield_10031",
	"customfield_10010",
}

// storyPointFields are the candidate custom fields for story points,
// probed in this order by the normalizer.
var storyPointFields = []string{
	"customfield_10016",
	"customfield_10026",
	"customfield_10031",
	"customfield_10010",
}

// Fields returns the exact ordered field list for a purpose.
func Fields(p Purpose) []string {
	switch p {
	case ValidateProject:
		return []string{"key"}
	case SprintIssues:
		out := make([]string, 0, len(defaultFields)+1)
		out = append(out, defaultFields...)
		out = append(out, "priority")
		return out
	default:
		out := make([]string, len(defaultFields))
		copy(out, defaultFields)
		return out
	}
}

// StoryPointFields returns the candidate story-point field IDs in
// catalog order.
func StoryPointFields() []string {
	out := make([]string, len(storyPointFields))
	copy(out, storyPointFields)
	return out
}

package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"sprintlens/internal/jira"
	"sprintlens/internal/query"
)

// ItemType buckets the heterogeneous issue-type names seen across
// projects. Unknown names land in TypeOther, never in an error.
type ItemType int

const (
	TypeStory ItemType = iota
	TypeTechnicalDebt
	TypeSpike
	TypeBug
	TypeOther
)

func (t ItemType) String() string {
	switch t {
	case TypeStory:
		return "Story"
	case TypeTechnicalDebt:
		return "Technical Debt"
	case TypeSpike:
		return "Spike"
	case TypeBug:
		return "Bug"
	}
	return "Other"
}

func (t ItemType) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

// StatusBucket collapses workflow statuses into four stages.
type StatusBucket int

const (
	StatusTodo StatusBucket = iota
	StatusInProgress
	StatusDone
	StatusOther
)

func (s StatusBucket) String() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	}
	return "Other"
}

func (s StatusBucket) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(s.String())), nil
}

// Record is the canonical representation of one tracked issue.
// Invariants: Resolved is set only when Status is StatusDone;
// StoryPoints, when set, is >= 0.
type Record struct {
	Key         string       `json:"key"`
	Type        ItemType     `json:"type"`
	TypeName    string       `json:"typeName,omitempty"`
	Status      StatusBucket `json:"status"`
	StatusName  string       `json:"statusName,omitempty"`
	Summary     string       `json:"summary,omitempty"`
	StoryPoints *float64     `json:"storyPoints,omitempty"`
	Assignee    string       `json:"assignee,omitempty"`
	Created     *time.Time   `json:"created,omitempty"`
	Resolved    *time.Time   `json:"resolved,omitempty"`
}

// Warning is a non-fatal normalization problem, reported alongside a
// successful result.
type Warning struct {
	Key    string `json:"key"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s %s: %s", w.Key, w.Field, w.Reason)
}

// ErrBadKey rejects a record whose identifier is missing or malformed.
// This is the only condition that drops a record entirely.
var ErrBadKey = errors.New("missing or malformed issue key")

var keyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*-[0-9]+$`)

// typeTable maps folded issue-type names to canonical types. Covers
// the Portuguese and English names seen in the wild.
var typeTable = map[string]ItemType{
	"historia":       TypeStory,
	"story":          TypeStory,
	"user story":     TypeStory,
	"debito tecnico": TypeTechnicalDebt,
	"technical debt": TypeTechnicalDebt,
	"spike":          TypeSpike,
	"bug":            TypeBug,
	"defeito":        TypeBug,
}

var statusTable = map[string]StatusBucket{
	// finished
	"concluido": StatusDone,
	"concluida": StatusDone,
	"done":      StatusDone,
	"resolvido": StatusDone,
	"resolvida": StatusDone,
	"resolved":  StatusDone,
	"fechado":   StatusDone,
	"closed":    StatusDone,
	"pronto":    StatusDone,
	// in flight
	"em progresso":    StatusInProgress,
	"in progress":     StatusInProgress,
	"fazendo":         StatusInProgress,
	"desenvolvimento": StatusInProgress,
	"code review":     StatusInProgress,
	"em revisao":      StatusInProgress,
	"qa":              StatusInProgress,
	"testing":         StatusInProgress,
	"em andamento":    StatusInProgress,
	// not started
	"to do":             StatusTodo,
	"a fazer":           StatusTodo,
	"aberto":            StatusTodo,
	"open":              StatusTodo,
	"backlog":           StatusTodo,
	"tarefas pendentes": StatusTodo,
	"novo":              StatusTodo,
	"new":               StatusTodo,
}

// CanonicalType maps a raw issue-type name to its bucket.
func CanonicalType(name string) ItemType {
	if t, ok := typeTable[Fold(name)]; ok {
		return t
	}
	return TypeOther
}

// CanonicalStatus maps a raw status name to its bucket, falling back
// to the instance's statusCategory key when the name is unknown.
func CanonicalStatus(name, categoryKey string) StatusBucket {
	if b, ok := statusTable[Fold(name)]; ok {
		return b
	}
	switch categoryKey {
	case "done":
		return StatusDone
	case "indeterminate":
		return StatusInProgress
	case "new":
		return StatusTodo
	}
	return StatusOther
}

// ParseDate accepts the Jira timestamp format plus the RFC3339 and
// plain-date fallbacks that appear in exports.
func ParseDate(s string) (time.Time, error) {
	if t, err := jira.ParseTime(s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// Normalize converts one raw record into canonical form. The only
// fatal condition is a bad key; every other problem degrades to an
// absent field plus a warning.
func Normalize(raw jira.RawRecord) (Record, []Warning, error) {
	if !keyPattern.MatchString(raw.Key) {
		return Record{}, nil, fmt.Errorf("%w: %q", ErrBadKey, raw.Key)
	}

	var warnings []Warning
	rec := Record{
		Key:        raw.Key,
		TypeName:   raw.Fields.IssueType.Name,
		Type:       CanonicalType(raw.Fields.IssueType.Name),
		StatusName: raw.Fields.Status.Name,
		Status:     CanonicalStatus(raw.Fields.Status.Name, raw.Fields.Status.StatusCategory.Key),
		Summary:    raw.Fields.Summary,
	}

	if raw.Fields.Assignee != nil {
		rec.Assignee = raw.Fields.Assignee.DisplayName
		if rec.Assignee == "" {
			rec.Assignee = raw.Fields.Assignee.Name
		}
	}

	if raw.Fields.Created != "" {
		if t, err := ParseDate(raw.Fields.Created); err == nil {
			rec.Created = &t
		} else {
			warnings = append(warnings, Warning{Key: raw.Key, Field: "created", Reason: fmt.Sprintf("unparseable date %q", raw.Fields.Created)})
		}
	}

	if raw.Fields.ResolutionDate != "" {
		if t, err := ParseDate(raw.Fields.ResolutionDate); err == nil {
			rec.Resolved = &t
		} else {
			warnings = append(warnings, Warning{Key: raw.Key, Field: "resolutiondate", Reason: fmt.Sprintf("unparseable date %q", raw.Fields.ResolutionDate)})
		}
	}

	// Resolved only makes sense on finished work; keep the record but
	// drop the date so Done and Resolved stay consistent.
	if rec.Resolved != nil && rec.Status != StatusDone {
		warnings = append(warnings, Warning{Key: raw.Key, Field: "resolutiondate", Reason: fmt.Sprintf("resolution date on non-finished status %q, dropped", raw.Fields.Status.Name)})
		rec.Resolved = nil
	}

	sp, spWarnings := storyPoints(raw)
	rec.StoryPoints = sp
	warnings = append(warnings, spWarnings...)

	return rec, warnings, nil
}

// NormalizeAll converts a page-ordered raw slice, preserving order and
// accumulating warnings. Bad-key records are skipped with a warning
// rather than failing the batch.
func NormalizeAll(raws []jira.RawRecord) ([]Record, []Warning) {
	records := make([]Record, 0, len(raws))
	var warnings []Warning
	for _, raw := range raws {
		rec, w, err := Normalize(raw)
		if err != nil {
			warnings = append(warnings, Warning{Key: raw.Key, Field: "key", Reason: err.Error()})
			continue
		}
		records = append(records, rec)
		warnings = append(warnings, w...)
	}
	return records, warnings
}

// storyPoints probes the candidate custom fields in catalog order and
// returns the first usable value. Non-numeric or negative values are
// treated as absent, never as zero, to avoid skewing aggregates.
func storyPoints(raw jira.RawRecord) (*float64, []Warning) {
	var warnings []Warning
	for _, field := range query.StoryPointFields() {
		v := raw.Fields.CustomField(field)
		if v == nil {
			continue
		}
		n, ok := numeric(v)
		if !ok {
			// probably a different concern squatting on the slot
			// (epic links share these IDs on some instances)
			warnings = append(warnings, Warning{Key: raw.Key, Field: field, Reason: fmt.Sprintf("non-numeric story points %v", v)})
			continue
		}
		if n < 0 {
			warnings = append(warnings, Warning{Key: raw.Key, Field: field, Reason: fmt.Sprintf("negative story points %v", v)})
			return nil, warnings
		}
		return &n, warnings
	}
	return nil, warnings
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

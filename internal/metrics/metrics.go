package metrics

import (
	"math"

	"sprintlens/internal/normalize"
)

// UnassignedLabel groups records without an assignee identity.
const UnassignedLabel = "Unassigned"

// TypeCount is one canonical type and how many records fall in it.
type TypeCount struct {
	Type  normalize.ItemType `json:"-"`
	Name  string             `json:"type"`
	Count int                `json:"count"`
}

// StatusCount is one status bucket and how many records fall in it.
type StatusCount struct {
	Bucket normalize.StatusBucket `json:"-"`
	Name   string                 `json:"status"`
	Count  int                    `json:"count"`
}

// AssigneeStats aggregates one assignee's share of the dataset.
type AssigneeStats struct {
	Name                 string   `json:"name"`
	Items                int      `json:"items"`
	CompletedItems       int      `json:"completedItems"`
	StoryPoints          float64  `json:"storyPoints"`
	CompletedStoryPoints float64  `json:"completedStoryPoints"`
	AvgResolutionDays    *float64 `json:"avgResolutionDays,omitempty"`
}

// ResolutionStats summarizes days-to-resolution over records that have
// both dates. All fields are absent (nil), never zero or NaN, when no
// record qualifies.
type ResolutionStats struct {
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean,omitempty"`
	Median *float64 `json:"median,omitempty"`
	P85    *float64 `json:"p85,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
}

// Summary holds every derived value for one normalized dataset. It is
// recomputed deterministically from the records and never persisted
// apart from them.
type Summary struct {
	TotalItems int `json:"totalItems"`

	// ByType, ByStatus and ByAssignee keep first-seen input order for
	// reproducible output.
	ByType     []TypeCount     `json:"byType"`
	ByStatus   []StatusCount   `json:"byStatus"`
	ByAssignee []AssigneeStats `json:"byAssignee"`

	TotalStoryPoints     float64 `json:"totalStoryPoints"`
	CompletedStoryPoints float64 `json:"completedStoryPoints"`
	CompletionRate       float64 `json:"completionRate"`

	Resolution ResolutionStats `json:"resolution"`
}

// DaysToResolution returns the whole days between creation and
// resolution, and whether the value is computable at all.
func DaysToResolution(rec normalize.Record) (int, bool) {
	if rec.Created == nil || rec.Resolved == nil {
		return 0, false
	}
	days := int(rec.Resolved.Sub(*rec.Created).Hours() / 24)
	if days < 0 {
		return 0, false
	}
	return days, true
}

// velocityType reports whether story points on this type count toward
// velocity totals.
func velocityType(t normalize.ItemType) bool {
	return t == normalize.TypeStory || t == normalize.TypeTechnicalDebt || t == normalize.TypeSpike
}

// Aggregate computes the summary for a record set. Running it twice on
// the same input yields identical output; empty input yields zero
// counts with absent averages.
func Aggregate(records []normalize.Record) Summary {
	s := Summary{
		TotalItems: len(records),
		ByType:     []TypeCount{},
		ByStatus:   []StatusCount{},
		ByAssignee: []AssigneeStats{},
	}

	typeIdx := make(map[normalize.ItemType]int)
	statusIdx := make(map[normalize.StatusBucket]int)
	assigneeIdx := make(map[string]int)
	assigneeDays := make(map[string][]float64)

	var days []float64

	for _, rec := range records {
		if i, ok := typeIdx[rec.Type]; ok {
			s.ByType[i].Count++
		} else {
			typeIdx[rec.Type] = len(s.ByType)
			s.ByType = append(s.ByType, TypeCount{Type: rec.Type, Name: rec.Type.String(), Count: 1})
		}

		if i, ok := statusIdx[rec.Status]; ok {
			s.ByStatus[i].Count++
		} else {
			statusIdx[rec.Status] = len(s.ByStatus)
			s.ByStatus = append(s.ByStatus, StatusCount{Bucket: rec.Status, Name: rec.Status.String(), Count: 1})
		}

		name := rec.Assignee
		if name == "" {
			name = UnassignedLabel
		}
		i, ok := assigneeIdx[name]
		if !ok {
			i = len(s.ByAssignee)
			assigneeIdx[name] = i
			s.ByAssignee = append(s.ByAssignee, AssigneeStats{Name: name})
		}
		s.ByAssignee[i].Items++

		done := rec.Status == normalize.StatusDone
		if done {
			s.ByAssignee[i].CompletedItems++
		}

		if rec.StoryPoints != nil && *rec.StoryPoints > 0 && velocityType(rec.Type) {
			s.TotalStoryPoints += *rec.StoryPoints
			s.ByAssignee[i].StoryPoints += *rec.StoryPoints
			if done {
				s.CompletedStoryPoints += *rec.StoryPoints
				s.ByAssignee[i].CompletedStoryPoints += *rec.StoryPoints
			}
		}

		if d, ok := DaysToResolution(rec); ok {
			days = append(days, float64(d))
			assigneeDays[name] = append(assigneeDays[name], float64(d))
		}
	}

	if s.TotalStoryPoints > 0 {
		s.CompletionRate = round1(s.CompletedStoryPoints / s.TotalStoryPoints * 100)
	}

	for i := range s.ByAssignee {
		if ds := assigneeDays[s.ByAssignee[i].Name]; len(ds) > 0 {
			avg := round1(mean(ds))
			s.ByAssignee[i].AvgResolutionDays = &avg
		}
	}

	if len(days) > 0 {
		s.Resolution = ResolutionStats{
			Count:  len(days),
			Mean:   ptr(round1(mean(days))),
			Median: ptr(median(days)),
			P85:    ptr(percentile(days, 85)),
			Min:    ptr(percentile(days, 0)),
			Max:    ptr(percentile(days, 100)),
		}
	}

	return s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func ptr(v float64) *float64 { return &v }

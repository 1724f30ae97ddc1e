package metrics

import (
	"reflect"
	"testing"
	"time"

	"sprintlens/internal/normalize"
)

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func sp(v float64) *float64 { return &v }

func doneStory(key, assignee string, points *float64, created, resolved string) normalize.Record {
	rec := normalize.Record{
		Key:         key,
		Type:        normalize.TypeStory,
		Status:      normalize.StatusDone,
		Assignee:    assignee,
		StoryPoints: points,
	}
	if created != "" {
		rec.Created = day(created)
	}
	if resolved != "" {
		rec.Resolved = day(resolved)
	}
	return rec
}

func TestDaysToResolution(t *testing.T) {
	tests := []struct {
		name     string
		rec      normalize.Record
		expected int
		ok       bool
	}{
		{"ThreeDays", doneStory("P-1", "", nil, "2024-01-01", "2024-01-04"), 3, true},
		{"SameDay", doneStory("P-2", "", nil, "2024-01-01", "2024-01-01"), 0, true},
		{"MissingCreated", doneStory("P-3", "", nil, "", "2024-01-04"), 0, false},
		{"MissingResolved", doneStory("P-4", "", nil, "2024-01-01", ""), 0, false},
		{"ResolvedBeforeCreated", doneStory("P-5", "", nil, "2024-01-04", "2024-01-01"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DaysToResolution(tt.rec)
			if got != tt.expected || ok != tt.ok {
				t.Errorf("DaysToResolution() = (%d, %v), want (%d, %v)", got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil)
	if s.TotalItems != 0 {
		t.Errorf("TotalItems = %d", s.TotalItems)
	}
	if len(s.ByType) != 0 || len(s.ByStatus) != 0 || len(s.ByAssignee) != 0 {
		t.Errorf("breakdowns not empty: %v %v %v", s.ByType, s.ByStatus, s.ByAssignee)
	}
	if s.CompletionRate != 0 {
		t.Errorf("CompletionRate = %v", s.CompletionRate)
	}
	if s.Resolution.Count != 0 || s.Resolution.Mean != nil {
		t.Errorf("Resolution = %+v, want absent stats", s.Resolution)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	records := []normalize.Record{
		doneStory("P-1", "ana", sp(5), "2024-01-01", "2024-01-04"),
		doneStory("P-2", "bruno", sp(3), "2024-01-02", "2024-01-03"),
		{Key: "P-3", Type: normalize.TypeBug, Status: normalize.StatusInProgress},
	}

	first := Aggregate(records)
	second := Aggregate(records)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Aggregate() not idempotent:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}

func TestAggregateCounts(t *testing.T) {
	records := []normalize.Record{
		doneStory("P-1", "ana", sp(5), "2024-01-01", "2024-01-04"),
		doneStory("P-2", "ana", sp(3), "2024-01-01", "2024-01-02"),
		{Key: "P-3", Type: normalize.TypeBug, Status: normalize.StatusInProgress, Assignee: "bruno"},
		{Key: "P-4", Type: normalize.TypeStory, Status: normalize.StatusTodo, StoryPoints: sp(8)},
	}

	s := Aggregate(records)
	if s.TotalItems != 4 {
		t.Fatalf("TotalItems = %d, want 4", s.TotalItems)
	}

	// First-seen input order.
	if s.ByType[0].Name != "Story" || s.ByType[0].Count != 3 {
		t.Errorf("ByType[0] = %+v", s.ByType[0])
	}
	if s.ByType[1].Name != "Bug" || s.ByType[1].Count != 1 {
		t.Errorf("ByType[1] = %+v", s.ByType[1])
	}
	if s.ByStatus[0].Name != "Done" || s.ByStatus[0].Count != 2 {
		t.Errorf("ByStatus[0] = %+v", s.ByStatus[0])
	}

	if s.ByAssignee[0].Name != "ana" || s.ByAssignee[0].Items != 2 || s.ByAssignee[0].CompletedItems != 2 {
		t.Errorf("ByAssignee[0] = %+v", s.ByAssignee[0])
	}
	if s.ByAssignee[2].Name != UnassignedLabel || s.ByAssignee[2].Items != 1 {
		t.Errorf("ByAssignee[2] = %+v, want unassigned bucket", s.ByAssignee[2])
	}

	// Bug points never count toward velocity; P-4 is not done.
	if s.TotalStoryPoints != 16 {
		t.Errorf("TotalStoryPoints = %v, want 16", s.TotalStoryPoints)
	}
	if s.CompletedStoryPoints != 8 {
		t.Errorf("CompletedStoryPoints = %v, want 8", s.CompletedStoryPoints)
	}
	if s.CompletionRate != 50 {
		t.Errorf("CompletionRate = %v, want 50", s.CompletionRate)
	}
}

func TestAggregateExcludesNonVelocityPoints(t *testing.T) {
	records := []normalize.Record{
		{Key: "P-1", Type: normalize.TypeBug, Status: normalize.StatusDone, StoryPoints: sp(13)},
		{Key: "P-2", Type: normalize.TypeOther, Status: normalize.StatusDone, StoryPoints: sp(5)},
		doneStory("P-3", "", sp(2), "", ""),
	}

	s := Aggregate(records)
	if s.TotalStoryPoints != 2 {
		t.Errorf("TotalStoryPoints = %v, want 2 (bug and other excluded)", s.TotalStoryPoints)
	}
}

func TestAggregateResolutionStats(t *testing.T) {
	records := []normalize.Record{
		doneStory("P-1", "ana", nil, "2024-01-01", "2024-01-02"), // 1 day
		doneStory("P-2", "ana", nil, "2024-01-01", "2024-01-04"), // 3 days
		doneStory("P-3", "bruno", nil, "2024-01-01", "2024-01-06"), // 5 days
	}

	s := Aggregate(records)
	if s.Resolution.Count != 3 {
		t.Fatalf("Resolution.Count = %d, want 3", s.Resolution.Count)
	}
	if *s.Resolution.Mean != 3 {
		t.Errorf("Mean = %v, want 3", *s.Resolution.Mean)
	}
	if *s.Resolution.Median != 3 {
		t.Errorf("Median = %v, want 3", *s.Resolution.Median)
	}
	if *s.Resolution.Min != 1 || *s.Resolution.Max != 5 {
		t.Errorf("Min/Max = %v/%v, want 1/5", *s.Resolution.Min, *s.Resolution.Max)
	}

	if avg := s.ByAssignee[0].AvgResolutionDays; avg == nil || *avg != 2 {
		t.Errorf("ana AvgResolutionDays = %v, want 2", avg)
	}
	if avg := s.ByAssignee[1].AvgResolutionDays; avg == nil || *avg != 5 {
		t.Errorf("bruno AvgResolutionDays = %v, want 5", avg)
	}
}

func TestPercentile(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	tests := []struct {
		name     string
		q        float64
		expected float64
	}{
		{"Zero", 0, 1},
		{"Median", 50, 5.5},
		{"P85", 85, 8.65},
		{"Hundred", 100, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := percentile(values, tt.q); got != tt.expected {
				t.Errorf("percentile(%v) = %v, want %v", tt.q, got, tt.expected)
			}
		})
	}

	if got := percentile(nil, 50); got != 0 {
		t.Errorf("percentile(nil) = %v, want 0", got)
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"Empty", nil, 0},
		{"Single", []float64{4}, 4},
		{"OddCount", []float64{3, 1, 2}, 2},
		{"EvenCount", []float64{4, 1, 3, 2}, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := median(tt.values); got != tt.expected {
				t.Errorf("median() = %v, want %v", got, tt.expected)
			}
		})
	}
}

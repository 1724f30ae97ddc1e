package export

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"testing"
	"time"

	"sprintlens/internal/normalize"
)

func TestWriteCSV(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	resolved := time.Date(2024, 3, 5, 18, 0, 0, 0, time.UTC)
	points := 5.0

	records := []normalize.Record{
		{
			Key:         "PROJ-1",
			Type:        normalize.TypeStory,
			Status:      normalize.StatusDone,
			Assignee:    "ana",
			StoryPoints: &points,
			Created:     &created,
			Resolved:    &resolved,
		},
		{
			Key:    "PROJ-2",
			Type:   normalize.TypeBug,
			Status: normalize.StatusInProgress,
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header plus 2", len(rows))
	}

	wantHeader := []string{"Key", "Type", "Status", "Assignee", "Story Points", "Created", "Resolved", "Days to Resolution"}
	if !reflect.DeepEqual(rows[0], wantHeader) {
		t.Errorf("header = %v", rows[0])
	}
	if !reflect.DeepEqual(rows[1], []string{"PROJ-1", "Story", "Done", "ana", "5", "2024-03-01", "2024-03-05", "4"}) {
		t.Errorf("row 1 = %v", rows[1])
	}
	// Absent values stay empty, never zero.
	if !reflect.DeepEqual(rows[2], []string{"PROJ-2", "Bug", "In Progress", "", "", "", "", ""}) {
		t.Errorf("row 2 = %v", rows[2])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("got %d rows, want header only", len(rows))
	}
}

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"sprintlens/internal/metrics"
	"sprintlens/internal/normalize"
)

const dateLayout = "2006-01-02"

// WriteCSV renders canonical records as CSV. Absent values stay empty,
// so spreadsheet averages are not dragged toward zero.
func WriteCSV(w io.Writer, records []normalize.Record) error {
	cw := csv.NewWriter(w)

	header := []string{"Key", "Type", "Status", "Assignee", "Story Points", "Created", "Resolved", "Days to Resolution"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.Key,
			rec.Type.String(),
			rec.Status.String(),
			rec.Assignee,
			"",
			"",
			"",
			"",
		}
		if rec.StoryPoints != nil {
			row[4] = strconv.FormatFloat(*rec.StoryPoints, 'f', -1, 64)
		}
		if rec.Created != nil {
			row[5] = rec.Created.Format(dateLayout)
		}
		if rec.Resolved != nil {
			row[6] = rec.Resolved.Format(dateLayout)
		}
		if days, ok := metrics.DaysToResolution(rec); ok {
			row[7] = strconv.Itoa(days)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row for %s: %w", rec.Key, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

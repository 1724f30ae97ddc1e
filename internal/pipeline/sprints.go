package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// Sprint is one board sprint for selection purposes.
type Sprint struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

const sprintPageSize = 50

// Sprints lists the current active sprint (if any) followed by the
// most recently started closed sprints of the project's first board,
// newest first. nameFilter keeps only sprints whose name contains the
// text, case-insensitively.
func (p *Pipeline) Sprints(ctx context.Context, project string, limit int, nameFilter string) ([]Sprint, error) {
	if limit <= 0 {
		limit = 10
	}

	boards, err := p.client.Boards(ctx, project)
	if err != nil {
		return nil, err
	}
	if len(boards) == 0 {
		return nil, fmt.Errorf("no board found for project %q", project)
	}
	board := boards[0]
	log.Debug().Int("board", board.ID).Str("name", board.Name).Msg("Resolved project board")

	matches := func(name string) bool {
		if nameFilter == "" {
			return true
		}
		return strings.Contains(strings.ToLower(name), strings.ToLower(nameFilter))
	}

	var out []Sprint

	// Active sprint first. Multiple actives are rare; keep the most
	// recently started one.
	activePage, err := p.client.Sprints(ctx, board.ID, "active", 0, sprintPageSize)
	if err != nil {
		return nil, err
	}
	var actives []Sprint
	for _, s := range activePage.Values {
		if matches(s.Name) {
			actives = append(actives, Sprint{ID: s.ID, Name: s.Name, State: s.State, Start: s.StartDate, End: s.EndDate})
		}
	}
	if len(actives) > 0 {
		sort.Slice(actives, func(i, j int) bool {
			if actives[i].Start != actives[j].Start {
				return actives[i].Start > actives[j].Start
			}
			return actives[i].ID > actives[j].ID
		})
		out = append(out, actives[0])
	}

	// Then recently closed sprints. Collect more than needed so the
	// newest ones survive the sort regardless of page order.
	var closed []Sprint
	collectMax := limit * 3
	if collectMax < sprintPageSize {
		collectMax = sprintPageSize
	}
	startAt := 0
	for len(closed) < collectMax {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := p.client.Sprints(ctx, board.ID, "closed", startAt, sprintPageSize)
		if err != nil {
			return nil, err
		}
		if len(page.Values) == 0 {
			break
		}
		for _, s := range page.Values {
			if matches(s.Name) {
				closed = append(closed, Sprint{ID: s.ID, Name: s.Name, State: s.State, Start: s.StartDate, End: s.EndDate})
			}
		}
		if page.IsLast {
			break
		}
		startAt += len(page.Values)
	}

	sort.Slice(closed, func(i, j int) bool {
		if closed[i].Start != closed[j].Start {
			return closed[i].Start > closed[j].Start
		}
		return closed[i].ID > closed[j].ID
	})
	if len(closed) > limit {
		closed = closed[:limit]
	}

	return append(out, closed...), nil
}

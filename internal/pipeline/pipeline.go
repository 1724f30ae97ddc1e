package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"sprintlens/internal/cache"
	"sprintlens/internal/jira"
	"sprintlens/internal/metrics"
	"sprintlens/internal/normalize"
	"sprintlens/internal/query"
)

// ErrNoVariantSucceeded means every query variant for a spec was
// rejected as malformed by the remote service. No partial dataset is
// ever returned alongside it.
var ErrNoVariantSucceeded = errors.New("no query variant succeeded")

// Options tune the pipeline independently of the Jira transport.
type Options struct {
	SprintTTL        time.Duration
	ProjectTTL       time.Duration
	SprintFieldStyle query.SprintFieldStyle
}

// Pipeline is the end-to-end fetch-and-normalize orchestrator and the
// single consumer-facing boundary: build variants, try them in order,
// normalize, aggregate, cache.
type Pipeline struct {
	client jira.Client
	cache  *cache.Cache
	opts   Options
}

func New(client jira.Client, opts Options) *Pipeline {
	return &Pipeline{
		client: client,
		cache:  cache.New(opts.SprintTTL, opts.ProjectTTL),
		opts:   opts,
	}
}

// FetchSprint returns the normalized dataset and metrics for one
// sprint, cached per (project, sprint).
func (p *Pipeline) FetchSprint(ctx context.Context, project string, sprintID int) (*cache.Entry, error) {
	key := cache.Key{Project: project, Purpose: query.SprintIssues, SprintID: sprintID}
	spec := query.Spec{
		Purpose:          query.SprintIssues,
		Project:          project,
		SprintID:         sprintID,
		SprintFieldStyle: p.opts.SprintFieldStyle,
	}
	return p.cache.Do(ctx, key, func(ctx context.Context) (*cache.Entry, error) {
		return p.run(ctx, spec, key)
	})
}

// FetchRange returns the normalized dataset and metrics for issues
// created inside [from, to], cached per (project, range).
func (p *Pipeline) FetchRange(ctx context.Context, project, from, to string) (*cache.Entry, error) {
	key := cache.Key{Project: project, Purpose: query.HistoricalRange, From: from, To: to}
	spec := query.Spec{
		Purpose: query.HistoricalRange,
		Project: project,
		From:    from,
		To:      to,
	}
	return p.cache.Do(ctx, key, func(ctx context.Context) (*cache.Entry, error) {
		return p.run(ctx, spec, key)
	})
}

// ValidateProject checks that a project exists and is queryable. A
// rejected query means the project term itself is bad, which is a
// negative answer rather than a failure.
func (p *Pipeline) ValidateProject(ctx context.Context, project string) (bool, error) {
	variants, err := query.Build(query.Spec{Purpose: query.ValidateProject, Project: project})
	if err != nil {
		return false, err
	}
	v := variants[0]
	resp, err := p.client.SearchPage(ctx, v.JQL, v.Fields, 0, 1)
	if err != nil {
		var qr *jira.QueryRejectedError
		if errors.As(err, &qr) {
			return false, nil
		}
		return false, err
	}
	return len(resp.Issues) > 0 || resp.Total > 0, nil
}

// Invalidate drops every cached dataset for a project. Call it when
// the user switches project context.
func (p *Pipeline) Invalidate(project string) int {
	return p.cache.Invalidate(func(k cache.Key) bool {
		return k.Project == project
	})
}

// InvalidateSprint drops the cached dataset for one sprint selection.
func (p *Pipeline) InvalidateSprint(project string, sprintID int) int {
	return p.cache.Invalidate(func(k cache.Key) bool {
		return k.Project == project && k.Purpose == query.SprintIssues && k.SprintID == sprintID
	})
}

// run executes one fetch end to end. The fallback machine gates the
// loop: variants are consumed in priority order while it stays in
// trying, the first well-formed response wins (an explicitly empty
// result is well-formed), and the terminal state picks between the
// normalized entry and ErrNoVariantSucceeded. Anything other than a
// rejection aborts.
func (p *Pipeline) run(ctx context.Context, spec query.Spec, key cache.Key) (*cache.Entry, error) {
	variants, err := query.Build(spec)
	if err != nil {
		return nil, err
	}

	fb, err := newFallback(key.Label())
	if err != nil {
		return nil, err
	}

	var raws []jira.RawRecord
	var accepted query.Variant
	next := 0
	for fb.state() == stateTrying {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if next >= len(variants) {
			fb.send(eventExhaust)
			continue
		}
		v := variants[next]
		next++

		page, err := p.client.SearchAll(ctx, v.JQL, v.Fields)
		if err != nil {
			var qr *jira.QueryRejectedError
			if errors.As(err, &qr) {
				fb.send(eventReject)
				log.Warn().
					Str("key", key.Label()).
					Int("rank", v.Rank).
					Str("jql", v.JQL).
					Msg("Query variant rejected, falling back")
				continue
			}
			return nil, err
		}

		raws = page
		accepted = v
		fb.send(eventAccept)
	}

	if fb.state() != stateSucceeded {
		log.Error().
			Str("key", key.Label()).
			Int("variants", len(variants)).
			Str("state", fb.state()).
			Msg("All query variants rejected")
		return nil, fmt.Errorf("%w: %d variants rejected for %s", ErrNoVariantSucceeded, len(variants), key.Label())
	}

	records, warnings := normalize.NormalizeAll(raws)
	summary := metrics.Aggregate(records)

	log.Info().
		Str("key", key.Label()).
		Int("rank", accepted.Rank).
		Int("records", len(records)).
		Int("warnings", len(warnings)).
		Msg("Fetch pipeline complete")

	return &cache.Entry{
		Key:      key,
		Records:  records,
		Summary:  summary,
		Warnings: warnings,
	}, nil
}

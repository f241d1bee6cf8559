package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tku137/gitlab-sprint-stats/internal/domain"
	"github.com/tku137/gitlab-sprint-stats/internal/gateway"
)

// discussionFetchLimit bounds how many merge request discussions are fetched
// at the same time.
const discussionFetchLimit = 4

// Aggregator is the use case for deriving per-sprint productivity metrics.
// It orchestrates the fetching and combining of data. Sprints are computed
// independently; no state is carried between them.
type Aggregator struct {
	fetcher     gateway.Fetcher
	logger      zerolog.Logger
	concurrency int
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		fetcher:     fetcher,
		logger:      logger,
		concurrency: discussionFetchLimit,
	}
}

// AllSprintMetrics computes the full metrics record for every sprint in the
// group, in the order the remote service returns them. Any fetch error aborts
// the whole run.
func (a *Aggregator) AllSprintMetrics(ctx context.Context) ([]*domain.SprintMetrics, error) {
	sprints, err := a.fetcher.ListSprints(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*domain.SprintMetrics, 0, len(sprints))
	for _, sprint := range sprints {
		a.logger.Info().Str("sprint", sprint.Title).Msg("calculating metrics")
		metrics, err := a.SprintMetrics(ctx, sprint)
		if err != nil {
			return nil, fmt.Errorf("computing metrics for %q: %w", sprint.Title, err)
		}
		results = append(results, metrics)
	}
	return results, nil
}

// SprintMetrics computes one sprint's flat metrics record.
//
// Each active merge request's discussions are fetched exactly once and the
// same comment slices feed both the review-efficiency and collaboration
// calculators, so the numbers match a naive refetching computation.
func (a *Aggregator) SprintMetrics(ctx context.Context, sprint domain.Sprint) (*domain.SprintMetrics, error) {
	comments, err := a.fetcher.FetchSprintComments(ctx, sprint)
	if err != nil {
		return nil, err
	}
	planning, review := ClassifyComments(comments)

	createdMRs, err := a.fetcher.FetchCreatedMRs(ctx, sprint.StartDate, sprint.EndDate)
	if err != nil {
		return nil, err
	}
	activeMRs, err := a.fetcher.FetchActiveMRs(ctx, sprint.StartDate, sprint.EndDate)
	if err != nil {
		return nil, err
	}
	discussions, err := a.fetchDiscussions(ctx, activeMRs)
	if err != nil {
		return nil, err
	}

	avgDiscussions, percentWithout := CodeReviewEfficiency(discussions)
	newIssues, scopeChangeRate := ScopeChange(planning, review)
	uniqueContributors, avgParticipants := CollaborationScore(discussions)
	issueCompletionRate, err := a.plannedIssueCompletionRate(ctx, planning)
	if err != nil {
		return nil, err
	}

	return &domain.SprintMetrics{
		SprintName:            sprint.Title,
		StartDate:             sprint.StartDate,
		EndDate:               sprint.EndDate,
		TotalPlanningComments: len(planning),
		TotalReviewComments:   len(review),
		NewMRsInSprint:        len(createdMRs),
		AllActiveMRsInSprint:  len(activeMRs),

		MRRate:                       MRRate(planning, createdMRs),
		MRCompletionRate:             MRCompletionRate(createdMRs),
		AverageTimeToMergeHours:      AverageTimeToMerge(activeMRs),
		AverageDiscussionsPerMR:      avgDiscussions,
		PercentMRsWithoutDiscussions: percentWithout,
		PlannedIssueCompletionRate:   issueCompletionRate,
		ScopeChangeNewIssues:         newIssues,
		ScopeChangeRate:              scopeChangeRate,

		CollaborationUniqueContributors: uniqueContributors,
		CollaborationAvgParticipants:    avgParticipants,

		WorkDistribution: WorkDistribution(activeMRs),
	}, nil
}

// MRRateSeries computes just the MR rate per sprint, the series the
// presentation layer charts over time.
func (a *Aggregator) MRRateSeries(ctx context.Context) ([]domain.SprintMRRate, error) {
	sprints, err := a.fetcher.ListSprints(ctx)
	if err != nil {
		return nil, err
	}

	series := make([]domain.SprintMRRate, 0, len(sprints))
	for _, sprint := range sprints {
		a.logger.Info().Str("sprint", sprint.Title).Msg("calculating MR rate")
		comments, err := a.fetcher.FetchSprintComments(ctx, sprint)
		if err != nil {
			return nil, fmt.Errorf("computing MR rate for %q: %w", sprint.Title, err)
		}
		planning, _ := ClassifyComments(comments)
		createdMRs, err := a.fetcher.FetchCreatedMRs(ctx, sprint.StartDate, sprint.EndDate)
		if err != nil {
			return nil, fmt.Errorf("computing MR rate for %q: %w", sprint.Title, err)
		}
		series = append(series, domain.SprintMRRate{
			SprintName: sprint.Title,
			StartDate:  sprint.StartDate,
			EndDate:    sprint.EndDate,
			MRRate:     MRRate(planning, createdMRs),
		})
	}
	return series, nil
}

// fetchDiscussions fetches the human comments of each merge request with a
// bounded fan-out. results[i] always belongs to mrs[i], so downstream output
// order matches the sequential computation; the first error cancels the rest
// and aborts.
func (a *Aggregator) fetchDiscussions(ctx context.Context, mrs []domain.MergeRequest) ([][]domain.Comment, error) {
	results := make([][]domain.Comment, len(mrs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(a.concurrency)
	for i, mr := range mrs {
		i, mr := i, mr
		eg.Go(func() error {
			comments, err := a.fetcher.FetchMRComments(egCtx, mr)
			if err != nil {
				return err
			}
			results[i] = comments
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// plannedIssueCompletionRate is the fraction of issues referenced in planning
// comments whose remote state is closed or merged. Every reference costs one
// remote lookup; duplicates are looked up (and counted) again, matching the
// reference-list semantics of the extraction. Returns 0 with no references.
func (a *Aggregator) plannedIssueCompletionRate(ctx context.Context, planning []domain.Comment) (float64, error) {
	refs := ExtractIssueRefs(planning)
	if len(refs) == 0 {
		return 0, nil
	}
	completed := 0
	for _, ref := range refs {
		state, err := a.fetcher.FetchIssueState(ctx, ref.ProjectPath, ref.IssueID)
		if err != nil {
			return 0, err
		}
		if state == "closed" || state == mergedState {
			completed++
		}
	}
	return float64(completed) / float64(len(refs)), nil
}

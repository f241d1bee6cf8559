// Package gateway provides a gateway to the GitLab API,
// abstracting away the underlying client library.
package gateway

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/xanzy/go-gitlab"
	"golang.org/x/time/rate"

	"github.com/tku137/gitlab-sprint-stats/internal/domain"
)

// sprintTitlePattern is the naming convention that marks a group epic as a sprint.
var sprintTitlePattern = regexp.MustCompile(`^Sprint \d+/\d+: .+`)

const perPage = 100

// requestsPerSecond paces outgoing API calls so long sprint histories do not
// trip the server-side rate limit.
const requestsPerSecond = 10

// Fetcher defines the behavior of a gateway for fetching sprint data from GitLab.
type Fetcher interface {
	ListSprints(ctx context.Context) ([]domain.Sprint, error)
	FetchSprintComments(ctx context.Context, sprint domain.Sprint) ([]domain.Comment, error)
	FetchCreatedMRs(ctx context.Context, start, end time.Time) ([]domain.MergeRequest, error)
	FetchActiveMRs(ctx context.Context, start, end time.Time) ([]domain.MergeRequest, error)
	FetchMRComments(ctx context.Context, mr domain.MergeRequest) ([]domain.Comment, error)
	FetchIssueState(ctx context.Context, projectPath, issueID string) (string, error)
}

// GitLabGateway is the concrete implementation of the Fetcher interface.
type GitLabGateway struct {
	client  *gitlab.Client
	groupID string
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewGitLabGateway creates a gateway for one group of the GitLab instance at
// baseURL. The token is an opaque bearer credential; authentication, retries
// and response decoding are owned by the client library.
func NewGitLabGateway(baseURL, token, groupID string, logger zerolog.Logger) (*GitLabGateway, error) {
	client, err := gitlab.NewClient(token, gitlab.WithBaseURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client: %w", err)
	}
	return &GitLabGateway{
		client:  client,
		groupID: groupID,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:  logger,
	}, nil
}

// ListSprints enumerates all epics in the group and keeps those whose title
// matches the sprint naming convention. Epics without both a start and an end
// date cannot define a sprint window and are skipped with a warning.
func (g *GitLabGateway) ListSprints(ctx context.Context) ([]domain.Sprint, error) {
	g.logger.Info().Str("group", g.groupID).Msg("fetching group epics")

	opts := &gitlab.ListGroupEpicsOptions{
		ListOptions: gitlab.ListOptions{PerPage: perPage},
	}
	var sprints []domain.Sprint
	for {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		epics, resp, err := g.client.Epics.ListGroupEpics(g.groupID, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list group epics: %w", err)
		}
		for _, epic := range epics {
			if !sprintTitlePattern.MatchString(epic.Title) {
				continue
			}
			if epic.StartDate == nil || epic.DueDate == nil {
				g.logger.Warn().Str("title", epic.Title).Msg("sprint epic has no start/end date, skipping")
				continue
			}
			sprints = append(sprints, domain.Sprint{
				ID:        epic.ID,
				GroupID:   epic.GroupID,
				Title:     epic.Title,
				StartDate: time.Time(*epic.StartDate),
				EndDate:   time.Time(*epic.DueDate),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Debug().Int("page", opts.Page).Msg("fetching next page of epics")
	}
	g.logger.Info().Int("sprints", len(sprints)).Msg("completed fetching sprints")
	return sprints, nil
}

// FetchSprintComments returns every note on the sprint's epic.
func (g *GitLabGateway) FetchSprintComments(ctx context.Context, sprint domain.Sprint) ([]domain.Comment, error) {
	opts := &gitlab.ListEpicNotesOptions{
		ListOptions: gitlab.ListOptions{PerPage: perPage},
	}
	var comments []domain.Comment
	for {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		notes, resp, err := g.client.Notes.ListEpicNotes(g.groupID, sprint.ID, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list notes for epic %d: %w", sprint.ID, err)
		}
		for _, note := range notes {
			comments = append(comments, convertNote(note))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return comments, nil
}

// FetchCreatedMRs returns the group's merge requests created within [start, end).
func (g *GitLabGateway) FetchCreatedMRs(ctx context.Context, start, end time.Time) ([]domain.MergeRequest, error) {
	opts := &gitlab.ListGroupMergeRequestsOptions{
		ListOptions:   gitlab.ListOptions{PerPage: perPage},
		CreatedAfter:  &start,
		CreatedBefore: &end,
	}
	return g.listGroupMRs(ctx, opts)
}

// FetchActiveMRs returns the group's merge requests last updated within [start, end).
func (g *GitLabGateway) FetchActiveMRs(ctx context.Context, start, end time.Time) ([]domain.MergeRequest, error) {
	opts := &gitlab.ListGroupMergeRequestsOptions{
		ListOptions:   gitlab.ListOptions{PerPage: perPage},
		UpdatedAfter:  &start,
		UpdatedBefore: &end,
	}
	return g.listGroupMRs(ctx, opts)
}

func (g *GitLabGateway) listGroupMRs(ctx context.Context, opts *gitlab.ListGroupMergeRequestsOptions) ([]domain.MergeRequest, error) {
	var result []domain.MergeRequest
	for {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		mrs, resp, err := g.client.MergeRequests.ListGroupMergeRequests(g.groupID, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list group merge requests: %w", err)
		}
		for _, mr := range mrs {
			converted := domain.MergeRequest{
				ID:        mr.ID,
				IID:       mr.IID,
				ProjectID: mr.ProjectID,
				Title:     mr.Title,
				State:     mr.State,
				MergedAt:  mr.MergedAt,
			}
			if mr.Author != nil {
				converted.AuthorUsername = mr.Author.Username
			}
			if mr.CreatedAt != nil {
				converted.CreatedAt = *mr.CreatedAt
			}
			result = append(result, converted)
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Debug().Int("page", opts.Page).Msg("fetching next page of merge requests")
	}
	return result, nil
}

// FetchMRComments flattens the merge request's discussion threads to individual
// notes, dropping system-generated notes. Discussion order is preserved. This is
// one remote round trip per merge request, the most expensive call in a run.
func (g *GitLabGateway) FetchMRComments(ctx context.Context, mr domain.MergeRequest) ([]domain.Comment, error) {
	opts := &gitlab.ListMergeRequestDiscussionsOptions{PerPage: perPage}
	var comments []domain.Comment
	for {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		discussions, resp, err := g.client.Discussions.ListMergeRequestDiscussions(mr.ProjectID, mr.IID, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list discussions for merge request !%d: %w", mr.IID, err)
		}
		for _, discussion := range discussions {
			for _, note := range discussion.Notes {
				if note.System {
					continue
				}
				comments = append(comments, convertNote(note))
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return comments, nil
}

// FetchIssueState looks up the lifecycle state of one issue by project path and
// issue id, as extracted from a comment body.
func (g *GitLabGateway) FetchIssueState(ctx context.Context, projectPath, issueID string) (string, error) {
	id, err := strconv.Atoi(issueID)
	if err != nil {
		return "", fmt.Errorf("invalid issue id %q: %w", issueID, err)
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}
	project, _, err := g.client.Projects.GetProject(projectPath, &gitlab.GetProjectOptions{}, gitlab.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to get project %s: %w", projectPath, err)
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}
	issue, _, err := g.client.Issues.GetIssue(project.ID, id, gitlab.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to get issue %s#%d: %w", projectPath, id, err)
	}
	return issue.State, nil
}

func convertNote(note *gitlab.Note) domain.Comment {
	comment := domain.Comment{
		ID:             note.ID,
		Body:           note.Body,
		AuthorID:       note.Author.ID,
		AuthorUsername: note.Author.Username,
	}
	if note.CreatedAt != nil {
		comment.CreatedAt = *note.CreatedAt
	}
	return comment
}

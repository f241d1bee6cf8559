// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// Sprint is a time-boxed iteration backed by a group-level epic whose title
// follows the "Sprint <n>/<m>: <description>" convention.
type Sprint struct {
	ID        int       `json:"id"`
	GroupID   int       `json:"group_id"`
	Title     string    `json:"title"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// Comment is a human-authored note on a sprint epic or a merge request.
type Comment struct {
	ID             int       `json:"id"`
	Body           string    `json:"body"`
	AuthorID       int       `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	CreatedAt      time.Time `json:"created_at"`
}

// MergeRequest is a proposed code change under review within the sprint's group.
// MergedAt is nil for merge requests that were never merged.
type MergeRequest struct {
	ID             int        `json:"id"`
	IID            int        `json:"iid"`
	ProjectID      int        `json:"project_id"`
	Title          string     `json:"title"`
	State          string     `json:"state"`
	AuthorUsername string     `json:"author_username"`
	CreatedAt      time.Time  `json:"created_at"`
	MergedAt       *time.Time `json:"merged_at,omitempty"`
}

// IssueRef identifies an issue mentioned in a comment body by project path and
// issue id. It is comparable so callers can apply set semantics.
type IssueRef struct {
	ProjectPath string `json:"project_path"`
	IssueID     string `json:"issue_id"`
}

// SprintMetrics is the flat per-sprint metrics record. It is the core domain
// entity of this application; every field is recomputed from scratch on each run.
type SprintMetrics struct {
	SprintName            string    `json:"sprint_name"`
	StartDate             time.Time `json:"start_date"`
	EndDate               time.Time `json:"end_date"`
	TotalPlanningComments int       `json:"total_planning_comments"`
	TotalReviewComments   int       `json:"total_review_comments"`
	NewMRsInSprint        int       `json:"new_mrs_in_sprint"`
	AllActiveMRsInSprint  int       `json:"all_active_mrs_in_sprint"`

	MRRate                       float64 `json:"mr_rate"`
	MRCompletionRate             float64 `json:"mr_completion_rate"`
	AverageTimeToMergeHours      float64 `json:"average_time_to_merge"`
	AverageDiscussionsPerMR      float64 `json:"average_discussions_per_mr"`
	PercentMRsWithoutDiscussions float64 `json:"percent_mrs_without_discussions"`
	PlannedIssueCompletionRate   float64 `json:"planned_issue_completion_rate"`
	ScopeChangeNewIssues         int     `json:"scope_change_new_issues"`
	ScopeChangeRate              float64 `json:"scope_change_rate"`

	CollaborationUniqueContributors int     `json:"collaboration_score_unique_contributors"`
	CollaborationAvgParticipants    float64 `json:"collaboration_score_avg_participants"`

	WorkDistribution map[string]int `json:"work_distribution"`
}

// SprintMRRate is one point of the MR-rate-over-time series consumed by the
// presentation layer.
type SprintMRRate struct {
	SprintName string    `json:"sprint_name"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	MRRate     float64   `json:"mr_rate"`
}

// Package usecase contains the business logic of the application.
package usecase

import (
	"regexp"
	"sort"
	"strings"

	"github.com/tku137/gitlab-sprint-stats/internal/domain"
)

var (
	// goalPattern matches a heading whose text mentions "goal", e.g. "# Goal: ship X".
	goalPattern = regexp.MustCompile(`(?i)^\s*#+\s*.*goal`)
	// reviewSplitterPattern matches a bare "# Review" heading, which opens the
	// review section of a sprint discussion.
	reviewSplitterPattern = regexp.MustCompile(`(?i)^\s*#\s*review\s*$`)
	// reflectionPattern matches a heading whose text mentions "reflection".
	reflectionPattern = regexp.MustCompile(`(?i)^\s*#+\s*.*reflection`)
)

// ClassifyComments splits a sprint's comments into planning and review lists.
//
// Comments are scanned in chronological order. A bare "# Review" heading opens
// the review section and is itself discarded. Inside the review section,
// reflection-heading comments become review comments; goal-heading comments
// become planning comments wherever they appear; everything else is dropped.
// The input slice is not mutated, and both outputs preserve chronological order.
func ClassifyComments(comments []domain.Comment) (planning, review []domain.Comment) {
	sorted := make([]domain.Comment, len(comments))
	copy(sorted, comments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	reviewSectionStarted := false
	for _, comment := range sorted {
		if reviewSplitterPattern.MatchString(strings.TrimSpace(comment.Body)) {
			reviewSectionStarted = true
			continue
		}
		switch {
		case reviewSectionStarted && reflectionPattern.MatchString(comment.Body):
			review = append(review, comment)
		case goalPattern.MatchString(comment.Body):
			planning = append(planning, comment)
		}
	}
	return planning, review
}

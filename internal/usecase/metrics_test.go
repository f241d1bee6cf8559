package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tku137/gitlab-sprint-stats/internal/domain"
)

func TestMRRate(t *testing.T) {
	planning := []domain.Comment{
		{Body: "# Goal: a", AuthorUsername: "alice"},
		{Body: "# Goal: b", AuthorUsername: "bob"},
		{Body: "# Goal: c", AuthorUsername: "alice"}, // duplicate author
	}
	created := make([]domain.MergeRequest, 4)

	assert.Equal(t, 2.0, MRRate(planning, created))
	assert.Equal(t, 0.0, MRRate(nil, created), "no planning authors yields 0")
	assert.Equal(t, 0.0, MRRate(planning, nil), "zero MRs yields rate 0")
}

func TestMRCompletionRate(t *testing.T) {
	mrs := []domain.MergeRequest{
		{State: "merged"},
		{State: "merged"},
		{State: "merged"},
		{State: "opened"},
		{State: "closed"},
	}
	assert.Equal(t, 0.6, MRCompletionRate(mrs))
	assert.Equal(t, 0.0, MRCompletionRate(nil))
}

func TestAverageTimeToMerge(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	merged := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)

	mrs := []domain.MergeRequest{
		{State: "merged", CreatedAt: created, MergedAt: &merged},
		{State: "opened", CreatedAt: created},
	}
	assert.InDelta(t, 36.0, AverageTimeToMerge(mrs), 1e-9)

	t.Run("no merged MRs", func(t *testing.T) {
		assert.Equal(t, 0.0, AverageTimeToMerge([]domain.MergeRequest{{State: "opened"}}))
		assert.Equal(t, 0.0, AverageTimeToMerge(nil))
	})

	t.Run("merged state without timestamp is skipped", func(t *testing.T) {
		assert.Equal(t, 0.0, AverageTimeToMerge([]domain.MergeRequest{{State: "merged", CreatedAt: created}}))
	})
}

func TestCodeReviewEfficiency(t *testing.T) {
	discussions := [][]domain.Comment{
		{{AuthorID: 1}, {AuthorID: 2}}, // 2 comments
		{},                             // no discussion
		{{AuthorID: 3}},                // 1 comment
		{},                             // no discussion
	}
	avg, percentWithout := CodeReviewEfficiency(discussions)
	assert.InDelta(t, 0.75, avg, 1e-9)
	assert.InDelta(t, 50.0, percentWithout, 1e-9)

	avg, percentWithout = CodeReviewEfficiency(nil)
	assert.Equal(t, 0.0, avg)
	assert.Equal(t, 0.0, percentWithout)
}

func TestExtractIssueRefs(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		expected []domain.IssueRef
	}{
		{
			name:     "issue URL",
			body:     "see https://gitlab.example.com/group/sub/proj/-/issues/42",
			expected: []domain.IssueRef{{ProjectPath: "group/sub/proj", IssueID: "42"}},
		},
		{
			name:     "work item URL",
			body:     "tracked in https://gitlab.com/org/team/repo/-/work_items/7",
			expected: []domain.IssueRef{{ProjectPath: "org/team/repo", IssueID: "7"}},
		},
		{
			name: "multiple references with duplicates preserved",
			body: "https://gitlab.com/a/b/c/-/issues/1 and https://gitlab.com/a/b/c/-/issues/1 plus https://gitlab.com/a/b/c/-/issues/2",
			expected: []domain.IssueRef{
				{ProjectPath: "a/b/c", IssueID: "1"},
				{ProjectPath: "a/b/c", IssueID: "1"},
				{ProjectPath: "a/b/c", IssueID: "2"},
			},
		},
		{
			name:     "no references",
			body:     "nothing to see here",
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			refs := ExtractIssueRefs([]domain.Comment{{Body: tc.body}})
			assert.Equal(t, tc.expected, refs)
		})
	}
}

func TestScopeChange(t *testing.T) {
	planning := []domain.Comment{
		{Body: "# Goal: https://gitlab.com/g/s/p1/-/issues/1 https://gitlab.com/g/s/p1/-/issues/2"},
	}
	review := []domain.Comment{
		{Body: "# Reflection: also did https://gitlab.com/g/s/p1/-/issues/3"},
	}

	newIssues, rate := ScopeChange(planning, review)
	assert.Equal(t, 1, newIssues)
	assert.InDelta(t, 0.5, rate, 1e-9)

	t.Run("no planned issues masks new scope", func(t *testing.T) {
		newIssues, rate := ScopeChange(nil, review)
		assert.Equal(t, 0, newIssues)
		assert.Equal(t, 0.0, rate)
	})

	t.Run("no change", func(t *testing.T) {
		newIssues, rate := ScopeChange(planning, nil)
		assert.Equal(t, 0, newIssues)
		assert.Equal(t, 0.0, rate)
	})
}

func TestCollaborationScore(t *testing.T) {
	discussions := [][]domain.Comment{
		{{AuthorID: 1}, {AuthorID: 2}, {AuthorID: 1}},
		{},
		{{AuthorID: 2}},
	}
	unique, avg := CollaborationScore(discussions)
	assert.Equal(t, 2, unique)
	assert.InDelta(t, 2.0, avg, 1e-9) // 4 comments over 2 discussed MRs

	unique, avg = CollaborationScore(nil)
	assert.Equal(t, 0, unique)
	assert.Equal(t, 0.0, avg)
}

func TestWorkDistribution(t *testing.T) {
	mrs := []domain.MergeRequest{
		{AuthorUsername: "alice"},
		{AuthorUsername: "bob"},
		{AuthorUsername: "alice"},
	}
	assert.Equal(t, map[string]int{"alice": 2, "bob": 1}, WorkDistribution(mrs))
	assert.Equal(t, map[string]int{}, WorkDistribution(nil))
}

package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tku137/gitlab-sprint-stats/internal/domain"
)

func commentAt(body string, author string, t time.Time) domain.Comment {
	return domain.Comment{Body: body, AuthorUsername: author, CreatedAt: t}
}

func TestClassifyComments(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name             string
		comments         []domain.Comment
		expectedPlanning []string
		expectedReview   []string
	}{
		{
			name: "goal then review splitter then reflection",
			comments: []domain.Comment{
				commentAt("# Goal: ship X", "alice", base),
				commentAt("# Review", "alice", base.Add(time.Hour)),
				commentAt("# Reflection: went well", "bob", base.Add(2*time.Hour)),
			},
			expectedPlanning: []string{"# Goal: ship X"},
			expectedReview:   []string{"# Reflection: went well"},
		},
		{
			name: "comments arrive out of order and are sorted by creation time",
			comments: []domain.Comment{
				commentAt("## Sprint reflection", "bob", base.Add(3*time.Hour)),
				commentAt("# Review", "alice", base.Add(2*time.Hour)),
				commentAt("## Goals for this sprint", "alice", base),
			},
			expectedPlanning: []string{"## Goals for this sprint"},
			expectedReview:   []string{"## Sprint reflection"},
		},
		{
			name: "reflection before the review splitter is not a review comment",
			comments: []domain.Comment{
				commentAt("# Reflection: too early", "bob", base),
				commentAt("# Review", "alice", base.Add(time.Hour)),
			},
			expectedPlanning: nil,
			expectedReview:   nil,
		},
		{
			name: "splitter matching is case-insensitive and tolerates whitespace",
			comments: []domain.Comment{
				commentAt("  #  review  ", "alice", base),
				commentAt("### My reflection on the sprint", "bob", base.Add(time.Hour)),
			},
			expectedPlanning: nil,
			expectedReview:   []string{"### My reflection on the sprint"},
		},
		{
			name: "goal headings still count as planning inside the review section",
			comments: []domain.Comment{
				commentAt("# Review", "alice", base),
				commentAt("# Goal: follow-up", "alice", base.Add(time.Hour)),
			},
			expectedPlanning: []string{"# Goal: follow-up"},
			expectedReview:   nil,
		},
		{
			name: "unrelated chatter is dropped",
			comments: []domain.Comment{
				commentAt("thanks everyone!", "carol", base),
				commentAt("see you at standup", "dave", base.Add(time.Minute)),
			},
			expectedPlanning: nil,
			expectedReview:   nil,
		},
		{
			name:             "empty input",
			comments:         nil,
			expectedPlanning: nil,
			expectedReview:   nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			planning, review := ClassifyComments(tc.comments)
			assert.Equal(t, tc.expectedPlanning, bodies(planning))
			assert.Equal(t, tc.expectedReview, bodies(review))
		})
	}
}

// Re-running the classifier over its own planning output must reproduce it.
func TestClassifyComments_Idempotent(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	comments := []domain.Comment{
		commentAt("# Goal: finish API", "alice", base),
		commentAt("# Goal: write docs", "bob", base.Add(time.Hour)),
		commentAt("# Review", "alice", base.Add(2*time.Hour)),
		commentAt("# Reflection: docs slipped", "bob", base.Add(3*time.Hour)),
	}

	planning, review := ClassifyComments(comments)
	assert.Len(t, planning, 2)
	assert.Len(t, review, 1)

	planningAgain, reviewAgain := ClassifyComments(planning)
	assert.Equal(t, planning, planningAgain)
	assert.Empty(t, reviewAgain)
}

func TestClassifyComments_DoesNotMutateInput(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	comments := []domain.Comment{
		commentAt("# Goal: b", "bob", base.Add(time.Hour)),
		commentAt("# Goal: a", "alice", base),
	}
	ClassifyComments(comments)
	assert.Equal(t, "# Goal: b", comments[0].Body)
	assert.Equal(t, "# Goal: a", comments[1].Body)
}

func bodies(comments []domain.Comment) []string {
	if len(comments) == 0 {
		return nil
	}
	out := make([]string, len(comments))
	for i, c := range comments {
		out[i] = c.Body
	}
	return out
}

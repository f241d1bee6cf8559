package usecase

import (
	"regexp"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/tku137/gitlab-sprint-stats/internal/domain"
)

// issueURLPattern matches GitLab issue and work-item URLs embedded in comment
// bodies. Group 1 is the full path under the host, group 3 the issue id.
var issueURLPattern = regexp.MustCompile(`https://[\w.-]+/([\w-]+/[\w-]+/[\w-]+/-/(issues|work_items)/(\d+))`)

const mergedState = "merged"

// MRRate is the number of merge requests created during the sprint per distinct
// planning-comment author. Returns 0 when nobody wrote a planning comment.
func MRRate(planning []domain.Comment, createdMRs []domain.MergeRequest) float64 {
	authors := make(map[string]struct{})
	for _, c := range planning {
		authors[c.AuthorUsername] = struct{}{}
	}
	if len(authors) == 0 {
		return 0
	}
	return float64(len(createdMRs)) / float64(len(authors))
}

// MRCompletionRate is the fraction of sprint-created merge requests that ended
// up merged. Returns 0 for an empty input.
func MRCompletionRate(createdMRs []domain.MergeRequest) float64 {
	if len(createdMRs) == 0 {
		return 0
	}
	merged := 0
	for _, mr := range createdMRs {
		if mr.State == mergedState {
			merged++
		}
	}
	return float64(merged) / float64(len(createdMRs))
}

// AverageTimeToMerge is the mean time from creation to merge, in hours, over
// the merged merge requests in the input. Returns 0 when none were merged.
func AverageTimeToMerge(mrs []domain.MergeRequest) float64 {
	var hours []float64
	for _, mr := range mrs {
		if mr.State != mergedState || mr.MergedAt == nil {
			continue
		}
		hours = append(hours, mr.MergedAt.Sub(mr.CreatedAt).Hours())
	}
	if len(hours) == 0 {
		return 0
	}
	mean, err := stats.Mean(hours)
	if err != nil {
		return 0
	}
	return mean
}

// CodeReviewEfficiency reports the average human-comment count per merge
// request and the percentage of merge requests with no human comments at all.
// discussions holds one comment slice per merge request, so its length is the
// number of merge requests considered. Both values are 0 for an empty input.
func CodeReviewEfficiency(discussions [][]domain.Comment) (avgDiscussionsPerMR, percentWithout float64) {
	if len(discussions) == 0 {
		return 0, 0
	}
	totalComments := 0
	mrsWithComments := 0
	for _, comments := range discussions {
		if len(comments) > 0 {
			totalComments += len(comments)
			mrsWithComments++
		}
	}
	avgDiscussionsPerMR = float64(totalComments) / float64(len(discussions))
	percentWithout = float64(len(discussions)-mrsWithComments) / float64(len(discussions)) * 100
	return avgDiscussionsPerMR, percentWithout
}

// ExtractIssueRefs scans comment bodies for issue and work-item URLs and
// returns the referenced (project path, issue id) pairs. The project path is
// the matched path with the trailing "-/issues/<id>" segments dropped.
// Duplicates are preserved; callers wanting set semantics deduplicate themselves.
func ExtractIssueRefs(comments []domain.Comment) []domain.IssueRef {
	var refs []domain.IssueRef
	for _, comment := range comments {
		for _, match := range issueURLPattern.FindAllStringSubmatch(comment.Body, -1) {
			segments := strings.Split(match[1], "/")
			refs = append(refs, domain.IssueRef{
				ProjectPath: strings.Join(segments[:len(segments)-3], "/"),
				IssueID:     match[3],
			})
		}
	}
	return refs
}

// ScopeChange compares the issues referenced while planning against all issues
// referenced across planning and review. It returns how many issues appeared
// only after planning and that count as a fraction of the planned set.
//
// When no issues were planned at all it returns (0, 0), even if review comments
// do reference issues; this mirrors the established behavior of the metric.
func ScopeChange(planning, review []domain.Comment) (newIssues int, rate float64) {
	planned := make(map[domain.IssueRef]struct{})
	for _, ref := range ExtractIssueRefs(planning) {
		planned[ref] = struct{}{}
	}

	all := make(map[domain.IssueRef]struct{})
	for _, ref := range ExtractIssueRefs(review) {
		all[ref] = struct{}{}
	}
	for ref := range planned {
		all[ref] = struct{}{}
	}

	if len(planned) == 0 {
		return 0, 0
	}
	for ref := range all {
		if _, ok := planned[ref]; !ok {
			newIssues++
		}
	}
	return newIssues, float64(newIssues) / float64(len(planned))
}

// CollaborationScore reports how many distinct people commented across the
// given merge request discussions and the average number of comment instances
// per discussed merge request (0 when no merge request drew any comments).
func CollaborationScore(discussions [][]domain.Comment) (uniqueContributors int, avgParticipants float64) {
	contributors := make(map[int]struct{})
	totalComments := 0
	mrsWithComments := 0
	for _, comments := range discussions {
		for _, comment := range comments {
			contributors[comment.AuthorID] = struct{}{}
			totalComments++
		}
		if len(comments) > 0 {
			mrsWithComments++
		}
	}
	if mrsWithComments > 0 {
		avgParticipants = float64(totalComments) / float64(mrsWithComments)
	}
	return len(contributors), avgParticipants
}

// WorkDistribution counts authored merge requests per author username.
func WorkDistribution(mrs []domain.MergeRequest) map[string]int {
	distribution := make(map[string]int)
	for _, mr := range mrs {
		distribution[mr.AuthorUsername]++
	}
	return distribution
}

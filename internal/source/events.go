package source

import (
	"time"

	"github.com/google/go-github/v62/github"
)

// Kind tags which raw shape a RawEvent carries.
type Kind string

// All raw event kinds the client produces.
const (
	KindCommit  Kind = "commit"
	KindPull    Kind = "pull"
	KindReview  Kind = "review"
	KindComment Kind = "comment"
	KindIssue   Kind = "issue"
)

// RawEvent is one source object exactly as the API returned it.
// Exactly one payload field matching Kind is set.
type RawEvent struct {
	Kind       Kind
	Repository string

	Commit  *github.RepositoryCommit
	Pull    *github.PullRequest
	Review  *github.PullRequestReview
	Comment *github.IssueComment
	Issue   *github.Issue

	// PullNumber is the pull request a review belongs to.
	PullNumber int

	// Since is the window start of listings that are not filtered by time
	// upstream. Activities dated before it are dropped during normalization.
	Since time.Time
}

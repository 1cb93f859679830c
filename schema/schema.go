// Package schema has the models and constants for all parts of contriboard.
package schema

import "time"

// Activity is one normalized contributor action in one repository.
// The tuple (Repository, ActivityType, EntityRef) is unique.
type Activity struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Repository   string       `json:"repository"`
	ActivityType ActivityType `json:"activityType"`
	EntityRef    string       `json:"entityRef"`
	Timestamp    time.Time    `json:"timestamp"`
	Metadata     Metadata     `json:"metadata"`
}

// Metadata is the closed set of optional type-specific fields on an activity.
// Nothing in scoring depends on it.
type Metadata struct {
	URL          string     `json:"url,omitempty"`
	Title        string     `json:"title,omitempty"`
	Body         string     `json:"body,omitempty"`
	Message      string     `json:"message,omitempty"`
	SHA          string     `json:"sha,omitempty"`
	Number       int        `json:"number,omitempty"`
	State        string     `json:"state,omitempty"`
	Draft        bool       `json:"draft,omitempty"`
	Labels       []string   `json:"labels,omitempty"`
	MergedAt     *time.Time `json:"mergedAt,omitempty"`
	MergedBy     string     `json:"mergedBy,omitempty"`
	ReviewID     int64      `json:"reviewId,omitempty"`
	ReviewState  string     `json:"reviewState,omitempty"`
	CommentID    int64      `json:"commentId,omitempty"`
	Additions    int        `json:"additions,omitempty"`
	Deletions    int        `json:"deletions,omitempty"`
	ChangedFiles int        `json:"changedFiles,omitempty"`
}

// Profile holds optional, lazily refreshed identity details.
type Profile struct {
	GitHubID  int64     `json:"githubId,omitempty"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Company   string    `json:"company,omitempty"`
	Location  string    `json:"location,omitempty"`
	Blog      string    `json:"blog,omitempty"`
	Twitter   string    `json:"twitterUsername,omitempty"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// RepositoryStats is the per-repository slice of a contributor aggregate.
type RepositoryStats struct {
	Repository     string    `json:"repository"`
	Score          float64   `json:"score"`
	Commits        int       `json:"commits"`
	PullRequests   int       `json:"pullRequests"`
	PRsMerged      int       `json:"prsMerged"`
	Reviews        int       `json:"reviews"`
	Comments       int       `json:"comments"`
	IssuesOpened   int       `json:"issuesOpened"`
	Activities     int       `json:"activities"`
	LastActivityAt time.Time `json:"lastActivityAt"`
}

// Totals is the sum of every RepositoryStats entry of one contributor.
type Totals struct {
	ActivityScore float64 `json:"activityScore"`
	Commits       int     `json:"commits"`
	PRsOpened     int     `json:"prsOpened"`
	PRsMerged     int     `json:"prsMerged"`
	Reviews       int     `json:"reviews"`
	Comments      int     `json:"comments"`
	IssuesOpened  int     `json:"issuesOpened"`
	Activities    int     `json:"activities"`
}

// Contributor is the aggregate view over one canonical identity.
type Contributor struct {
	Username        string            `json:"username"`
	Profile         Profile           `json:"profile"`
	RepositoryStats []RepositoryStats `json:"repositoryStats"`
	Totals          Totals            `json:"totals"`
	ActivityStatus  ActivityStatus    `json:"activityStatus"`
	RisingStarIndex float64           `json:"risingStarIndex"`
	FirstActivityAt time.Time         `json:"firstActivityAt"`
	LastActivityAt  time.Time         `json:"lastActivityAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// ContributorSnapshot is an immutable dated copy of a contributor's totals.
type ContributorSnapshot struct {
	Username   string    `json:"username"`
	Date       time.Time `json:"date"`
	Totals     Totals    `json:"totals"`
	CapturedAt time.Time `json:"capturedAt"`
}

// SyncState is the operational state of one source repository.
type SyncState struct {
	Repository          string     `json:"repository"`
	Status              SyncStatus `json:"status"`
	LastSyncAt          *time.Time `json:"lastSyncAt,omitempty"`
	StartedAt           *time.Time `json:"startedAt,omitempty"`
	ActivitiesProcessed int        `json:"activitiesProcessed"`
	Cursor              string     `json:"cursor,omitempty"`
	Error               string     `json:"error,omitempty"`
}

// RepoOutcome is the per-repository result of one orchestration run.
type RepoOutcome struct {
	Repository          string     `json:"repository"`
	Status              SyncStatus `json:"status"`
	Skipped             bool       `json:"skipped,omitempty"`
	ActivitiesProcessed int        `json:"activitiesProcessed"`
	Discarded           int        `json:"discarded"`
	Contributors        int        `json:"contributors"`
	DurationMs          int64      `json:"durationMs"`
	Error               string     `json:"error,omitempty"`
}

// RunSummary is the result of one full orchestration run.
type RunSummary struct {
	RunID      string        `json:"runId"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	Cancelled  bool          `json:"cancelled,omitempty"`
	Results    []RepoOutcome `json:"results"`
}

// Failed returns the number of repositories that ended in the failed state.
func (s RunSummary) Failed() int {
	n := 0
	for _, r := range s.Results {
		if r.Status == SyncFailed {
			n++
		}
	}
	return n
}

package schema

import "time"

// ContributorFilter narrows and orders a contributor listing.
type ContributorFilter struct {
	Repository string
	Search     string
	SortBy     SortKey
	Ascending  bool
	Limit      int
	Offset     int
}

// ActivityFilter narrows an activity timeline query.
type ActivityFilter struct {
	Username   string
	Repository string
	Types      []ActivityType
	Since      time.Time
	Until      time.Time
	Limit      int
	Offset     int
}

// ActivityCount is a grouped count of activities for one username and type.
type ActivityCount struct {
	Username     string
	ActivityType ActivityType
	Count        int
}

// ContributorPage is one page of a contributor listing.
type ContributorPage struct {
	Contributors []Contributor `json:"contributors"`
	Total        int           `json:"total"`
	Limit        int           `json:"limit"`
	Offset       int           `json:"offset"`
}

// ActivityTimeline is one page of activities.
type ActivityTimeline struct {
	Activities []Activity `json:"activities"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	HasMore    bool       `json:"hasMore"`
}

// ContributorDetail is a contributor with its rank and recent snapshots.
type ContributorDetail struct {
	Contributor Contributor           `json:"contributor"`
	Rank        int                   `json:"rank"`
	Snapshots   []ContributorSnapshot `json:"snapshots"`
}

// LeaderboardEntry is one ranked row of a leaderboard or ranking.
type LeaderboardEntry struct {
	Rank            int            `json:"rank"`
	Username        string         `json:"username"`
	Name            string         `json:"name,omitempty"`
	AvatarURL       string         `json:"avatarUrl,omitempty"`
	Score           float64        `json:"score"`
	Commits         int            `json:"commits"`
	PRsOpened       int            `json:"prsOpened"`
	PRsMerged       int            `json:"prsMerged"`
	Reviews         int            `json:"reviews"`
	Comments        int            `json:"comments"`
	IssuesOpened    int            `json:"issuesOpened"`
	RisingStarIndex float64        `json:"risingStarIndex,omitempty"`
	ActivityStatus  ActivityStatus `json:"activityStatus,omitempty"`
}

// Leaderboard is an ordered view over current contributor aggregates.
type Leaderboard struct {
	Type        LeaderboardType    `json:"type"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Entries     []LeaderboardEntry `json:"data"`
	Count       int                `json:"count"`
}

// Pagination describes the position of a page within a result set.
type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// RankingPage is a paginated ranking over a period of the activity log.
type RankingPage struct {
	Mode        LeaderboardType    `json:"mode"`
	Period      RankingPeriod      `json:"period"`
	Repository  string             `json:"repo,omitempty"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Entries     []LeaderboardEntry `json:"data"`
	Pagination  Pagination         `json:"pagination"`
}

// TypeCount is the number of activities of one type.
type TypeCount struct {
	ActivityType ActivityType `json:"activityType"`
	Count        int          `json:"count"`
}

// DailyActivity buckets one UTC day of activity by category.
type DailyActivity struct {
	Date         string `json:"date"`
	Commits      int    `json:"commits"`
	PullRequests int    `json:"pullRequests"`
	Reviews      int    `json:"reviews"`
	Comments     int    `json:"comments"`
}

// ContributorAnalytics breaks down activity within a date range. From and
// Until are zero when the range is open on that side.
type ContributorAnalytics struct {
	Username       string          `json:"username,omitempty"`
	Repository     string          `json:"repository,omitempty"`
	From           time.Time       `json:"from,omitzero"`
	Until          time.Time       `json:"until,omitzero"`
	Total          int             `json:"total"`
	ActivityByType []TypeCount     `json:"activityByType"`
	ActivityByDate []DailyActivity `json:"activityByDate"`
}

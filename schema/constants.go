package schema

// Custom string types for type safety.
type (
	// ActivityType is the canonical category of a normalized activity.
	ActivityType string

	// OutputMode represents the format of the output.
	OutputMode string

	// ActivityStatus is the recency bucket of a contributor.
	ActivityStatus string

	// SyncStatus is the state of a repository sync.
	SyncStatus string

	// LeaderboardType selects the ordering of a leaderboard.
	LeaderboardType string

	// RankingPeriod selects the time window of a ranking.
	RankingPeriod string

	// AnalyticsTimeline selects the date range of contributor analytics.
	AnalyticsTimeline string

	// SortKey selects the ordering of a contributor listing.
	SortKey string

	// DatabaseBackend represents the database backend for storage.
	DatabaseBackend string
)

// All activity types supported.
const (
	Commit                 ActivityType = "COMMIT"
	PROpened               ActivityType = "PR_OPENED"
	PRMerged               ActivityType = "PR_MERGED"
	PRClosed               ActivityType = "PR_CLOSED"
	ReviewApproved         ActivityType = "REVIEW_APPROVED"
	ReviewCommented        ActivityType = "REVIEW_COMMENTED"
	ReviewChangesRequested ActivityType = "REVIEW_CHANGES_REQUESTED"
	IssueComment           ActivityType = "ISSUE_COMMENT"
	PRComment              ActivityType = "PR_COMMENT"
	IssueOpened            ActivityType = "ISSUE_OPENED"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All activity statuses supported.
const (
	ActiveStatus     ActivityStatus = "Active"
	OccasionalStatus ActivityStatus = "Occasional"
	DormantStatus    ActivityStatus = "Dormant"
)

// All sync statuses supported.
const (
	SyncIdle    SyncStatus = "idle"
	SyncRunning SyncStatus = "running"
	SyncFailed  SyncStatus = "failed"
)

// All leaderboard types supported.
const (
	OverallBoard     LeaderboardType = "overall" // default
	CommitsBoard     LeaderboardType = "commits"
	PRsBoard         LeaderboardType = "prs"
	ReviewsBoard     LeaderboardType = "reviews"
	CommentsBoard    LeaderboardType = "comments"
	IssuesBoard      LeaderboardType = "issues"
	RisingStarsBoard LeaderboardType = "rising-stars"
	MentorsBoard     LeaderboardType = "mentors"
)

// All ranking periods supported.
const (
	AllTimePeriod RankingPeriod = "all" // default
	WeeklyPeriod  RankingPeriod = "weekly"
	MonthlyPeriod RankingPeriod = "monthly"
)

// All analytics timelines supported.
const (
	Last30DaysTimeline AnalyticsTimeline = "30d" // default
	LastMonthTimeline  AnalyticsTimeline = "month"
	LastYearTimeline   AnalyticsTimeline = "year"
	AllTimeTimeline    AnalyticsTimeline = "all"
	CustomTimeline     AnalyticsTimeline = "custom"
)

// All contributor sort keys supported.
const (
	SortByScore        SortKey = "totalScore" // default
	SortByActivities   SortKey = "totalActivities"
	SortByLastActivity SortKey = "lastActivityAt"
)

// All storage backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// AllActivityTypes returns every activity type in a fixed order.
var AllActivityTypes = []ActivityType{
	Commit,
	PROpened, PRMerged, PRClosed,
	ReviewApproved, ReviewCommented, ReviewChangesRequested,
	IssueComment, PRComment,
	IssueOpened,
}

// ValidActivityTypes lists all valid activity types.
var ValidActivityTypes = map[ActivityType]struct{}{
	Commit:                 {},
	PROpened:               {},
	PRMerged:               {},
	PRClosed:               {},
	ReviewApproved:         {},
	ReviewCommented:        {},
	ReviewChangesRequested: {},
	IssueComment:           {},
	PRComment:              {},
	IssueOpened:            {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidLeaderboardTypes lists all valid leaderboard types.
var ValidLeaderboardTypes = map[LeaderboardType]struct{}{
	OverallBoard:     {},
	CommitsBoard:     {},
	PRsBoard:         {},
	ReviewsBoard:     {},
	CommentsBoard:    {},
	IssuesBoard:      {},
	RisingStarsBoard: {},
	MentorsBoard:     {},
}

// ValidRankingPeriods lists all valid ranking periods.
var ValidRankingPeriods = map[RankingPeriod]struct{}{
	AllTimePeriod: {},
	WeeklyPeriod:  {},
	MonthlyPeriod: {},
}

// ValidAnalyticsTimelines lists all valid analytics timelines.
var ValidAnalyticsTimelines = map[AnalyticsTimeline]struct{}{
	Last30DaysTimeline: {},
	LastMonthTimeline:  {},
	LastYearTimeline:   {},
	AllTimeTimeline:    {},
	CustomTimeline:     {},
}

// ValidSortKeys lists all valid contributor sort keys.
var ValidSortKeys = map[SortKey]struct{}{
	SortByScore:        {},
	SortByActivities:   {},
	SortByLastActivity: {},
}

// ValidDatabaseBackends lists all valid storage backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// GetDefaultWeights returns the canonical score weight per activity type.
func GetDefaultWeights() map[ActivityType]float64 {
	return map[ActivityType]float64{
		Commit:                 3,
		PROpened:               5,
		PRMerged:               10,
		PRClosed:               2,
		ReviewApproved:         8,
		ReviewCommented:        4,
		ReviewChangesRequested: 6,
		IssueComment:           2,
		PRComment:              3,
		IssueOpened:            3,
	}
}

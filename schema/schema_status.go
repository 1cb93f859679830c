package schema

import "time"

// StoreStatus represents the status of the activity store.
type StoreStatus struct {
	Backend        string           `json:"backend"`
	Connected      bool             `json:"connected"`
	Activities     int              `json:"activities"`
	Contributors   int              `json:"contributors"`
	Snapshots      int              `json:"snapshots"`
	LastActivityAt time.Time        `json:"last_activity_at"`
	LastSnapshotAt time.Time        `json:"last_snapshot_at"`
	TableRows      map[string]int64 `json:"table_rows"`
}

// RecentCounts holds activity counts over trailing windows.
type RecentCounts struct {
	Last24h int `json:"last24h"`
	Last7d  int `json:"last7d"`
	Last30d int `json:"last30d"`
}

// RepositorySummary is the per-repository slice of the aggregate stats.
type RepositorySummary struct {
	Repository   string     `json:"repository"`
	Contributors int        `json:"contributors"`
	Activities   int        `json:"activities"`
	Score        float64    `json:"score"`
	Status       SyncStatus `json:"status,omitempty"`
	LastSyncAt   *time.Time `json:"lastSyncAt,omitempty"`
}

// StatsSummary is the aggregate view returned by the stats endpoint.
type StatsSummary struct {
	TotalContributors  int                 `json:"totalContributors"`
	TotalActivities    int                 `json:"totalActivities"`
	TotalScore         float64             `json:"totalScore"`
	ActiveContributors int                 `json:"activeContributors30d"`
	Recent             RecentCounts        `json:"recentActivity"`
	ByType             map[string]int      `json:"byType"`
	Repositories       []RepositorySummary `json:"repositories"`
	GeneratedAt        time.Time           `json:"generatedAt"`
}

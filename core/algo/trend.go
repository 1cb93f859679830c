package algo

import (
	"math"
	"time"

	"github.com/huangsam/contriboard/schema"
)

// RisingStarIndex is the least-squares slope of activity score per day across
// the last window snapshots. Fewer than two snapshots yield 0.
func RisingStarIndex(snapshots []schema.ContributorSnapshot, window int) float64 {
	if window > 0 && len(snapshots) > window {
		snapshots = snapshots[len(snapshots)-window:]
	}
	if len(snapshots) < 2 {
		return 0
	}

	origin := snapshots[0].Date
	n := float64(len(snapshots))
	var sumX, sumY, sumXY, sumXX float64
	for _, s := range snapshots {
		x := s.Date.Sub(origin).Hours() / 24
		y := s.Totals.ActivityScore
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return round((n*sumXY-sumX*sumY)/denom, 4)
}

// StatusFor buckets a contributor by how recently they were last active.
func StatusFor(lastActivity, now time.Time, activeDays, occasionalDays int) schema.ActivityStatus {
	if lastActivity.IsZero() {
		return schema.DormantStatus
	}
	age := now.Sub(lastActivity)
	switch {
	case age <= time.Duration(activeDays)*24*time.Hour:
		return schema.ActiveStatus
	case age <= time.Duration(occasionalDays)*24*time.Hour:
		return schema.OccasionalStatus
	default:
		return schema.DormantStatus
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Package algo has the pure ordering and trend computations over contributor aggregates.
package algo

import (
	"sort"

	"github.com/huangsam/contriboard/schema"
)

// Candidate is the minimum a leaderboard needs to order one contributor.
type Candidate struct {
	Username        string
	Name            string
	AvatarURL       string
	Totals          schema.Totals
	RisingStarIndex float64
	ActivityStatus  schema.ActivityStatus
}

// CandidateFromContributor projects a stored aggregate onto a leaderboard candidate.
func CandidateFromContributor(c schema.Contributor) Candidate {
	return Candidate{
		Username:        c.Username,
		Name:            c.Profile.Name,
		AvatarURL:       c.Profile.AvatarURL,
		Totals:          c.Totals,
		RisingStarIndex: c.RisingStarIndex,
		ActivityStatus:  c.ActivityStatus,
	}
}

// BoardOptions holds the thresholds a board applies before ordering.
type BoardOptions struct {
	MentorMinReviews int
}

// sortKey returns the ordering key of a candidate on a board, compared lexicographically.
func sortKey(t schema.LeaderboardType, c Candidate) []float64 {
	tt := c.Totals
	switch t {
	case schema.CommitsBoard:
		return []float64{float64(tt.Commits)}
	case schema.PRsBoard:
		return []float64{float64(tt.PRsOpened)}
	case schema.ReviewsBoard:
		return []float64{float64(tt.Reviews)}
	case schema.CommentsBoard:
		return []float64{float64(tt.Comments)}
	case schema.IssuesBoard:
		return []float64{float64(tt.IssuesOpened)}
	case schema.RisingStarsBoard:
		return []float64{c.RisingStarIndex}
	case schema.MentorsBoard:
		return []float64{float64(tt.Reviews), float64(tt.Comments)}
	default:
		return []float64{tt.ActivityScore}
	}
}

// compareKeys returns 1 if a orders before b, -1 if after and 0 on a tie.
func compareKeys(a, b []float64) int {
	for i := range a {
		switch {
		case a[i] > b[i]:
			return 1
		case a[i] < b[i]:
			return -1
		}
	}
	return 0
}

// eligible reports whether a candidate appears on a board at all.
func eligible(t schema.LeaderboardType, c Candidate, opts BoardOptions) bool {
	switch t {
	case schema.RisingStarsBoard:
		return c.RisingStarIndex > 0
	case schema.MentorsBoard:
		return c.Totals.Reviews >= opts.MentorMinReviews
	default:
		return true
	}
}

// SortBoard filters candidates for a board and orders them by the board key
// descending, breaking ties by username ascending.
func SortBoard(t schema.LeaderboardType, candidates []Candidate, opts BoardOptions) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if eligible(t, c, opts) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if cmp := compareKeys(sortKey(t, out[i]), sortKey(t, out[j])); cmp != 0 {
			return cmp > 0
		}
		return out[i].Username < out[j].Username
	})
	return out
}

// RankOf returns 1 plus the number of eligible candidates strictly greater
// than username by the board key. It returns 0 when username is not eligible.
func RankOf(t schema.LeaderboardType, candidates []Candidate, username string, opts BoardOptions) int {
	var target *Candidate
	for i := range candidates {
		if candidates[i].Username == username {
			target = &candidates[i]
			break
		}
	}
	if target == nil || !eligible(t, *target, opts) {
		return 0
	}
	key := sortKey(t, *target)
	rank := 1
	for _, c := range candidates {
		if eligible(t, c, opts) && compareKeys(sortKey(t, c), key) > 0 {
			rank++
		}
	}
	return rank
}

// Entries turns a sorted board into numbered rows. Tied keys share a rank,
// consistent with RankOf. The window [offset, offset+limit) is returned.
func Entries(t schema.LeaderboardType, sorted []Candidate, offset, limit int) []schema.LeaderboardEntry {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(sorted) {
		return []schema.LeaderboardEntry{}
	}
	end := len(sorted)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	entries := make([]schema.LeaderboardEntry, 0, end-offset)
	rank := 1
	for i := 0; i < end; i++ {
		if i > 0 && compareKeys(sortKey(t, sorted[i-1]), sortKey(t, sorted[i])) != 0 {
			rank = i + 1
		}
		if i < offset {
			continue
		}
		c := sorted[i]
		entries = append(entries, schema.LeaderboardEntry{
			Rank:            rank,
			Username:        c.Username,
			Name:            c.Name,
			AvatarURL:       c.AvatarURL,
			Score:           c.Totals.ActivityScore,
			Commits:         c.Totals.Commits,
			PRsOpened:       c.Totals.PRsOpened,
			PRsMerged:       c.Totals.PRsMerged,
			Reviews:         c.Totals.Reviews,
			Comments:        c.Totals.Comments,
			IssuesOpened:    c.Totals.IssuesOpened,
			RisingStarIndex: c.RisingStarIndex,
			ActivityStatus:  c.ActivityStatus,
		})
	}
	return entries
}

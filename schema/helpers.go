package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"
)

// ActivityID derives the stable identity of an activity from its unique key.
func ActivityID(repository string, activityType ActivityType, entityRef string) string {
	sum := sha256.Sum256([]byte(repository + "\x00" + string(activityType) + "\x00" + entityRef))
	return hex.EncodeToString(sum[:16])
}

// IsPullRequest reports whether the type describes a pull request lifecycle event.
func (t ActivityType) IsPullRequest() bool {
	return t == PROpened || t == PRMerged || t == PRClosed
}

// IsReview reports whether the type describes a submitted review.
func (t ActivityType) IsReview() bool {
	return t == ReviewApproved || t == ReviewCommented || t == ReviewChangesRequested
}

// IsComment reports whether the type describes an issue or pull request comment.
func (t ActivityType) IsComment() bool {
	return t == IssueComment || t == PRComment
}

// SplitRepository splits "owner/name" into its parts.
func SplitRepository(repository string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(repository), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("repository %q must be in owner/name form", repository)
	}
	return owner, name, nil
}

// RepositoryName returns the name part of "owner/name", or the input unchanged.
func RepositoryName(repository string) string {
	if _, name, ok := strings.Cut(repository, "/"); ok {
		return name
	}
	return repository
}

// BoardTitle returns the display title and description for a leaderboard type.
func BoardTitle(t LeaderboardType) (string, string) {
	switch t {
	case CommitsBoard:
		return "Top Committers", "Contributors with most commits"
	case PRsBoard:
		return "Top PR Contributors", "Contributors with most pull requests"
	case ReviewsBoard:
		return "Top Reviewers", "Contributors with most code reviews"
	case CommentsBoard:
		return "Top Commenters", "Contributors with most comments"
	case IssuesBoard:
		return "Top Issue Creators", "Contributors with most issues opened"
	case RisingStarsBoard:
		return "Rising Stars", "Contributors whose activity score is accelerating"
	case MentorsBoard:
		return "Top Mentors", "Contributors helping others through reviews"
	default:
		return "Overall Activity Leaders", "Top contributors by activity score"
	}
}

// cleanParts cleans a slice of name parts by trimming non-alphanumeric punctuation from ends,
// and additionally trims trailing periods for looser handling.
func cleanParts(parts []string) []string {
	var cleaned []string
	for _, p := range parts {
		cp := strings.TrimFunc(p, func(r rune) bool {
			if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || r == '\'' || r == '.' {
				return false
			}
			return true
		})
		cp = strings.TrimSuffix(cp, ".")
		if cp != "" {
			cleaned = append(cleaned, cp)
		}
	}
	return cleaned
}

// DisplayName formats a profile name for narrow table columns, so "Samuel Huang"
// becomes "Samuel H". An empty name falls back to the username.
func DisplayName(name, username string) string {
	trimmed := strings.Trim(strings.TrimSpace(name), "()\"'`")
	cleaned := cleanParts(strings.Fields(trimmed))

	switch {
	case len(cleaned) >= 2:
		last := []rune(cleaned[len(cleaned)-1])
		return cleaned[0] + " " + string(last[0])
	case len(cleaned) == 1:
		return cleaned[0]
	default:
		return username
	}
}

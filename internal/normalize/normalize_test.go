package normalize

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/huangsam/contriboard/internal/source"
	"github.com/huangsam/contriboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const repo = "ethereum/EIPs"

var (
	t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	t1 = t0.Add(48 * time.Hour)
)

func ts(t time.Time) *github.Timestamp { return &github.Timestamp{Time: t} }

func user(login string) *github.User { return &github.User{Login: github.String(login)} }

func TestNormalizeCommit(t *testing.T) {
	ev := source.RawEvent{
		Kind:       source.KindCommit,
		Repository: repo,
		Commit: &github.RepositoryCommit{
			SHA:     github.String("abc123"),
			HTMLURL: github.String("https://github.com/ethereum/EIPs/commit/abc123"),
			Author:  user("alice"),
			Commit: &github.Commit{
				Message: github.String("Add EIP-1234\n\nLong description"),
				Author:  &github.CommitAuthor{Date: ts(t0)},
			},
		},
	}

	res := Normalize(ev)
	require.Empty(t, res.Discarded)
	require.Len(t, res.Activities, 1)

	a := res.Activities[0]
	assert.Equal(t, schema.Commit, a.ActivityType)
	assert.Equal(t, "alice", a.Username)
	assert.Equal(t, "commit:abc123", a.EntityRef)
	assert.Equal(t, t0, a.Timestamp)
	assert.Equal(t, "Add EIP-1234", a.Metadata.Message)
	assert.Equal(t, schema.ActivityID(repo, schema.Commit, "commit:abc123"), a.ID)
}

func TestNormalizeCommitFallsBackToCommitterDate(t *testing.T) {
	ev := source.RawEvent{
		Kind:       source.KindCommit,
		Repository: repo,
		Commit: &github.RepositoryCommit{
			SHA:    github.String("def"),
			Author: user("bob"),
			Commit: &github.Commit{Committer: &github.CommitAuthor{Date: ts(t1)}},
		},
	}
	res := Normalize(ev)
	require.Len(t, res.Activities, 1)
	assert.Equal(t, t1, res.Activities[0].Timestamp)
}

func TestNormalizePull(t *testing.T) {
	tests := []struct {
		name  string
		pr    *github.PullRequest
		types []schema.ActivityType
	}{
		{
			name:  "open",
			pr:    &github.PullRequest{Number: github.Int(7), User: user("alice"), CreatedAt: ts(t0)},
			types: []schema.ActivityType{schema.PROpened},
		},
		{
			name: "merged",
			pr: &github.PullRequest{
				Number: github.Int(7), User: user("alice"), CreatedAt: ts(t0),
				MergedAt: ts(t1), ClosedAt: ts(t1), MergedBy: user("carol"),
			},
			types: []schema.ActivityType{schema.PROpened, schema.PRMerged},
		},
		{
			name:  "closed without merge",
			pr:    &github.PullRequest{Number: github.Int(7), User: user("alice"), CreatedAt: ts(t0), ClosedAt: ts(t1)},
			types: []schema.ActivityType{schema.PROpened, schema.PRClosed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Normalize(source.RawEvent{Kind: source.KindPull, Repository: repo, Pull: tt.pr})
			require.Empty(t, res.Discarded)
			var got []schema.ActivityType
			for _, a := range res.Activities {
				got = append(got, a.ActivityType)
				assert.Equal(t, "pr:7", a.EntityRef)
				assert.Equal(t, "alice", a.Username)
			}
			assert.Equal(t, tt.types, got)
			if len(res.Activities) == 2 {
				assert.Equal(t, t1, res.Activities[1].Timestamp)
			}
		})
	}
}

func TestNormalizePullMergedMetadata(t *testing.T) {
	res := Normalize(source.RawEvent{Kind: source.KindPull, Repository: repo, Pull: &github.PullRequest{
		Number: github.Int(9), User: user("alice"), CreatedAt: ts(t0), MergedAt: ts(t1), MergedBy: user("carol"),
		Labels: []*github.Label{{Name: github.String("a-review")}},
	}})
	require.Len(t, res.Activities, 2)
	meta := res.Activities[1].Metadata
	require.NotNil(t, meta.MergedAt)
	assert.Equal(t, t1, *meta.MergedAt)
	assert.Equal(t, "carol", meta.MergedBy)
	assert.Equal(t, []string{"a-review"}, meta.Labels)
}

func TestNormalizePullDropsActivitiesBeforeWindow(t *testing.T) {
	old := t0.AddDate(-2, 0, 0)
	tests := []struct {
		name    string
		pr      *github.PullRequest
		types   []schema.ActivityType
		discard DiscardReason
	}{
		{
			name:  "opened long ago and merged in window",
			pr:    &github.PullRequest{Number: github.Int(7), User: user("alice"), CreatedAt: ts(old), MergedAt: ts(t1), ClosedAt: ts(t1)},
			types: []schema.ActivityType{schema.PRMerged},
		},
		{
			name:    "opened and closed long ago",
			pr:      &github.PullRequest{Number: github.Int(7), User: user("alice"), CreatedAt: ts(old), ClosedAt: ts(old.Add(time.Hour))},
			discard: OutsideWindow,
		},
		{
			name:  "opened on the window start",
			pr:    &github.PullRequest{Number: github.Int(7), User: user("alice"), CreatedAt: ts(t0)},
			types: []schema.ActivityType{schema.PROpened},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Normalize(source.RawEvent{Kind: source.KindPull, Repository: repo, Pull: tt.pr, Since: t0})
			assert.Equal(t, tt.discard, res.Discarded)
			var got []schema.ActivityType
			for _, a := range res.Activities {
				got = append(got, a.ActivityType)
				assert.False(t, a.Timestamp.Before(t0))
			}
			assert.Equal(t, tt.types, got)
		})
	}
}

func TestNormalizeReview(t *testing.T) {
	tests := []struct {
		state   string
		want    schema.ActivityType
		discard DiscardReason
	}{
		{"APPROVED", schema.ReviewApproved, ""},
		{"CHANGES_REQUESTED", schema.ReviewChangesRequested, ""},
		{"COMMENTED", schema.ReviewCommented, ""},
		{"PENDING", "", UnsupportedState},
		{"DISMISSED", "", UnsupportedState},
	}
	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			res := Normalize(source.RawEvent{
				Kind:       source.KindReview,
				Repository: repo,
				PullNumber: 7,
				Review: &github.PullRequestReview{
					ID: github.Int64(99), State: github.String(tt.state), User: user("carol"), SubmittedAt: ts(t0),
				},
			})
			assert.Equal(t, tt.discard, res.Discarded)
			if tt.discard == "" {
				require.Len(t, res.Activities, 1)
				assert.Equal(t, tt.want, res.Activities[0].ActivityType)
				assert.Equal(t, "review:7:99", res.Activities[0].EntityRef)
			}
		})
	}
}

func TestNormalizeComment(t *testing.T) {
	tests := []struct {
		url  string
		want schema.ActivityType
	}{
		{"https://github.com/ethereum/EIPs/pull/7#issuecomment-5", schema.PRComment},
		{"https://github.com/ethereum/EIPs/issues/8#issuecomment-5", schema.IssueComment},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			res := Normalize(source.RawEvent{Kind: source.KindComment, Repository: repo, Comment: &github.IssueComment{
				ID: github.Int64(5), HTMLURL: github.String(tt.url), User: user("dave"), CreatedAt: ts(t0),
				Body: github.String(strings.Repeat("x", maxBodyLen+10)),
			}})
			require.Len(t, res.Activities, 1)
			assert.Equal(t, tt.want, res.Activities[0].ActivityType)
			assert.Equal(t, "comment:5", res.Activities[0].EntityRef)
			assert.Len(t, res.Activities[0].Metadata.Body, maxBodyLen)
		})
	}
}

func TestNormalizeIssue(t *testing.T) {
	res := Normalize(source.RawEvent{Kind: source.KindIssue, Repository: repo, Issue: &github.Issue{
		Number: github.Int(12), User: user("erin"), CreatedAt: ts(t0), Title: github.String("Bug"),
	}})
	require.Len(t, res.Activities, 1)
	assert.Equal(t, schema.IssueOpened, res.Activities[0].ActivityType)
	assert.Equal(t, "issue:12", res.Activities[0].EntityRef)
	assert.Equal(t, "Bug", res.Activities[0].Metadata.Title)
}

func TestNormalizeDiscards(t *testing.T) {
	tests := []struct {
		name string
		ev   source.RawEvent
		want DiscardReason
	}{
		{"unknown kind", source.RawEvent{Kind: "deployment", Repository: repo}, UnknownKind},
		{"nil commit", source.RawEvent{Kind: source.KindCommit, Repository: repo}, MissingPayload},
		{
			"commit without linked account",
			source.RawEvent{Kind: source.KindCommit, Repository: repo, Commit: &github.RepositoryCommit{
				SHA: github.String("a"), Commit: &github.Commit{Author: &github.CommitAuthor{Date: ts(t0)}},
			}},
			NoActor,
		},
		{
			"commit without timestamp",
			source.RawEvent{Kind: source.KindCommit, Repository: repo, Commit: &github.RepositoryCommit{
				SHA: github.String("a"), Author: user("alice"),
			}},
			NoTimestamp,
		},
		{
			"pull request listed as issue",
			source.RawEvent{Kind: source.KindIssue, Repository: repo, Issue: &github.Issue{
				Number: github.Int(3), User: user("alice"), CreatedAt: ts(t0),
				PullRequestLinks: &github.PullRequestLinks{URL: github.String("x")},
			}},
			PullRequestIssue,
		},
		{
			"review without pull number",
			source.RawEvent{Kind: source.KindReview, Repository: repo, Review: &github.PullRequestReview{ID: github.Int64(1)}},
			MissingPayload,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Normalize(tt.ev)
			assert.Equal(t, tt.want, res.Discarded)
			assert.Empty(t, res.Activities)
		})
	}
}

func TestNormalizeMarksBotAccounts(t *testing.T) {
	bot := &github.User{Login: github.String("ci-helper"), Type: github.String("Bot")}
	res := Normalize(source.RawEvent{Kind: source.KindIssue, Repository: repo, Issue: &github.Issue{
		Number: github.Int(1), User: bot, CreatedAt: ts(t0),
	}})
	assert.True(t, res.ActorIsBot)
}

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/huangsam/contriboard/schema"
)

// Phase is one listing a stream walks through.
type Phase string

// Phases in the order a stream visits them.
const (
	PhaseCommits  Phase = "commits"
	PhasePulls    Phase = "pulls"
	PhaseIssues   Phase = "issues"
	PhaseComments Phase = "comments"
	PhaseDone     Phase = "done"
)

var phaseOrder = []Phase{PhaseCommits, PhasePulls, PhaseIssues, PhaseComments, PhaseDone}

func nextPhase(p Phase) Phase {
	for i, candidate := range phaseOrder[:len(phaseOrder)-1] {
		if candidate == p {
			return phaseOrder[i+1]
		}
	}
	return PhaseDone
}

// Cursor is the resumable position of a stream: the next page to fetch.
// Since and Until bound the window of the run that opened the stream; a
// resumed stream keeps them so the window stays contiguous across runs.
type Cursor struct {
	Phase Phase     `json:"phase"`
	Page  int       `json:"page"`
	Since time.Time `json:"since"`
	Until time.Time `json:"until,omitzero"`
}

// SyncedThrough is the instant up to which a stream that runs to completion
// has seen every event. Cursors saved without an upper bound fall back to
// the window start, which re-reads the window on the next run.
func (c Cursor) SyncedThrough() time.Time {
	if c.Until.IsZero() {
		return c.Since
	}
	return c.Until
}

// Encode serializes the cursor for storage.
func (c Cursor) Encode() string {
	b, _ := json.Marshal(c)
	return string(b)
}

// DecodeCursor parses a stored cursor. An empty string yields ok=false.
func DecodeCursor(raw string) (Cursor, bool, error) {
	if raw == "" {
		return Cursor{}, false, nil
	}
	var c Cursor
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Cursor{}, false, fmt.Errorf("invalid sync cursor: %w", err)
	}
	valid := false
	for _, p := range phaseOrder {
		if c.Phase == p {
			valid = true
		}
	}
	if !valid || c.Page < 1 {
		return Cursor{}, false, fmt.Errorf("invalid sync cursor: phase %q page %d", c.Phase, c.Page)
	}
	return c, true, nil
}

// Stream lazily pages through every event of one repository since a point in time.
// Each Next call fetches one page; a failed page leaves the cursor where it was.
type Stream struct {
	client     *Client
	repository string
	owner      string
	name       string
	cursor     Cursor
}

// Events opens a stream over repository for the window starting at since and
// ending at until, normally the start of the current run. A non-empty resume
// cursor continues a previous partial run and keeps that run's window.
func (c *Client) Events(repository string, since, until time.Time, resume string) (*Stream, error) {
	owner, name, err := schema.SplitRepository(repository)
	if err != nil {
		return nil, err
	}
	cursor := Cursor{Phase: PhaseCommits, Page: 1, Since: since.UTC(), Until: until.UTC()}
	saved, ok, err := DecodeCursor(resume)
	if err != nil {
		c.logger.Warn("ignoring unreadable cursor", "repository", repository, "error", err)
	} else if ok {
		cursor = saved
	}
	return &Stream{client: c, repository: repository, owner: owner, name: name, cursor: cursor}, nil
}

// Cursor returns the position of the next page.
func (s *Stream) Cursor() Cursor { return s.cursor }

// Done reports whether every phase has been exhausted.
func (s *Stream) Done() bool { return s.cursor.Phase == PhaseDone }

// Next fetches the page under the cursor and advances past it.
// The returned slice may be empty when a page holds nothing in the window.
func (s *Stream) Next(ctx context.Context) ([]RawEvent, error) {
	if s.Done() {
		return nil, nil
	}

	var (
		events []RawEvent
		next   int
		err    error
	)
	switch s.cursor.Phase {
	case PhaseCommits:
		events, next, err = s.commits(ctx)
	case PhasePulls:
		events, next, err = s.pulls(ctx)
	case PhaseIssues:
		events, next, err = s.issues(ctx)
	case PhaseComments:
		events, next, err = s.comments(ctx)
	}
	if err != nil {
		return nil, err
	}

	if next == 0 {
		s.cursor.Phase = nextPhase(s.cursor.Phase)
		s.cursor.Page = 1
	} else {
		s.cursor.Page = next
	}
	return events, nil
}

func (s *Stream) fail(kind ResultKind, resetAt time.Time, err error) error {
	return &FetchError{Kind: kind, Repository: s.repository, Phase: s.cursor.Phase, ResetAt: resetAt, Err: err}
}

func (s *Stream) listOptions() github.ListOptions {
	return github.ListOptions{Page: s.cursor.Page, PerPage: s.client.perPage}
}

func (s *Stream) commits(ctx context.Context) ([]RawEvent, int, error) {
	opts := &github.CommitsListOptions{Since: s.cursor.Since, ListOptions: s.listOptions()}
	res := call(ctx, s.client, func(ctx context.Context, gh *github.Client) ([]*github.RepositoryCommit, *github.Response, error) {
		return gh.Repositories.ListCommits(ctx, s.owner, s.name, opts)
	})
	if res.Kind != ResultOK {
		return nil, 0, s.fail(res.Kind, res.ResetAt, res.Err)
	}
	events := make([]RawEvent, 0, len(res.Value))
	for _, c := range res.Value {
		events = append(events, RawEvent{Kind: KindCommit, Repository: s.repository, Commit: c})
	}
	return events, res.NextPage, nil
}

// pulls lists pull requests by most recent update and stops at the first one
// last updated before the window. Reviews of each pull in the window are
// fetched with it.
func (s *Stream) pulls(ctx context.Context) ([]RawEvent, int, error) {
	opts := &github.PullRequestListOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: s.listOptions(),
	}
	res := call(ctx, s.client, func(ctx context.Context, gh *github.Client) ([]*github.PullRequest, *github.Response, error) {
		return gh.PullRequests.List(ctx, s.owner, s.name, opts)
	})
	if res.Kind != ResultOK {
		return nil, 0, s.fail(res.Kind, res.ResetAt, res.Err)
	}

	next := res.NextPage
	var events []RawEvent
	for _, pr := range res.Value {
		if pr.GetUpdatedAt().Before(s.cursor.Since) {
			next = 0
			break
		}
		events = append(events, RawEvent{Kind: KindPull, Repository: s.repository, Pull: pr, Since: s.cursor.Since})

		reviews, err := s.reviews(ctx, pr.GetNumber())
		if err != nil {
			return nil, 0, err
		}
		events = append(events, reviews...)
	}
	return events, next, nil
}

func (s *Stream) reviews(ctx context.Context, number int) ([]RawEvent, error) {
	var events []RawEvent
	page := 1
	for page != 0 {
		opts := &github.ListOptions{Page: page, PerPage: s.client.perPage}
		res := call(ctx, s.client, func(ctx context.Context, gh *github.Client) ([]*github.PullRequestReview, *github.Response, error) {
			return gh.PullRequests.ListReviews(ctx, s.owner, s.name, number, opts)
		})
		if res.Kind != ResultOK {
			return nil, s.fail(res.Kind, res.ResetAt, fmt.Errorf("reviews of #%d: %w", number, res.Err))
		}
		for _, r := range res.Value {
			if r.GetSubmittedAt().Before(s.cursor.Since) {
				continue
			}
			events = append(events, RawEvent{Kind: KindReview, Repository: s.repository, Review: r, PullNumber: number})
		}
		page = res.NextPage
	}
	return events, nil
}

// issues lists issues touched in the window and keeps those opened in it.
// Pull requests also appear in this listing and are skipped.
func (s *Stream) issues(ctx context.Context) ([]RawEvent, int, error) {
	opts := &github.IssueListByRepoOptions{
		State:       "all",
		Sort:        "created",
		Direction:   "asc",
		Since:       s.cursor.Since,
		ListOptions: s.listOptions(),
	}
	res := call(ctx, s.client, func(ctx context.Context, gh *github.Client) ([]*github.Issue, *github.Response, error) {
		return gh.Issues.ListByRepo(ctx, s.owner, s.name, opts)
	})
	if res.Kind != ResultOK {
		return nil, 0, s.fail(res.Kind, res.ResetAt, res.Err)
	}
	var events []RawEvent
	for _, issue := range res.Value {
		if issue.IsPullRequest() || issue.GetCreatedAt().Before(s.cursor.Since) {
			continue
		}
		events = append(events, RawEvent{Kind: KindIssue, Repository: s.repository, Issue: issue})
	}
	return events, res.NextPage, nil
}

func (s *Stream) comments(ctx context.Context) ([]RawEvent, int, error) {
	since := s.cursor.Since
	sort, direction := "created", "asc"
	opts := &github.IssueListCommentsOptions{
		Sort:        &sort,
		Direction:   &direction,
		Since:       &since,
		ListOptions: s.listOptions(),
	}
	res := call(ctx, s.client, func(ctx context.Context, gh *github.Client) ([]*github.IssueComment, *github.Response, error) {
		return gh.Issues.ListComments(ctx, s.owner, s.name, 0, opts)
	})
	if res.Kind != ResultOK {
		return nil, 0, s.fail(res.Kind, res.ResetAt, res.Err)
	}
	events := make([]RawEvent, 0, len(res.Value))
	for _, c := range res.Value {
		events = append(events, RawEvent{Kind: KindComment, Repository: s.repository, Comment: c})
	}
	return events, res.NextPage, nil
}

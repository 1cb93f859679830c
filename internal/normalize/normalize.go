// Package normalize maps raw source events onto canonical activities.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/huangsam/contriboard/internal/source"
	"github.com/huangsam/contriboard/schema"
)

// DiscardReason explains why a raw event produced no activity.
type DiscardReason string

// All discard reasons.
const (
	UnknownKind      DiscardReason = "unknown-kind"
	MissingPayload   DiscardReason = "missing-payload"
	NoActor          DiscardReason = "no-actor"
	NoTimestamp      DiscardReason = "no-timestamp"
	UnsupportedState DiscardReason = "unsupported-review-state"
	PullRequestIssue DiscardReason = "pull-request-issue"
	BotActor         DiscardReason = "bot"
	OutsideWindow    DiscardReason = "outside-window"
)

// maxBodyLen caps free text copied into activity metadata.
const maxBodyLen = 500

// Result is the outcome of normalizing one raw event: either activities or a discard.
type Result struct {
	Activities []schema.Activity
	Discarded  DiscardReason
	// ActorIsBot is set when the payload marks the actor as a bot account.
	ActorIsBot bool
}

func discard(reason DiscardReason) Result {
	return Result{Discarded: reason}
}

// Normalize is total over raw events: every known kind maps to its activity
// types and anything else is discarded with a reason.
func Normalize(ev source.RawEvent) Result {
	switch ev.Kind {
	case source.KindCommit:
		return normalizeCommit(ev)
	case source.KindPull:
		return normalizePull(ev)
	case source.KindReview:
		return normalizeReview(ev)
	case source.KindComment:
		return normalizeComment(ev)
	case source.KindIssue:
		return normalizeIssue(ev)
	default:
		return discard(UnknownKind)
	}
}

func newActivity(repo, user string, typ schema.ActivityType, ref string, at time.Time, meta schema.Metadata) schema.Activity {
	return schema.Activity{
		ID:           schema.ActivityID(repo, typ, ref),
		Username:     user,
		Repository:   repo,
		ActivityType: typ,
		EntityRef:    ref,
		Timestamp:    at.UTC(),
		Metadata:     meta,
	}
}

func isBotUser(u *github.User) bool {
	return strings.EqualFold(u.GetType(), "Bot")
}

func normalizeCommit(ev source.RawEvent) Result {
	c := ev.Commit
	if c == nil || c.GetSHA() == "" {
		return discard(MissingPayload)
	}
	// Commits whose author email is not linked to an account carry no login.
	login := c.GetAuthor().GetLogin()
	if login == "" {
		return discard(NoActor)
	}
	at := c.GetCommit().GetAuthor().GetDate().Time
	if at.IsZero() {
		at = c.GetCommit().GetCommitter().GetDate().Time
	}
	if at.IsZero() {
		return discard(NoTimestamp)
	}

	message := c.GetCommit().GetMessage()
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		message = message[:i]
	}
	meta := schema.Metadata{
		URL:       c.GetHTMLURL(),
		SHA:       c.GetSHA(),
		Message:   truncate(message),
		Additions: c.GetStats().GetAdditions(),
		Deletions: c.GetStats().GetDeletions(),
	}
	return Result{
		Activities: []schema.Activity{newActivity(ev.Repository, login, schema.Commit, "commit:"+c.GetSHA(), at, meta)},
		ActorIsBot: isBotUser(c.GetAuthor()),
	}
}

// normalizePull yields PR_OPENED plus PR_MERGED or PR_CLOSED once the pull request ends.
func normalizePull(ev source.RawEvent) Result {
	pr := ev.Pull
	if pr == nil || pr.GetNumber() == 0 {
		return discard(MissingPayload)
	}
	login := pr.GetUser().GetLogin()
	if login == "" {
		return discard(NoActor)
	}
	created := pr.GetCreatedAt().Time
	if created.IsZero() {
		return discard(NoTimestamp)
	}

	labels := make([]string, 0, len(pr.Labels))
	for _, l := range pr.Labels {
		labels = append(labels, l.GetName())
	}
	meta := schema.Metadata{
		URL:          pr.GetHTMLURL(),
		Title:        pr.GetTitle(),
		Number:       pr.GetNumber(),
		State:        pr.GetState(),
		Draft:        pr.GetDraft(),
		Labels:       labels,
		Additions:    pr.GetAdditions(),
		Deletions:    pr.GetDeletions(),
		ChangedFiles: pr.GetChangedFiles(),
	}
	if merged := pr.GetMergedAt().Time; !merged.IsZero() {
		meta.MergedAt = &merged
		meta.MergedBy = pr.GetMergedBy().GetLogin()
	}

	ref := fmt.Sprintf("pr:%d", pr.GetNumber())
	activities := []schema.Activity{newActivity(ev.Repository, login, schema.PROpened, ref, created, meta)}
	switch {
	case meta.MergedAt != nil:
		activities = append(activities, newActivity(ev.Repository, login, schema.PRMerged, ref, *meta.MergedAt, meta))
	case !pr.GetClosedAt().IsZero():
		activities = append(activities, newActivity(ev.Repository, login, schema.PRClosed, ref, pr.GetClosedAt().Time, meta))
	}

	// A pull request listed because it was updated recently may have been
	// opened or closed long before the window.
	inWindow := activities[:0]
	for _, a := range activities {
		if !a.Timestamp.Before(ev.Since) {
			inWindow = append(inWindow, a)
		}
	}
	if len(inWindow) == 0 {
		return discard(OutsideWindow)
	}
	return Result{Activities: inWindow, ActorIsBot: isBotUser(pr.GetUser())}
}

var reviewTypes = map[string]schema.ActivityType{
	"APPROVED":          schema.ReviewApproved,
	"CHANGES_REQUESTED": schema.ReviewChangesRequested,
	"COMMENTED":         schema.ReviewCommented,
}

func normalizeReview(ev source.RawEvent) Result {
	r := ev.Review
	if r == nil || r.GetID() == 0 || ev.PullNumber == 0 {
		return discard(MissingPayload)
	}
	typ, ok := reviewTypes[strings.ToUpper(r.GetState())]
	if !ok {
		return discard(UnsupportedState)
	}
	login := r.GetUser().GetLogin()
	if login == "" {
		return discard(NoActor)
	}
	at := r.GetSubmittedAt().Time
	if at.IsZero() {
		return discard(NoTimestamp)
	}
	meta := schema.Metadata{
		URL:         r.GetHTMLURL(),
		Number:      ev.PullNumber,
		ReviewID:    r.GetID(),
		ReviewState: r.GetState(),
		Body:        truncate(r.GetBody()),
	}
	ref := fmt.Sprintf("review:%d:%d", ev.PullNumber, r.GetID())
	return Result{
		Activities: []schema.Activity{newActivity(ev.Repository, login, typ, ref, at, meta)},
		ActorIsBot: isBotUser(r.GetUser()),
	}
}

// normalizeComment splits repository comments by whether they sit on a pull request.
func normalizeComment(ev source.RawEvent) Result {
	c := ev.Comment
	if c == nil || c.GetID() == 0 {
		return discard(MissingPayload)
	}
	login := c.GetUser().GetLogin()
	if login == "" {
		return discard(NoActor)
	}
	at := c.GetCreatedAt().Time
	if at.IsZero() {
		return discard(NoTimestamp)
	}
	typ := schema.IssueComment
	if strings.Contains(c.GetHTMLURL(), "/pull/") {
		typ = schema.PRComment
	}
	meta := schema.Metadata{
		URL:       c.GetHTMLURL(),
		CommentID: c.GetID(),
		Body:      truncate(c.GetBody()),
	}
	ref := fmt.Sprintf("comment:%d", c.GetID())
	return Result{
		Activities: []schema.Activity{newActivity(ev.Repository, login, typ, ref, at, meta)},
		ActorIsBot: isBotUser(c.GetUser()),
	}
}

func normalizeIssue(ev source.RawEvent) Result {
	issue := ev.Issue
	if issue == nil || issue.GetNumber() == 0 {
		return discard(MissingPayload)
	}
	if issue.IsPullRequest() {
		return discard(PullRequestIssue)
	}
	login := issue.GetUser().GetLogin()
	if login == "" {
		return discard(NoActor)
	}
	at := issue.GetCreatedAt().Time
	if at.IsZero() {
		return discard(NoTimestamp)
	}
	labels := make([]string, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		labels = append(labels, l.GetName())
	}
	meta := schema.Metadata{
		URL:    issue.GetHTMLURL(),
		Title:  issue.GetTitle(),
		Number: issue.GetNumber(),
		State:  issue.GetState(),
		Labels: labels,
	}
	ref := fmt.Sprintf("issue:%d", issue.GetNumber())
	return Result{
		Activities: []schema.Activity{newActivity(ev.Repository, login, schema.IssueOpened, ref, at, meta)},
		ActorIsBot: isBotUser(issue.GetUser()),
	}
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxBodyLen {
		return s
	}
	return string(runes[:maxBodyLen])
}

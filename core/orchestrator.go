package core

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/internal/metrics"
	"github.com/huangsam/contriboard/internal/source"
	"github.com/huangsam/contriboard/schema"
)

// Orchestrator drives one ingest-and-score cycle over every configured repository.
// It is safe for concurrent use; a repository already syncing is skipped.
type Orchestrator struct {
	sc        *SyncContext
	engine    *Engine
	publisher contract.EventPublisher

	mu      sync.Mutex
	running map[string]struct{}
}

// NewOrchestrator creates an orchestrator. A nil publisher drops run events.
func NewOrchestrator(sc *SyncContext, engine *Engine, publisher contract.EventPublisher) *Orchestrator {
	return &Orchestrator{sc: sc, engine: engine, publisher: publisher, running: make(map[string]struct{})}
}

type repoJob struct {
	index      int
	repository string
}

// Run syncs every configured repository and reports one outcome per repository.
// Repository pipelines run concurrently, at most one per credential, and a
// failure in one never stops the others. Cancelling ctx stops new repositories
// from starting; pipelines already started finish their current work.
func (o *Orchestrator) Run(ctx context.Context) (schema.RunSummary, error) {
	cfg := o.sc.Config
	if err := cfg.ValidateForSync(); err != nil {
		metrics.SyncRunsTotal.WithLabelValues("config_error").Inc()
		return schema.RunSummary{}, err
	}

	summary := schema.RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: o.sc.Clock.Now(),
		Results:   make([]schema.RepoOutcome, len(cfg.Repositories)),
	}
	logger := o.sc.Logger.With("run", summary.RunID)
	logger.Info("sync run started", "repositories", len(cfg.Repositories), "credentials", o.sc.Pool.Size())

	workers := max(1, min(o.sc.Pool.Size(), len(cfg.Repositories)))
	jobs := make(chan repoJob, len(cfg.Repositories))
	for i, repo := range cfg.Repositories {
		jobs <- repoJob{index: i, repository: repo}
	}
	close(jobs)

	// Pipelines ignore cancellation once started so a page is never abandoned mid-fetch.
	pipelineCtx := context.WithoutCancel(ctx)
	var cancelled sync.Once
	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for job := range jobs {
				if ctx.Err() != nil {
					cancelled.Do(func() { summary.Cancelled = true })
					summary.Results[job.index] = o.skipped(pipelineCtx, job.repository, "run cancelled before this repository started")
					continue
				}
				summary.Results[job.index] = o.syncRepository(pipelineCtx, job.repository)
			}
		})
	}
	wg.Wait()
	summary.FinishedAt = o.sc.Clock.Now()

	outcome := "success"
	switch {
	case summary.Cancelled:
		outcome = "cancelled"
	case summary.Failed() > 0:
		outcome = "partial"
	}
	metrics.SyncRunsTotal.WithLabelValues(outcome).Inc()
	o.recordPoolState()

	if o.publisher != nil {
		if err := o.publisher.PublishRun(pipelineCtx, summary); err != nil {
			logger.Warn("failed to publish run event", "error", err)
		}
	}
	logger.Info("sync run finished", "outcome", outcome, "failed", summary.Failed(),
		"duration", summary.FinishedAt.Sub(summary.StartedAt).String())
	return summary, nil
}

func (o *Orchestrator) claim(repo string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.running[repo]; busy {
		return false
	}
	o.running[repo] = struct{}{}
	return true
}

func (o *Orchestrator) unclaim(repo string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.running, repo)
}

// skipped reports a repository that this run did not touch, with its stored status.
func (o *Orchestrator) skipped(ctx context.Context, repo, reason string) schema.RepoOutcome {
	out := schema.RepoOutcome{Repository: repo, Status: schema.SyncIdle, Skipped: true, Error: reason}
	if state, err := o.sc.Store.GetSyncState(ctx, repo); err == nil {
		out.Status = state.Status
	}
	return out
}

// syncRepository runs the pipeline of one repository through Idle -> Running -> {Idle, Failed}.
func (o *Orchestrator) syncRepository(ctx context.Context, repo string) schema.RepoOutcome {
	cfg := o.sc.Config
	logger := o.sc.Logger.With("repository", repo)
	start := o.sc.Clock.Now()
	out := schema.RepoOutcome{Repository: repo}

	if !o.claim(repo) {
		out.Status, out.Skipped = schema.SyncRunning, true
		return out
	}
	defer o.unclaim(repo)

	began, err := o.sc.Store.TryBeginSync(ctx, repo, start, cfg.StaleSyncAfter)
	if err != nil {
		out.Status, out.Error = schema.SyncFailed, err.Error()
		return out
	}
	if !began {
		logger.Info("sync already running, skipping")
		out.Status, out.Skipped = schema.SyncRunning, true
		return out
	}

	prev, err := o.sc.Store.GetSyncState(ctx, repo)
	if err != nil {
		return o.finish(ctx, out, schema.SyncState{Repository: repo, StartedAt: &start}, start, start, err)
	}
	since := start.Add(-cfg.Lookback)
	if prev.LastSyncAt != nil {
		since = *prev.LastSyncAt
	}
	logger.Info("repository sync started", "since", since.Format(time.RFC3339), "resume", prev.Cursor != "")

	res := o.ingest(ctx, repo, since, start, prev.Cursor)
	out.ActivitiesProcessed = res.processed
	out.Discarded = res.discarded

	// Activities already stored count even when a later page failed.
	recomputed, recomputeErr := o.recompute(ctx, res.touched)
	out.Contributors = recomputed
	if res.err == nil && recomputeErr == nil {
		o.refreshProfiles(ctx, res.touched)
	}

	state := schema.SyncState{
		Repository:          repo,
		StartedAt:           &start,
		LastSyncAt:          prev.LastSyncAt,
		ActivitiesProcessed: res.processed,
		Cursor:              res.cursor,
	}
	return o.finish(ctx, out, state, start, res.syncedThrough, errors.Join(res.err, recomputeErr))
}

// finish persists the final state of a repository pipeline and fills in its outcome.
// On success the next window starts at syncedThrough, the upper bound of the
// window this pipeline completed. A resumed pipeline completes the window of
// the run that failed, not its own.
func (o *Orchestrator) finish(ctx context.Context, out schema.RepoOutcome, state schema.SyncState, start, syncedThrough time.Time, runErr error) schema.RepoOutcome {
	logger := o.sc.Logger.With("repository", out.Repository)
	if runErr != nil {
		state.Status = schema.SyncFailed
		state.Error = runErr.Error()
		logger.Error("repository sync failed", "error", runErr)
	} else {
		state.Status = schema.SyncIdle
		state.LastSyncAt = &syncedThrough
		state.Cursor = ""
		state.Error = ""
	}
	if err := o.sc.Store.FinishSync(ctx, state); err != nil {
		logger.Error("failed to persist sync state", "error", err)
		if runErr == nil {
			state.Status, state.Error = schema.SyncFailed, err.Error()
		}
	}

	out.Status, out.Error = state.Status, state.Error
	duration := o.sc.Clock.Now().Sub(start)
	out.DurationMs = duration.Milliseconds()
	metrics.RepositorySyncsTotal.WithLabelValues(out.Repository, string(out.Status)).Inc()
	metrics.RepositorySyncDuration.WithLabelValues(out.Repository).Observe(duration.Seconds())
	if out.Status == schema.SyncIdle {
		logger.Info("repository sync finished", "activities", out.ActivitiesProcessed,
			"discarded", out.Discarded, "contributors", out.Contributors)
	}
	return out
}

type ingestResult struct {
	processed     int
	discarded     int
	touched       map[string]struct{}
	cursor        string
	syncedThrough time.Time
	err           error
}

// ingest streams the repository page by page: normalize, filter, store, then
// save the cursor of the next page so a later run can resume there.
func (o *Orchestrator) ingest(ctx context.Context, repo string, since, until time.Time, resume string) ingestResult {
	res := ingestResult{touched: make(map[string]struct{}), cursor: resume}
	stream, err := o.sc.Source.Events(repo, since, until, resume)
	if err != nil {
		res.err = err
		return res
	}
	res.syncedThrough = stream.Cursor().SyncedThrough()

	for !stream.Done() {
		events, err := stream.Next(ctx)
		if err != nil {
			res.cursor = stream.Cursor().Encode()
			res.err = err
			return res
		}

		activities, stats := o.sc.Pipeline.Process(events)
		res.discarded += stats.Total()
		for reason, n := range stats.Discarded {
			metrics.EventsDiscardedTotal.WithLabelValues(string(reason)).Add(float64(n))
		}
		if len(activities) > 0 {
			inserted, err := o.sc.Store.UpsertActivities(ctx, activities)
			if err != nil {
				res.err = err
				return res
			}
			metrics.ActivitiesIngestedTotal.WithLabelValues(repo).Add(float64(inserted))
			res.processed += len(activities)
			for _, a := range activities {
				res.touched[a.Username] = struct{}{}
			}
		}

		res.cursor = ""
		if !stream.Done() {
			res.cursor = stream.Cursor().Encode()
			if err := o.sc.Store.SaveCursor(ctx, repo, res.cursor); err != nil {
				res.err = err
				return res
			}
		}
	}
	return res
}

func sortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// recompute rebuilds every contributor touched by the pipeline.
func (o *Orchestrator) recompute(ctx context.Context, touched map[string]struct{}) (int, error) {
	n := 0
	for _, username := range sortedNames(touched) {
		if _, err := o.engine.RecomputeContributor(ctx, username); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// refreshProfiles fetches profiles that are missing or stale. Failures are
// logged and never fail the repository; a rate limit stops further refreshes.
func (o *Orchestrator) refreshProfiles(ctx context.Context, touched map[string]struct{}) {
	refreshAfter := o.sc.Config.ProfileRefreshAfter
	if refreshAfter <= 0 {
		refreshAfter = contract.DefaultProfileRefreshAfter
	}
	now := o.sc.Clock.Now()
	for _, username := range sortedNames(touched) {
		c, err := o.sc.Store.GetContributor(ctx, username)
		if err != nil {
			o.sc.Logger.Warn("failed to load contributor for profile refresh", "username", username, "error", err)
			continue
		}
		if !c.Profile.FetchedAt.IsZero() && now.Sub(c.Profile.FetchedAt) < refreshAfter {
			continue
		}
		p, err := o.sc.Source.FetchProfile(ctx, username)
		if err != nil {
			o.sc.Logger.Warn("failed to refresh profile", "username", username, "error", err)
			var fe *source.FetchError
			if errors.As(err, &fe) && fe.Kind == source.ResultRateLimited {
				return
			}
			continue
		}
		if p.IsBot {
			o.sc.Logger.Info("contributor is marked as a bot account, add it to the bot list", "username", username)
		}
		if err := o.sc.Store.UpdateProfile(ctx, username, p.Profile); err != nil {
			o.sc.Logger.Warn("failed to store profile", "username", username, "error", err)
		}
	}
}

func (o *Orchestrator) recordPoolState() {
	exhausted := 0
	for _, s := range o.sc.Pool.Status() {
		if s.Exhausted {
			exhausted++
		}
	}
	metrics.CredentialsExhausted.Set(float64(exhausted))
}

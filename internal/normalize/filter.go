package normalize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gobwas/glob"
	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/internal/source"
	"github.com/huangsam/contriboard/schema"
)

// Filter drops automation accounts and folds aliases into canonical usernames.
type Filter struct {
	patterns []glob.Glob
	allow    map[string]struct{}
	aliases  map[string]string
}

// NewFilter compiles bot patterns. Square brackets in a pattern are literal,
// so "*[bot]" matches GitHub app accounts.
func NewFilter(botPatterns, allow []string, aliases map[string]string) (*Filter, error) {
	f := &Filter{
		allow:   make(map[string]struct{}, len(allow)),
		aliases: make(map[string]string, len(aliases)),
	}
	bracketEscaper := strings.NewReplacer("[", `\[`, "]", `\]`)
	for _, p := range botPatterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		g, err := glob.Compile(bracketEscaper.Replace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid bot pattern %q: %w", p, err)
		}
		f.patterns = append(f.patterns, g)
	}
	for _, a := range allow {
		f.allow[strings.ToLower(strings.TrimSpace(a))] = struct{}{}
	}
	for alias, canonical := range aliases {
		f.aliases[strings.ToLower(alias)] = canonical
	}
	return f, nil
}

// Canonical resolves a login through the alias table.
func (f *Filter) Canonical(login string) string {
	if canonical, ok := f.aliases[strings.ToLower(login)]; ok {
		return canonical
	}
	return login
}

// IsBot reports whether login is an automation account. The allow list wins
// over every pattern and over the account type reported by the source.
func (f *Filter) IsBot(login string, markedBot bool) bool {
	lower := strings.ToLower(login)
	if _, ok := f.allow[lower]; ok {
		return false
	}
	if markedBot || strings.HasSuffix(lower, "[bot]") {
		return true
	}
	for _, g := range f.patterns {
		if g.Match(lower) {
			return true
		}
	}
	return false
}

// Stats counts what a batch produced.
type Stats struct {
	Kept      int
	Discarded map[DiscardReason]int
}

// Total returns the number of discarded raw events.
func (s Stats) Total() int {
	n := 0
	for _, v := range s.Discarded {
		n += v
	}
	return n
}

// Pipeline normalizes raw events and applies the filter.
type Pipeline struct {
	filter *Filter
	logger *slog.Logger
}

// NewPipeline builds a pipeline. A nil logger discards logs.
func NewPipeline(filter *Filter, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = contract.DiscardLogger()
	}
	return &Pipeline{filter: filter, logger: logger}
}

// Process turns a page of raw events into activities in source order.
func (p *Pipeline) Process(events []source.RawEvent) ([]schema.Activity, Stats) {
	stats := Stats{Discarded: make(map[DiscardReason]int)}
	out := make([]schema.Activity, 0, len(events))
	for _, ev := range events {
		res := Normalize(ev)
		if res.Discarded != "" {
			stats.Discarded[res.Discarded]++
			level := slog.LevelDebug
			if res.Discarded == UnknownKind || res.Discarded == MissingPayload {
				level = slog.LevelWarn
			}
			p.logger.Log(context.Background(), level, "discarded raw event", "repository", ev.Repository, "kind", ev.Kind, "reason", res.Discarded)
			continue
		}

		login := res.Activities[0].Username
		if p.filter.IsBot(login, res.ActorIsBot) {
			stats.Discarded[BotActor]++
			p.logger.Debug("discarded bot activity", "repository", ev.Repository, "login", login)
			continue
		}
		canonical := p.filter.Canonical(login)
		for _, a := range res.Activities {
			a.Username = canonical
			out = append(out, a)
		}
		stats.Kept += len(res.Activities)
	}
	return out, stats
}

// Package aggregation computes top-movers snapshots.
// Flow: load pool → score → weight → group → rank → persist
package aggregation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sort"
	"time"

	"market-mood-lab/internal/domain"
	"market-mood-lab/internal/headlines"
	"market-mood-lab/internal/observability"
	"market-mood-lab/internal/scoring"
	"market-mood-lab/internal/storage"
	"market-mood-lab/internal/weighting"
)

// ErrNoHeadlines is returned when the pool is empty or unreadable.
// Nothing meaningful can be computed from an empty pool.
var ErrNoHeadlines = errors.New("no headlines available")

// ErrPersistence is returned when a snapshot was computed but could not be
// fully persisted. The snapshot itself is still returned alongside.
var ErrPersistence = errors.New("failed to persist snapshot")

// Default tuning values.
const (
	DefaultJitterAmplitude = 0.1
	DefaultRestSize        = 5
	DefaultTopMessages     = 5
	DefaultLookbackHours   = 48.0
)

// DefaultAuthors returns the roster used to synthesize missing authors.
// Values match the credibility table in the weighting package.
func DefaultAuthors() []string {
	return []string{"Analyst", "CEO tweet", "Newswire", "Forum user", "Insider tip"}
}

// Config tunes a Runner. The zero value picks all defaults.
type Config struct {
	JitterAmplitude float64  // per-symbol mood jitter, ±amplitude
	DisableJitter   bool     // turn jitter off entirely; amplitude ignored
	RestSize        int      // max entries per rest list
	TopMessages     int      // max messages attached to a top entry
	LookbackHours   float64  // window for synthesized timestamps
	Authors         []string // roster for synthesized authors
	DemoMode        bool     // replace market aggregates with random draws
}

func (c Config) withDefaults() Config {
	if c.DisableJitter {
		c.JitterAmplitude = 0
	} else if c.JitterAmplitude <= 0 {
		c.JitterAmplitude = DefaultJitterAmplitude
	}
	if c.RestSize <= 0 {
		c.RestSize = DefaultRestSize
	}
	if c.TopMessages <= 0 {
		c.TopMessages = DefaultTopMessages
	}
	if c.LookbackHours <= 0 {
		c.LookbackHours = DefaultLookbackHours
	}
	if len(c.Authors) == 0 {
		c.Authors = DefaultAuthors()
	}
	return c
}

// Runner executes aggregation runs. All randomness flows through the
// injected rand.Rand and all clock reads through the injected now func,
// so runs are reproducible in tests.
type Runner struct {
	source  headlines.Source
	history storage.HistoryStore
	archive storage.MessageArchiveStore
	scorer  *scoring.Scorer
	engine  *weighting.Engine

	cfg     Config
	rng     *rand.Rand
	now     func() time.Time
	logger  *log.Logger
	metrics *observability.Metrics
}

// Options for creating a Runner.
type Options struct {
	// Required
	Source  headlines.Source
	History storage.HistoryStore
	Scorer  *scoring.Scorer
	Engine  *weighting.Engine

	// Optional; nil archive skips message archival
	Archive storage.MessageArchiveStore

	Config  Config
	Rand    *rand.Rand       // nil seeds from the wall clock
	Now     func() time.Time // nil uses time.Now
	Logger  *log.Logger      // nil uses the default logger
	Metrics *observability.Metrics
}

// New creates a new Runner.
func New(opts Options) *Runner {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.DefaultMetrics
	}
	return &Runner{
		source:  opts.Source,
		history: opts.History,
		archive: opts.Archive,
		scorer:  opts.Scorer,
		engine:  opts.Engine,
		cfg:     opts.Config.withDefaults(),
		rng:     rng,
		now:     now,
		logger:  logger,
		metrics: metrics,
	}
}

// Run executes one full aggregation pass and persists the result.
// On persistence failure the computed snapshot is returned together with
// an error wrapping ErrPersistence; callers decide whether that is fatal.
func (r *Runner) Run(ctx context.Context) (*domain.TopMoversSnapshot, error) {
	start := time.Now()
	now := r.now()

	pool, err := r.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoHeadlines, err)
	}
	if len(pool) == 0 {
		return nil, ErrNoHeadlines
	}

	scored := r.scoreAndWeigh(pool, now)
	summaries := r.summarize(scored)

	snapshot := r.rank(summaries, now)

	if r.cfg.DemoMode {
		r.applyDemoOverrides(snapshot)
	}

	r.metrics.SnapshotsComputed.Inc()
	r.metrics.HeadlinesScored.Add(float64(len(scored)))
	r.metrics.SymbolsAggregated.Set(float64(len(summaries)))
	r.metrics.AggregationDuration.Observe(time.Since(start).Seconds())

	if err := r.persist(ctx, summaries, scored, now); err != nil {
		return snapshot, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	r.metrics.LastSuccessfulRun.Set(float64(now.Unix()))

	r.logger.Printf("aggregation run complete: %d headlines, %d symbols in %s",
		len(scored), len(summaries), time.Since(start).Round(time.Millisecond))
	return snapshot, nil
}

// scoreAndWeigh scores every headline and applies credibility and recency
// weighting. Missing authors and timestamps are synthesized so the
// weighting engine always has full inputs.
func (r *Runner) scoreAndWeigh(pool []*domain.Headline, now time.Time) []*domain.ScoredMessage {
	scored := make([]*domain.ScoredMessage, 0, len(pool))
	for _, h := range pool {
		res := r.scorer.Score(h.Text)

		author := h.Author
		if author == "" {
			author = r.cfg.Authors[r.rng.Intn(len(r.cfg.Authors))]
		}
		ts := h.Timestamp
		if ts.IsZero() {
			back := time.Duration(r.rng.Float64() * r.cfg.LookbackHours * float64(time.Hour))
			ts = now.Add(-back)
		}

		weighted, intensity := r.engine.Weigh(res.Score, author, ts, now)
		scored = append(scored, &domain.ScoredMessage{
			Text:          h.Text,
			Symbol:        h.Symbol,
			Author:        author,
			Timestamp:     ts,
			RawScore:      res.Score,
			Label:         res.Label,
			WeightedScore: round2(weighted),
			Intensity:     intensity,
		})
	}
	return scored
}

// summarize groups scored messages by symbol, preserving first-seen order,
// and computes per-symbol mood and confidence.
func (r *Runner) summarize(scored []*domain.ScoredMessage) []*domain.SymbolSummary {
	groups := make(map[string][]*domain.ScoredMessage)
	var order []string
	for _, m := range scored {
		if _, seen := groups[m.Symbol]; !seen {
			order = append(order, m.Symbol)
		}
		groups[m.Symbol] = append(groups[m.Symbol], m)
	}

	summaries := make([]*domain.SymbolSummary, 0, len(order))
	for _, symbol := range order {
		msgs := groups[symbol]

		var sum float64
		var positive, negative int
		for _, m := range msgs {
			sum += m.WeightedScore
			switch {
			case m.WeightedScore > 0:
				positive++
			case m.WeightedScore < 0:
				negative++
			}
		}
		mood := sum / float64(len(msgs))
		if r.cfg.JitterAmplitude > 0 {
			mood += (r.rng.Float64()*2 - 1) * r.cfg.JitterAmplitude
		}
		mood = scoring.Clamp(mood)

		confidence := 0.0
		if positive+negative > 0 {
			confidence = float64(positive) / float64(positive+negative)
		}

		copied := make([]domain.ScoredMessage, len(msgs))
		for i, m := range msgs {
			copied[i] = *m
		}
		summaries = append(summaries, &domain.SymbolSummary{
			Symbol:     symbol,
			MoodScore:  round2(mood),
			Confidence: round2(confidence),
			Messages:   copied,
		})
	}
	return summaries
}

// rank splits summaries into positive and negative sides, picks the tops,
// and builds the rest lists with symmetric backfill so both sides are as
// full as the pool allows.
func (r *Runner) rank(summaries []*domain.SymbolSummary, now time.Time) *domain.TopMoversSnapshot {
	positives := make([]*domain.SymbolSummary, 0, len(summaries))
	negatives := make([]*domain.SymbolSummary, 0, len(summaries))
	for _, s := range summaries {
		switch {
		case s.MoodScore > 0:
			positives = append(positives, s)
		case s.MoodScore < 0:
			negatives = append(negatives, s)
		}
	}
	// Stable sorts keep first-seen order for equal scores.
	sort.SliceStable(positives, func(i, j int) bool {
		return positives[i].MoodScore > positives[j].MoodScore
	})
	sort.SliceStable(negatives, func(i, j int) bool {
		return negatives[i].MoodScore < negatives[j].MoodScore
	})

	topPositive := r.pickTop(positives, summaries, true)
	topNegative := r.pickTop(negatives, summaries, false)

	restPositive := r.buildRest(positives, summaries, topPositive.Symbol, true)
	restNegative := r.buildRest(negatives, summaries, topNegative.Symbol, false)

	var moodSum, confSum float64
	for _, s := range summaries {
		moodSum += s.MoodScore
		confSum += s.Confidence
	}
	n := float64(len(summaries))

	return &domain.TopMoversSnapshot{
		MarketMood:       round2(moodSum / n),
		MarketConfidence: round2(confSum / n),
		TopPositive:      topPositive,
		TopNegative:      topNegative,
		RestPositive:     restPositive,
		RestNegative:     restNegative,
		ComputedAt:       now,
	}
}

// pickTop returns the leader of one side, synthesizing one from the
// globally most-extreme symbol when the side is empty. The synthesized
// entry gets a score forced into the side's open sign range; the
// underlying summary (and therefore persisted history) is untouched.
func (r *Runner) pickTop(side, all []*domain.SymbolSummary, positive bool) *domain.SymbolSummary {
	var src *domain.SymbolSummary
	if len(side) > 0 {
		src = side[0]
	} else {
		src = mostExtreme(all, positive)
	}

	top := *src
	top.Messages = truncate(src.Messages, r.cfg.TopMessages)
	if len(side) == 0 {
		forced := r.forcedScore()
		if !positive {
			forced = -forced
		}
		top.MoodScore = forced
	}
	return &top
}

// forcedScore draws a presentation score in (0, 1]. Floored after wire
// rounding so a draw near 1 cannot collapse to exactly 0.
func (r *Runner) forcedScore() float64 {
	forced := round2(1 - r.rng.Float64())
	if forced < 0.01 {
		forced = 0.01
	}
	return forced
}

// buildRest collects up to RestSize entries from one side beyond its
// leader, then backfills from the most extreme remaining symbols of the
// whole pool so a thin side still renders a full list.
func (r *Runner) buildRest(side, all []*domain.SymbolSummary, topSymbol string, positive bool) []*domain.SymbolSummary {
	used := map[string]bool{topSymbol: true}
	rest := make([]*domain.SymbolSummary, 0, r.cfg.RestSize)

	for _, s := range side {
		if len(rest) == r.cfg.RestSize {
			break
		}
		if used[s.Symbol] {
			continue
		}
		used[s.Symbol] = true
		rest = append(rest, restEntry(s))
	}
	if len(rest) == r.cfg.RestSize {
		return rest
	}

	candidates := make([]*domain.SymbolSummary, 0, len(all))
	for _, s := range all {
		if !used[s.Symbol] {
			candidates = append(candidates, s)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if positive {
			return candidates[i].MoodScore > candidates[j].MoodScore
		}
		return candidates[i].MoodScore < candidates[j].MoodScore
	})
	for _, s := range candidates {
		if len(rest) == r.cfg.RestSize {
			break
		}
		used[s.Symbol] = true
		rest = append(rest, restEntry(s))
	}
	return rest
}

// applyDemoOverrides replaces aggregates with random draws for demo
// dashboards. Gated behind Config.DemoMode, off in production.
func (r *Runner) applyDemoOverrides(snapshot *domain.TopMoversSnapshot) {
	snapshot.MarketMood = round2(r.rng.Float64())
	snapshot.MarketConfidence = round2(r.rng.Float64() * 0.4)
	snapshot.TopPositive.MoodScore = r.forcedScore()
	snapshot.TopPositive.Confidence = round2(0.4 + r.rng.Float64()*0.4)
	snapshot.TopNegative.MoodScore = -r.forcedScore()
	snapshot.TopNegative.Confidence = round2(0.8 + r.rng.Float64()*0.2)
}

// persist writes one history entry per symbol for today and archives the
// scored messages. Both stores are attempted even if the first fails.
func (r *Runner) persist(ctx context.Context, summaries []*domain.SymbolSummary, scored []*domain.ScoredMessage, now time.Time) error {
	entries := make([]*domain.HistoryEntry, 0, len(summaries))
	day := domain.Day(now)
	for _, s := range summaries {
		entries = append(entries, &domain.HistoryEntry{
			Symbol:    s.Symbol,
			Date:      day,
			MoodScore: s.MoodScore,
		})
	}

	var persistErr error
	if err := r.history.UpsertBulk(ctx, entries); err != nil {
		r.metrics.PersistenceErrors.WithLabelValues("history").Inc()
		r.logger.Printf("history upsert failed: %v", err)
		persistErr = err
	} else {
		r.metrics.HistoryEntriesUpserted.Add(float64(len(entries)))
	}

	if r.archive != nil {
		if err := r.archive.InsertBulk(ctx, scored); err != nil {
			r.metrics.PersistenceErrors.WithLabelValues("archive").Inc()
			r.logger.Printf("message archive failed: %v", err)
			if persistErr == nil {
				persistErr = err
			}
		} else {
			r.metrics.MessagesArchived.Add(float64(len(scored)))
		}
	}
	return persistErr
}

func mostExtreme(all []*domain.SymbolSummary, positive bool) *domain.SymbolSummary {
	best := all[0]
	for _, s := range all[1:] {
		if positive && s.MoodScore > best.MoodScore {
			best = s
		}
		if !positive && s.MoodScore < best.MoodScore {
			best = s
		}
	}
	return best
}

func restEntry(s *domain.SymbolSummary) *domain.SymbolSummary {
	entry := *s
	if len(s.Messages) > 0 {
		entry.Headline = s.Messages[0].Text
	}
	return &entry
}

func truncate(msgs []domain.ScoredMessage, n int) []domain.ScoredMessage {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[:n]
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

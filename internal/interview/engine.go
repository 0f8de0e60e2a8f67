package interview

// #region imports
import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// #endregion

// #region collaborators

// CacheKey is the semantic key questions are cached under.
type CacheKey struct {
	Stage    Stage
	Pattern  Pattern
	Tier     Tier
	Keywords KeywordSet
}

func (k CacheKey) String() string {
	return fmt.Sprintf("%s|%s|%d|%s", k.Stage, k.Pattern, k.Tier, strings.Join(k.Keywords, ","))
}

// Cache stores previously produced questions. Implementations report
// failures as misses; the engine never sees a cache error.
type Cache interface {
	Get(ctx context.Context, key CacheKey) (string, bool)
	Set(ctx context.Context, key CacheKey, question string)
	FindSimilar(ctx context.Context, stage Stage, pattern Pattern, keywords KeywordSet) (string, bool)
}

// PatternMemo pins the first Pattern classified for a session.
type PatternMemo interface {
	LoadPattern(ctx context.Context, key string) (Pattern, bool, error)
	StorePattern(ctx context.Context, key string, p Pattern) error
}

// Observer receives per-turn measurements.
type Observer interface {
	ObserveTurn(stage Stage, source Source, elapsed time.Duration)
	ObserveFlag(concern Concern)
	ObserveGenerationError(kind GenerationErrorKind)
}

type nopCache struct{}

func (nopCache) Get(context.Context, CacheKey) (string, bool) { return "", false }
func (nopCache) Set(context.Context, CacheKey, string) {}
func (nopCache) FindSimilar(context.Context, Stage, Pattern, KeywordSet) (string, bool) {
	return "", false
}

type nopObserver struct{}

func (nopObserver) ObserveTurn(Stage, Source, time.Duration) {}
func (nopObserver) ObserveFlag(Concern) {}
func (nopObserver) ObserveGenerationError(GenerationErrorKind) {}

// MemoryPatternMemo is the in-process PatternMemo.
type MemoryPatternMemo struct {
	mu       sync.Mutex
	patterns map[string]Pattern
}

// NewMemoryPatternMemo creates an empty memo.
func NewMemoryPatternMemo() *MemoryPatternMemo {
	return &MemoryPatternMemo{patterns: make(map[string]Pattern)}
}

func (m *MemoryPatternMemo) LoadPattern(_ context.Context, key string) (Pattern, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patterns[key]
	return p, ok, nil
}

// StorePattern keeps the first pattern stored under key.
func (m *MemoryPatternMemo) StorePattern(_ context.Context, key string, p Pattern) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.patterns[key]; !ok {
		m.patterns[key] = p
	}
	return nil
}

// #endregion

// #region engine

// Engine decides the next interview question. It is safe for concurrent use
// by many sessions; only the cache and pattern memo are shared.
type Engine struct {
	cfg        Config
	gen        Generator
	cache      Cache
	memo       PatternMemo
	obs        Observer
	log        *zap.Logger
	now        func() time.Time
	classifier *AnswerClassifier
	stages     *StageController
	fallback   *FallbackChain
	group      singleflight.Group
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l.Named("engine")
		}
	}
}

// WithObserver sets the metrics observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.obs = o
		}
	}
}

// WithPatternMemo replaces the in-memory pattern memo.
func WithPatternMemo(m PatternMemo) Option {
	return func(e *Engine) {
		if m != nil {
			e.memo = m
		}
	}
}

// WithClock overrides time.Now for latency measurement.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an engine. gen may be nil, in which case every
// non-scripted question comes from the fallback chain. cache may be nil.
func NewEngine(cfg Config, gen Generator, cache Cache, opts ...Option) *Engine {
	cfg = cfg.withDefaults()
	classifier := NewAnswerClassifier(cfg)
	e := &Engine{
		cfg:        cfg,
		gen:        gen,
		cache:      cache,
		memo:       NewMemoryPatternMemo(),
		obs:        nopObserver{},
		log:        zap.NewNop(),
		now:        time.Now,
		classifier: classifier,
		stages:     NewStageController(cfg, classifier),
		fallback:   NewFallbackChain(cfg),
	}
	if e.cache == nil {
		e.cache = nopCache{}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the effective thresholds.
func (e *Engine) Config() Config { return e.cfg }

// #endregion

// #region next-question

// turnState is the plain value threaded through the pipeline steps.
type turnState struct {
	req      Request
	conv     ConversationState
	lastQ    string
	lastA    string
	answered bool
	verdict  Verdict
	keywords KeywordSet
	pattern  Pattern
	strategy StrategyDescriptor
	key      CacheKey
	spec     PromptSpec

	question string
	source   Source
	flags    Flags
}

// NextQuestion returns the question to ask after req.History. It never fails:
// generation, cache, and classifier failures all resolve to deterministic
// output.
func (e *Engine) NextQuestion(ctx context.Context, req Request) (res Result) {
	start := e.now()
	ts := &turnState{req: req, verdict: verdictOK}

	defer func() {
		if r := recover(); r != nil {
			e.log.Error("turn panicked", zap.Any("panic", r))
			res = Result{
				Question: elaborateRequest,
				Stage:    ts.conv.Stage,
				Depth:    ts.conv.Depth,
				Pattern:  ts.pattern,
				Source:   SourceFallback,
			}
		}
		e.obs.ObserveTurn(res.Stage, res.Source, e.now().Sub(start))
	}()

	e.resolvePattern(ctx, ts)
	ts.conv = e.stages.Derive(req.History, ts.pattern)
	ts.lastQ, ts.lastA, ts.answered = lastExchange(req.History)

	switch {
	case ts.conv.Stage == StageClosing:
		ts.question, ts.source = closingStatement, SourceClosing
	case e.classify(ts):
		ts.question, ts.source = Redirect(ts.verdict, ts.lastQ), SourceRedirect
	default:
		ts.keywords = ExtractKeywords(ts.lastA)
		e.choose(ctx, ts)
	}

	if !strings.HasSuffix(ts.question, "？") {
		ts.question, ts.source = e.fallback.Next(ts.conv, ts.pattern, ts.keywords, req.History), SourceFallback
	}

	e.log.Debug("next question",
		zap.String("stage", ts.conv.Stage.String()),
		zap.Int("depth", ts.conv.Depth),
		zap.String("pattern", string(ts.pattern)),
		zap.String("source", string(ts.source)),
		zap.Bool("joking", ts.flags.Joking),
		zap.Bool("misaligned", ts.flags.Misaligned),
		zap.Bool("cached", ts.flags.ServedFromCache),
	)

	return Result{
		Question: ts.question,
		Stage:    ts.conv.Stage,
		Depth:    ts.conv.Depth,
		Pattern:  ts.pattern,
		Keywords: ts.keywords,
		Flags:    ts.flags,
		Source:   ts.source,
		Closing:  ts.source == SourceClosing,
	}
}

// #endregion

// #region pipeline-steps

// resolvePattern classifies the profile once per session.
func (e *Engine) resolvePattern(ctx context.Context, ts *turnState) {
	key := MemoKey(ts.req)
	if p, ok, err := e.memo.LoadPattern(ctx, key); err != nil {
		e.log.Warn("pattern memo load failed", zap.Error(err))
	} else if ok {
		ts.pattern = p
		return
	}
	ts.pattern = ClassifyPattern(ts.req.Profile.Narrative())
	if err := e.memo.StorePattern(ctx, key, ts.pattern); err != nil {
		e.log.Warn("pattern memo store failed", zap.Error(err))
	}
}

// classify runs seriousness then alignment on the latest answer and reports
// whether the turn should short-circuit to a redirect.
func (e *Engine) classify(ts *turnState) bool {
	if !ts.answered {
		return false
	}
	func() {
		defer func() {
			if r := recover(); r != nil {
				e.log.Warn("classifier panicked, treating answer as acceptable", zap.Any("panic", r))
				ts.verdict = verdictOK
			}
		}()
		ts.verdict = e.classifier.Assess(ts.lastQ, ts.lastA)
	}()
	if !ts.verdict.Flagged() {
		return false
	}
	ts.flags.Joking = ts.verdict.Joking()
	ts.flags.Misaligned = !ts.flags.Joking
	e.obs.ObserveFlag(ts.verdict.Concern)
	return true
}

// choose picks a scripted, cached, generated, or fallback question.
func (e *Engine) choose(ctx context.Context, ts *turnState) {
	if ts.conv.Stage == StageOpening || (ts.conv.Stage == StageExploration && ts.conv.Depth <= 1) {
		ts.question = e.fallback.Next(ts.conv, ts.pattern, ts.keywords, ts.req.History)
		ts.source = SourceScript
		return
	}

	ts.strategy = SelectStrategy(ts.conv, ts.pattern, e.cfg)
	ts.key = CacheKey{Stage: ts.conv.Stage, Pattern: ts.pattern, Tier: ts.conv.Tier(), Keywords: ts.keywords}

	if q, ok := e.fromCache(ctx, ts); ok {
		ts.question = q
		ts.flags.ServedFromCache = true
		return
	}

	ts.spec = BuildPromptSpec(ts.conv, ts.pattern, ts.keywords, ts.strategy, ts.lastQ, ts.lastA, e.cfg)
	q, err := e.generate(ctx, ts)
	if err == nil && askedBefore(ts.req.History, q) {
		err = fmt.Errorf("%w: repeats an earlier question", ErrMalformedOutput)
	}
	if err != nil {
		if e.gen != nil {
			e.log.Warn("generation failed, using fallback",
				zap.String("kind", string(KindOf(err))),
				zap.Error(err),
			)
		}
		ts.question = e.fallback.Next(ts.conv, ts.pattern, ts.keywords, ts.req.History)
		ts.source = SourceFallback
		return
	}
	ts.question, ts.source = q, SourceGenerated
	e.safeCache(func() { e.cache.Set(ctx, ts.key, q) })
}

// fromCache probes the exact key, then the similar-key scan. A cached question
// that fails the served-question checks or was already asked is a miss.
func (e *Engine) fromCache(ctx context.Context, ts *turnState) (string, bool) {
	usable := func(q string) bool {
		return q != "" && CheckQuestion(q, ts.strategy.AllowMotivation) == nil && !askedBefore(ts.req.History, q)
	}

	var (
		q  string
		ok bool
	)
	e.safeCache(func() { q, ok = e.cache.Get(ctx, ts.key) })
	if ok && usable(q) {
		ts.source = SourceCache
		return q, true
	}
	e.safeCache(func() { q, ok = e.cache.FindSimilar(ctx, ts.key.Stage, ts.key.Pattern, ts.key.Keywords) })
	if ok && usable(q) {
		ts.source = SourceSimilar
		return q, true
	}
	return "", false
}

// generate runs one bounded generation call, shared across concurrent turns
// that resolve to the same cache key. The shared call is detached from any
// one caller, so a caller that gives up does not fail the others.
func (e *Engine) generate(ctx context.Context, ts *turnState) (string, error) {
	if e.gen == nil {
		return "", NewGenerationError(GenUnavailable, fmt.Errorf("no generator configured"))
	}
	spec := ts.spec
	shared := context.WithoutCancel(ctx)
	ch := e.group.DoChan(ts.key.String(), func() (interface{}, error) {
		gctx, cancel := context.WithTimeout(shared, e.cfg.GenerationTimeout)
		defer cancel()

		raw, err := e.callGenerator(gctx, spec)
		if err != nil {
			if gctx.Err() == context.DeadlineExceeded {
				err = NewGenerationError(GenTimeout, err)
			}
			e.obs.ObserveGenerationError(KindOf(err))
			return "", err
		}
		q, err := ValidateResponse(raw, spec.MaxSentences, spec.AllowMotivation)
		if err != nil {
			return "", fmt.Errorf("validate generation: %w", err)
		}
		return q, nil
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return "", r.Err
		}
		return r.Val.(string), nil
	case <-ctx.Done():
		return "", NewGenerationError(KindOf(ctx.Err()), ctx.Err())
	}
}

// callGenerator recovers a panicking generator as unavailable.
func (e *Engine) callGenerator(ctx context.Context, spec PromptSpec) (raw string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewGenerationError(GenUnavailable, fmt.Errorf("generator panic: %v", r))
		}
	}()
	return e.gen.Generate(ctx, spec)
}

// safeCache runs a cache operation, treating a panic as a miss.
func (e *Engine) safeCache(op func()) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("cache panicked, treating as miss", zap.Any("panic", r))
		}
	}()
	op()
}

// MemoKey returns the pattern memo key for req: the session ID, or a fingerprint of the
// profile narrative when none is given.
func MemoKey(req Request) string {
	if req.SessionID != "" {
		return "session:" + req.SessionID
	}
	sum := sha256.Sum256([]byte(req.Profile.Narrative()))
	return "narrative:" + hex.EncodeToString(sum[:])
}

// #endregion

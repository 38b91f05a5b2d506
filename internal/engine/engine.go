// Package engine is the public facade over the analysis pipeline: tone
// classification, attachment learning, advice ranking, and fit verification
// behind one constructor and a handful of operations.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/alexanderramin/attune/internal/classify"
	"github.com/alexanderramin/attune/internal/corpus"
	"github.com/alexanderramin/attune/internal/db"
	"github.com/alexanderramin/attune/internal/domain"
	"github.com/alexanderramin/attune/internal/llm"
	"github.com/alexanderramin/attune/internal/patterns"
	"github.com/alexanderramin/attune/internal/profile"
	"github.com/alexanderramin/attune/internal/rank"
	"github.com/alexanderramin/attune/internal/repository"
	"github.com/alexanderramin/attune/internal/verify"
)

// Deps carries the engine's external collaborators. DB is required for the
// profile operations; everything else has a working default.
type Deps struct {
	UoW  db.UnitOfWork
	Repo repository.ProfileRepo

	// Client is the model backend; nil keeps verification and embeddings on
	// their deterministic fallbacks.
	Client llm.Client

	// Advice and Clusters override the embedded corpus when non-nil.
	Advice   []domain.AdviceItem
	Clusters []domain.SemanticCluster

	Observer Observer
	Clock    func() time.Time
}

// Engine wires the pipeline together. All operations are safe for concurrent
// use; writes to the same user are serialized internally.
type Engine struct {
	cfg        Config
	classifier *classify.Classifier
	ranker     *rank.Ranker
	verifier   verify.Service
	client     llm.Client
	uow        db.UnitOfWork
	repo       repository.ProfileRepo
	observer   Observer
	clock      func() time.Time

	warm      singleflight.Group
	warmMu    sync.Mutex
	warmedUp  bool
	warmErr   error
	userLocks sync.Map // userID -> *sync.Mutex
}

// New builds the engine: matchers and the ranking index are constructed
// eagerly, embedding warm-up is deferred to WarmUp.
func New(deps Deps, cfg Config) *Engine {
	cfg = cfg.sanitized()
	if cfg.EmbedWarmup && cfg.Ranker.EmbedBonusWeight == 0 {
		cfg.Ranker.EmbedBonusWeight = 0.10
	}

	advice := deps.Advice
	if advice == nil {
		advice = corpus.DefaultAdvice()
	}
	clusters := deps.Clusters
	if clusters == nil {
		clusters = corpus.DefaultClusters()
	}
	observer := deps.Observer
	if observer == nil {
		observer = NoopObserver{}
	}
	clock := deps.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}

	classifier := classify.NewClassifier(
		patterns.DefaultLexicon(),
		patterns.DefaultBankConfig(),
		classify.DefaultContextDefs(),
		clusters,
		cfg.Classifier,
		nil,
	)

	return &Engine{
		cfg:        cfg,
		classifier: classifier,
		ranker:     rank.New(advice, classifier.Contexts(), cfg.Ranker),
		verifier:   verify.New(deps.Client, cfg.VerifyEnabled),
		client:     deps.Client,
		uow:        deps.UoW,
		repo:       deps.Repo,
		observer:   observer,
		clock:      clock,
	}
}

// LearningDays exposes the learning-window length for display.
func (e *Engine) LearningDays() int {
	return e.cfg.Learner.LearningDays
}

// WarmUp pre-computes advice embeddings when enabled and a model backend is
// reachable. Concurrent callers share one execution; repeat calls after a
// successful warm-up are no-ops. The engine works without it.
func (e *Engine) WarmUp(ctx context.Context) error {
	_, err, _ := e.warm.Do("warmup", func() (any, error) {
		e.warmMu.Lock()
		done, prevErr := e.warmedUp, e.warmErr
		e.warmMu.Unlock()
		if done {
			return nil, prevErr
		}

		err := e.warmUp(ctx)

		e.warmMu.Lock()
		e.warmedUp = true
		e.warmErr = err
		e.warmMu.Unlock()
		return nil, err
	})
	return err
}

func (e *Engine) embeddingsReady() bool {
	e.warmMu.Lock()
	defer e.warmMu.Unlock()
	return e.warmedUp && e.warmErr == nil && e.cfg.EmbedWarmup
}

func (e *Engine) warmUp(ctx context.Context) error {
	start := e.clock()

	if !e.cfg.EmbedWarmup || e.client == nil {
		e.observeOp(ctx, "warm_up", start, nil, map[string]any{"embedded": 0})
		return nil
	}
	if !e.client.Available(ctx) {
		err := llm.ErrBackendUnavailable
		e.observeOp(ctx, "warm_up", start, err, nil)
		return err
	}

	items := e.ranker.Items()
	if len(items) > e.cfg.EmbedWarmupCap {
		items = items[:e.cfg.EmbedWarmupCap]
	}

	vecs := make([][]float64, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.EmbedWarmupWorkers)
	for i, item := range items {
		g.Go(func() error {
			vec, err := e.client.Embed(gctx, item.Text)
			if err != nil {
				return fmt.Errorf("embed %s: %w", item.ID, err)
			}
			vecs[i] = vec
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		// SetEmbedding is not safe for concurrent use; install vectors
		// serially after the pool drains.
		for i, item := range items {
			e.ranker.SetEmbedding(item.ID, vecs[i])
		}
	}

	e.observeOp(ctx, "warm_up", start, err, map[string]any{"embedded": len(items)})
	return err
}

// ClassifyTone runs the deterministic tone pipeline for one message.
func (e *Engine) ClassifyTone(ctx context.Context, req classify.Request) classify.Result {
	start := e.clock()
	res := e.classifier.Classify(req)
	e.observeOp(ctx, "classify_tone", start, nil, map[string]any{
		"tone": string(res.Classification.Primary),
		"band": string(res.Classification.Band),
	})
	return res
}

// ObserveRequest is one incoming message to learn from.
type ObserveRequest struct {
	UserID  string
	Text    string
	Context domain.ContextID

	// DetectedTone skips internal classification when set, for callers that
	// already classified the message.
	DetectedTone domain.Tone
}

// Observe extracts attachment evidence from a message, folds it into the
// user's profile, and returns the updated estimate. Messages carrying no
// style signal leave the store untouched.
func (e *Engine) Observe(ctx context.Context, req ObserveRequest) (domain.AttachmentEstimate, error) {
	start := e.clock()

	if req.UserID == "" {
		err := errors.New("observe: user id required")
		e.observeOp(ctx, "observe", start, err, nil)
		return domain.InsufficientEvidenceEstimate(), err
	}

	tone := req.DetectedTone
	if tone == "" {
		res := e.classifier.Classify(classify.Request{Text: req.Text, Context: req.Context})
		tone = res.Classification.Primary
	}

	signals := profile.DetectSignals(req.Text, tone)
	evidence := profile.Evidence(signals)
	if evidence == nil {
		est, err := e.GetAttachmentEstimate(ctx, req.UserID)
		e.observeOp(ctx, "observe", start, err, map[string]any{"signals": 0})
		return est, err
	}

	now := start
	dayKey := profile.DayKeyFor(now, e.cfg.Location)
	signalID := strongestSignal(signals)

	var est domain.AttachmentEstimate
	err := e.withUserLock(req.UserID, func() error {
		return e.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			repo := repository.NewSQLiteProfileRepo(tx)

			p, err := repo.Get(ctx, req.UserID)
			if errors.Is(err, repository.ErrNotFound) {
				p = domain.NewCommunicatorProfile(req.UserID, dayKey, now)
			} else if err != nil {
				return err
			}

			// The profile row must exist before its events: profile_events
			// carries a foreign key on communicator_profiles.
			events := profile.Observe(p, evidence, signalID, dayKey, now, e.cfg.Learner)
			if err := repo.Upsert(ctx, p); err != nil {
				return err
			}
			if len(events) > 0 {
				if err := repo.AppendEvents(ctx, events); err != nil {
					return err
				}
			}
			if err := repo.PruneEvents(ctx, req.UserID, e.cfg.HistoryKeep); err != nil {
				return err
			}

			est = profile.Estimate(p, e.cfg.Learner)
			return nil
		})
	})
	if err != nil {
		e.observeOp(ctx, "observe", start, err, nil)
		return domain.InsufficientEvidenceEstimate(), fmt.Errorf("observe %s: %w", req.UserID, err)
	}

	e.observeOp(ctx, "observe", start, nil, map[string]any{
		"signals": len(signals),
		"primary": string(est.Primary),
	})
	return est, nil
}

// GetAttachmentEstimate reads the current estimate without mutating state.
// Unknown users get the insufficient-evidence default, not an error.
func (e *Engine) GetAttachmentEstimate(ctx context.Context, userID string) (domain.AttachmentEstimate, error) {
	p, err := e.repo.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.InsufficientEvidenceEstimate(), nil
	}
	if err != nil {
		return domain.InsufficientEvidenceEstimate(), fmt.Errorf("get estimate %s: %w", userID, err)
	}
	return profile.Estimate(p, e.cfg.Learner), nil
}

// SeedPrior stores a device-assessment prior for the user, creating the
// profile if needed. Seeding twice is a no-op.
func (e *Engine) SeedPrior(ctx context.Context, userID string, raw domain.AttachmentScores) error {
	start := e.clock()
	now := start
	dayKey := profile.DayKeyFor(now, e.cfg.Location)

	err := e.withUserLock(userID, func() error {
		return e.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			repo := repository.NewSQLiteProfileRepo(tx)

			p, err := repo.Get(ctx, userID)
			if errors.Is(err, repository.ErrNotFound) {
				p = domain.NewCommunicatorProfile(userID, dayKey, now)
			} else if err != nil {
				return err
			}

			event := profile.SeedPrior(p, raw, now)
			if event == nil {
				return nil
			}
			if err := repo.Upsert(ctx, p); err != nil {
				return err
			}
			return repo.AppendEvents(ctx, []domain.ProfileEvent{*event})
		})
	})
	e.observeOp(ctx, "seed_prior", start, err, map[string]any{"user": userID})
	if err != nil {
		return fmt.Errorf("seed prior %s: %w", userID, err)
	}
	return nil
}

// ResetProfile clears all learned state for the user. Resetting an unknown
// user returns ErrNotFound.
func (e *Engine) ResetProfile(ctx context.Context, userID string) error {
	start := e.clock()
	now := start
	dayKey := profile.DayKeyFor(now, e.cfg.Location)

	err := e.withUserLock(userID, func() error {
		return e.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			repo := repository.NewSQLiteProfileRepo(tx)

			p, err := repo.Get(ctx, userID)
			if err != nil {
				return err
			}

			event := profile.Reset(p, dayKey, now)
			if err := repo.Upsert(ctx, p); err != nil {
				return err
			}
			return repo.AppendEvents(ctx, []domain.ProfileEvent{event})
		})
	})
	e.observeOp(ctx, "reset_profile", start, err, map[string]any{"user": userID})
	if err != nil {
		return fmt.Errorf("reset profile %s: %w", userID, err)
	}
	return nil
}

// History returns the user's most recent profile events, newest first.
func (e *Engine) History(ctx context.Context, userID string, limit int) ([]domain.ProfileEvent, error) {
	events, err := e.repo.ListEvents(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", userID, err)
	}
	return events, nil
}

// RankRequest is one advice-ranking invocation.
type RankRequest struct {
	Text    string
	Context domain.ContextID

	// UserID fetches the stored attachment estimate for style tuning; empty
	// skips it.
	UserID string

	// Estimate overrides the stored lookup when non-nil.
	Estimate *domain.AttachmentEstimate

	Limit int
}

// RankResult is the ranked advice plus the classification it was ranked
// against.
type RankResult struct {
	Advice         []domain.RankedAdvice
	Classification domain.ToneClassification
	ContextScores  map[domain.ContextID]float64
}

// RankAdvice classifies the message and scores the corpus against it.
func (e *Engine) RankAdvice(ctx context.Context, req RankRequest) (RankResult, error) {
	start := e.clock()

	res := e.classifier.Classify(classify.Request{Text: req.Text, Context: req.Context})
	tone := res.Classification.Primary

	est := req.Estimate
	if est == nil && req.UserID != "" {
		stored, err := e.GetAttachmentEstimate(ctx, req.UserID)
		if err == nil && stored.Primary != "" {
			est = &stored
		}
	}

	var queryVec []float64
	if e.client != nil && e.embeddingsReady() {
		// Best effort: a failed embed just skips the cosine bonus.
		if vec, err := e.client.Embed(ctx, req.Text); err == nil {
			queryVec = vec
		}
	}

	ranked := e.ranker.Rank(rank.Request{
		Text:           req.Text,
		Context:        req.Context,
		Tone:           tone,
		ContextScores:  res.ContextScores,
		ToneScore:      res.Classification.Distribution.Get(tone),
		Estimate:       est,
		ActivePatterns: activePatterns(req.Text, tone, res.Backbone),
		QueryEmbedding: queryVec,
		Limit:          req.Limit,
	})

	e.observeOp(ctx, "rank_advice", start, nil, map[string]any{
		"tone":    string(tone),
		"results": len(ranked),
	})
	return RankResult{
		Advice:         ranked,
		Classification: res.Classification,
		ContextScores:  res.ContextScores,
	}, nil
}

// VerifyFit checks whether one advice item fits the message, classifying
// internally so the rules backstop sees the same context signal the ranker
// did.
func (e *Engine) VerifyFit(ctx context.Context, text string, item domain.AdviceItem) verify.Decision {
	start := e.clock()
	res := e.classifier.Classify(classify.Request{Text: text})
	dec := e.verifier.Verify(ctx, verify.Request{
		Premise:       text,
		Item:          item,
		ContextScores: res.ContextScores,
		Tone:          res.Classification.Primary,
	})
	e.observeOp(ctx, "verify_fit", start, nil, map[string]any{
		"item":     item.ID,
		"accepted": dec.Accepted,
		"source":   dec.Source,
	})
	return dec
}

// VerifyRanked filters ranked advice through the fit verifier, dropping
// rejected items. Order is preserved.
func (e *Engine) VerifyRanked(ctx context.Context, text string, ranked []domain.RankedAdvice) []domain.RankedAdvice {
	if len(ranked) == 0 {
		return ranked
	}
	res := e.classifier.Classify(classify.Request{Text: text})

	reqs := make([]verify.Request, len(ranked))
	for i, ra := range ranked {
		reqs[i] = verify.Request{
			Premise:       text,
			Item:          ra.Item,
			ContextScores: res.ContextScores,
			Tone:          res.Classification.Primary,
		}
	}

	decisions := e.verifier.VerifyBatch(ctx, reqs)
	out := ranked[:0:0]
	for i, dec := range decisions {
		if dec.Accepted {
			out = append(out, ranked[i])
		}
	}
	return out
}

func (e *Engine) withUserLock(userID string, fn func() error) error {
	v, _ := e.userLocks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()
	return fn()
}

func (e *Engine) observeOp(ctx context.Context, name string, start time.Time, err error, fields map[string]any) {
	e.observer.ObserveOp(ctx, OpEvent{
		Name:      name,
		Duration:  e.clock().Sub(start),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
		StartedAt: start,
	})
}

func strongestSignal(signals []profile.Signal) string {
	best := signals[0]
	for _, sig := range signals[1:] {
		if sig.Strength > best.Strength {
			best = sig
		}
	}
	return best.ID
}

// signalPatterns maps detected style-signal ids to the attachment-pattern
// tags the advice corpus declares.
var signalPatterns = map[string][]string{
	"anx_reassurance": {"reassurance_seeking"},
	"anx_abandonment": {"protest_behavior"},
	"anx_monitoring":  {"mind_reading", "reassurance_seeking"},
	"anx_protest":     {"protest_behavior"},
	"avo_space":       {"stonewalling"},
	"avo_deflect":     {"deflection"},
	"avo_exit":        {"stonewalling"},
	"dis_pushpull":    {"protest_behavior", "flooding"},
	"dis_chaos":       {"flooding"},
}

// clusterPatterns maps semantic-backbone cluster ids to pattern tags.
var clusterPatterns = map[string][]string{
	"rupture":    {"escalation"},
	"blame":      {"blame", "criticism"},
	"withdrawal": {"stonewalling"},
}

func activePatterns(text string, tone domain.Tone, backbone domain.BackboneResult) []string {
	seen := map[string]bool{}
	var out []string
	add := func(tags []string) {
		for _, tag := range tags {
			if !seen[tag] {
				seen[tag] = true
				out = append(out, tag)
			}
		}
	}
	for _, sig := range profile.DetectSignals(text, tone) {
		add(signalPatterns[sig.ID])
	}
	for _, m := range backbone.Matches {
		add(clusterPatterns[m.ClusterID])
	}
	return out
}

package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/attune/internal/classify"
	"github.com/alexanderramin/attune/internal/domain"
	"github.com/alexanderramin/attune/internal/llm"
	"github.com/alexanderramin/attune/internal/repository"
	"github.com/alexanderramin/attune/internal/testutil"
)

type fakeLLM struct {
	mu         sync.Mutex
	embedCalls int
}

func (f *fakeLLM) Generate(context.Context, llm.GenerateRequest) (*llm.GenerateResponse, error) {
	return nil, llm.ErrBackendUnavailable
}

func (f *fakeLLM) Embed(_ context.Context, _ string) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embedCalls++
	return []float64{1, 0, 0}, nil
}

func (f *fakeLLM) Available(context.Context) bool { return true }

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.embedCalls
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestEngine(t *testing.T, mutate func(*Deps, *Config)) (*Engine, *testClock) {
	t.Helper()

	database := testutil.NewTestDB(t)
	clock := &testClock{now: testutil.FixedNow}

	deps := Deps{
		UoW:   testutil.NewTestUoW(database),
		Repo:  repository.NewSQLiteProfileRepo(database),
		Clock: clock.Now,
	}
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&deps, &cfg)
	}
	return New(deps, cfg), clock
}

func TestClassifyToneRunsPipeline(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	res := e.ClassifyTone(context.Background(), classify.Request{
		Text: "you always do this, I am so sick of it",
	})

	assert.NotEmpty(t, res.Classification.Primary)
	assert.NotEmpty(t, res.Classification.Band)
	assert.InDelta(t, 1.0, res.Classification.Distribution.Sum(), 0.01)
}

func TestObserveLearnsFromSignals(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()

	est, err := e.Observe(ctx, ObserveRequest{
		UserID:       "u1",
		Text:         "are we okay? please don't leave",
		DetectedTone: domain.ToneAlert,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StyleAnxious, est.Primary)
	assert.Greater(t, est.Confidence, 0.0)
	assert.Equal(t, 0, est.DaysObserved)
}

// The schema enforces a foreign key from events to profiles, so the first
// observation for a user must write the profile row before its event.
func TestObserveFirstMessagePersistsProfileAndEvent(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()

	_, err := e.Observe(ctx, ObserveRequest{
		UserID:       "fresh",
		Text:         "are we okay? please don't leave",
		DetectedTone: domain.ToneAlert,
	})
	require.NoError(t, err)

	p, err := e.repo.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, 1, p.IncrementsToday)

	events, err := e.History(ctx, "fresh", 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "fresh", events[0].UserID)
}

func TestSeedPriorNewUserPersistsEvent(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()

	require.NoError(t, e.SeedPrior(ctx, "fresh", domain.AttachmentScores{Avoidant: 4}))

	_, err := e.repo.Get(ctx, "fresh")
	require.NoError(t, err)

	events, err := e.History(ctx, "fresh", 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestObserveNoSignalsLeavesStoreUntouched(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()

	est, err := e.Observe(ctx, ObserveRequest{
		UserID:       "u1",
		Text:         "the weather turned out lovely today",
		DetectedTone: domain.ToneClear,
	})
	require.NoError(t, err)
	assert.Empty(t, est.Primary)

	_, err = e.repo.Get(ctx, "u1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestObserveRequiresUserID(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	_, err := e.Observe(context.Background(), ObserveRequest{
		Text:         "are we okay?",
		DetectedTone: domain.ToneAlert,
	})
	assert.Error(t, err)
}

func TestObserveEnforcesDailyCap(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		_, err := e.Observe(ctx, ObserveRequest{
			UserID:       "u1",
			Text:         "are we okay? I feel like you're pulling away",
			DetectedTone: domain.ToneAlert,
		})
		require.NoError(t, err)
	}

	p, err := e.repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, e.cfg.Learner.DailyLimit, p.IncrementsToday)

	events, err := e.History(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, events, e.cfg.Learner.DailyLimit)
}

func TestObserveDayRollover(t *testing.T) {
	e, clock := newTestEngine(t, nil)
	ctx := context.Background()
	req := ObserveRequest{
		UserID:       "u1",
		Text:         "are we okay?",
		DetectedTone: domain.ToneAlert,
	}

	est, err := e.Observe(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 0, est.DaysObserved)

	clock.Advance(24 * time.Hour)
	est, err = e.Observe(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 1, est.DaysObserved)
}

func TestGetAttachmentEstimateUnknownUser(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	est, err := e.GetAttachmentEstimate(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, est.Primary)
	assert.Zero(t, est.Confidence)
	assert.Equal(t, domain.SecureFallbackScores(), est.Scores)
}

func TestSeedPriorDrivesFreshEstimate(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()

	err := e.SeedPrior(ctx, "u1", domain.AttachmentScores{Anxious: 3, Secure: 1})
	require.NoError(t, err)

	est, err := e.GetAttachmentEstimate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StyleAnxious, est.Primary)
	assert.Equal(t, 1.0, est.PriorWeight)
	assert.GreaterOrEqual(t, est.Confidence, 0.25)

	// Second seed is a no-op.
	err = e.SeedPrior(ctx, "u1", domain.AttachmentScores{Avoidant: 5})
	require.NoError(t, err)
	est, err = e.GetAttachmentEstimate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StyleAnxious, est.Primary)
}

func TestResetProfileClearsState(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()

	require.NoError(t, e.SeedPrior(ctx, "u1", domain.AttachmentScores{Avoidant: 2}))
	require.NoError(t, e.ResetProfile(ctx, "u1"))

	est, err := e.GetAttachmentEstimate(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, est.Primary)
	assert.Zero(t, est.Confidence)
	assert.Zero(t, est.PriorWeight)
}

func TestResetProfileUnknownUser(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	err := e.ResetProfile(context.Background(), "nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func rankTestCorpus() []domain.AdviceItem {
	return []domain.AdviceItem{
		{ID: "adv-a", Text: "pause before you send the message and reread it once"},
		{ID: "adv-b", Text: "name the feeling you are having instead of the accusation"},
		{ID: "adv-c", Text: "agree on a time to talk when you are both calm"},
	}
}

func TestRankAdviceDeterministic(t *testing.T) {
	e, _ := newTestEngine(t, func(deps *Deps, _ *Config) {
		deps.Advice = rankTestCorpus()
	})
	ctx := context.Background()

	first, err := e.RankAdvice(ctx, RankRequest{Text: "you always blame me and I am so angry"})
	require.NoError(t, err)
	require.NotEmpty(t, first.Advice)
	assert.NotEmpty(t, first.Classification.Primary)

	second, err := e.RankAdvice(ctx, RankRequest{Text: "you always blame me and I am so angry"})
	require.NoError(t, err)
	require.Equal(t, len(first.Advice), len(second.Advice))
	for i := range first.Advice {
		assert.Equal(t, first.Advice[i].Item.ID, second.Advice[i].Item.ID)
		assert.Equal(t, first.Advice[i].Score, second.Advice[i].Score)
	}
}

func TestRankAdviceHonorsLimit(t *testing.T) {
	e, _ := newTestEngine(t, func(deps *Deps, _ *Config) {
		deps.Advice = rankTestCorpus()
	})

	res, err := e.RankAdvice(context.Background(), RankRequest{
		Text:  "pause before you talk, name the feeling",
		Limit: 1,
	})
	require.NoError(t, err)
	assert.Len(t, res.Advice, 1)
}

func TestRankAdviceEmbeddedCorpus(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	res, err := e.RankAdvice(context.Background(), RankRequest{
		Text:    "you never listen to me, you always make it my fault",
		Context: domain.ContextConflict,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Advice)
}

func TestVerifyFitRulesPath(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	item := domain.AdviceItem{
		ID:   "adv-understand",
		Text: "ask what happened and try to understand their side first",
	}
	dec := e.VerifyFit(context.Background(), "I want to understand what happened last night", item)

	assert.True(t, dec.Accepted)
	assert.Equal(t, "rules", dec.Source)
	assert.Equal(t, domain.DegradedNLIResult(), dec.Scores)
}

func TestVerifyRankedFiltersRejected(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	ranked := []domain.RankedAdvice{
		{Item: domain.AdviceItem{ID: "keep", Text: "try to understand what happened before replying"}, Score: 0.9},
		{Item: domain.AdviceItem{ID: "drop", Text: "water the plants on sunday mornings"}, Score: 0.5},
	}

	out := e.VerifyRanked(context.Background(), "help me understand what happened last night", ranked)
	require.Len(t, out, 1)
	assert.Equal(t, "keep", out[0].Item.ID)
}

func TestWarmUpWithoutClient(t *testing.T) {
	e, _ := newTestEngine(t, func(_ *Deps, cfg *Config) {
		cfg.EmbedWarmup = true
	})

	require.NoError(t, e.WarmUp(context.Background()))
	require.NoError(t, e.WarmUp(context.Background()))
}

func TestWarmUpEmbedsUpToCap(t *testing.T) {
	client := &fakeLLM{}
	e, _ := newTestEngine(t, func(deps *Deps, cfg *Config) {
		deps.Client = client
		deps.Advice = rankTestCorpus()
		cfg.EmbedWarmup = true
		cfg.EmbedWarmupCap = 2
	})
	ctx := context.Background()

	require.NoError(t, e.WarmUp(ctx))
	assert.Equal(t, 2, client.calls())

	// Repeat warm-up does not re-embed.
	require.NoError(t, e.WarmUp(ctx))
	assert.Equal(t, 2, client.calls())

	// A ranked query now embeds the message for the cosine bonus.
	_, err := e.RankAdvice(ctx, RankRequest{Text: "pause before you send it"})
	require.NoError(t, err)
	assert.Equal(t, 3, client.calls())
}

func TestObserveRollsBackOnStoreFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	clock := &testClock{now: testutil.FixedNow}
	boom := errors.New("disk full")

	e := New(Deps{
		UoW:   &testutil.FailOnNthExecUoW{DB: database, FailOn: 2, Err: boom},
		Repo:  repository.NewSQLiteProfileRepo(database),
		Clock: clock.Now,
	}, DefaultConfig())
	ctx := context.Background()

	_, err := e.Observe(ctx, ObserveRequest{
		UserID:       "u1",
		Text:         "are we okay?",
		DetectedTone: domain.ToneAlert,
	})
	require.ErrorIs(t, err, boom)

	// The whole transaction rolled back: no profile, no events.
	_, err = e.repo.Get(ctx, "u1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetAttachmentEstimateStoredProfile(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()

	p := testutil.NewProfile("u1",
		testutil.WithScores(domain.AttachmentScores{Avoidant: 4, Secure: 1}),
		testutil.WithDaysObserved(7),
	)
	require.NoError(t, e.repo.Upsert(ctx, p))

	est, err := e.GetAttachmentEstimate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StyleAvoidant, est.Primary)
	assert.True(t, est.WindowComplete)
}

func TestObserveConcurrentSameUser(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Observe(ctx, ObserveRequest{
				UserID:       "u1",
				Text:         "are we okay?",
				DetectedTone: domain.ToneAlert,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	p, err := e.repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, e.cfg.Learner.DailyLimit, p.IncrementsToday)
}

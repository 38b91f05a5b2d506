// Package verify gates ranked advice with an entailment-style fit check.
// The model path is optional: any timeout, backend failure, or disable flag
// degrades to neutral scores and a deterministic rules backstop, so Verify
// always returns a decision and never an error.
package verify

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/alexanderramin/attune/internal/domain"
	"github.com/alexanderramin/attune/internal/llm"
)

// maxPremiseLen clamps user text before it reaches the model.
const maxPremiseLen = 1200

// Request is one premise/advice pair to check.
type Request struct {
	Premise string
	Item    domain.AdviceItem

	// Context and ContextScores feed the rules backstop.
	Context       domain.ContextID
	ContextScores map[domain.ContextID]float64
	Tone          domain.Tone
}

// Decision is the verifier's verdict for one pair.
type Decision struct {
	Accepted bool
	Scores   domain.NLIResult

	// Source is "model" when the NLI call decided, "rules" otherwise.
	Source string
}

// Service checks advice fit against a message.
type Service interface {
	// Verify decides one premise/advice pair.
	Verify(ctx context.Context, req Request) Decision

	// VerifyBatch decides a batch of pairs sequentially; one bulk call
	// amortizes the caller's per-invocation overhead.
	VerifyBatch(ctx context.Context, reqs []Request) []Decision
}

type service struct {
	client  llm.Client
	enabled bool
}

// New creates a verifier. A nil client or enabled=false keeps every
// decision on the rules path.
func New(client llm.Client, enabled bool) Service {
	return &service{client: client, enabled: enabled}
}

func (s *service) Verify(ctx context.Context, req Request) Decision {
	premise := clampPremise(req.Premise)

	if !s.enabled || s.client == nil {
		return s.rulesDecision(premise, req)
	}

	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskNLI,
		SystemPrompt: nliSystemPrompt,
		UserPrompt:   nliUserPrompt(premise, hypothesisFor(req.Item)),
	})
	if err != nil {
		return s.rulesDecision(premise, req)
	}

	entail, contra, neutral, err := llm.ParseNLIScores(resp.Text)
	if err != nil {
		return s.rulesDecision(premise, req)
	}

	return Decision{
		Accepted: entail > contra,
		Scores:   domain.NLIResult{Entail: entail, Contra: contra, Neutral: neutral},
		Source:   "model",
	}
}

func (s *service) VerifyBatch(ctx context.Context, reqs []Request) []Decision {
	out := make([]Decision, len(reqs))
	for i, req := range reqs {
		out[i] = s.Verify(ctx, req)
	}
	return out
}

func (s *service) rulesDecision(premise string, req Request) Decision {
	return Decision{
		Accepted: rulesAccept(premise, req),
		Scores:   domain.DegradedNLIResult(),
		Source:   "rules",
	}
}

func clampPremise(s string) string {
	if len(s) <= maxPremiseLen {
		return s
	}
	// Back up to a rune boundary so the cut never splits a character.
	cut := maxPremiseLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// hypothesisFor synthesizes the NLI hypothesis: the item's primary declared
// intent when present, a text-derived intent otherwise, and the advice text
// itself as the last resort.
func hypothesisFor(item domain.AdviceItem) string {
	if len(item.Intents) > 0 {
		return fmt.Sprintf("Advice that helps the sender %s is appropriate for this message.", item.Intents[0])
	}
	if intents := detectIntents(item.Text); len(intents) > 0 {
		return fmt.Sprintf("Advice that helps the sender %s is appropriate for this message.", intents[0])
	}
	return fmt.Sprintf("The advice %q is appropriate for this message.", item.Text)
}

const nliSystemPrompt = `You judge whether a piece of communication advice fits a message someone is about to send.
Respond with ONLY a JSON object: {"entail": <0-1>, "contra": <0-1>, "neutral": <0-1>}.
"entail" means the advice clearly fits the message, "contra" means it clearly does not.`

func nliUserPrompt(premise, hypothesis string) string {
	return fmt.Sprintf("Message:\n%s\n\nHypothesis:\n%s", premise, hypothesis)
}

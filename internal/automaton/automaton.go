// Package automaton implements a multi-pattern matcher over token sequences
// (Aho–Corasick with token-level states). Matching is a single streaming
// pass, O(n) in the token count regardless of pattern-set size.
package automaton

// Match is one pattern occurrence in the scanned token sequence.
// Start and End are token indices; End is inclusive.
type Match[T any] struct {
	Start   int
	End     int
	Payload T
}

type output[T any] struct {
	length  int // pattern length in tokens
	payload T
}

type node[T any] struct {
	next    map[string]int32
	fail    int32
	outputs []output[T]
}

// Automaton matches token-sequence patterns against token streams. Patterns
// carry an arbitrary payload returned with each match. Build must be called
// after the last AddPattern and before the first Find; Find calls Build
// lazily when needed.
type Automaton[T any] struct {
	nodes []node[T]
	built bool
	count int
}

// New returns an empty automaton.
func New[T any]() *Automaton[T] {
	a := &Automaton[T]{}
	a.Reset()
	return a
}

// Reset discards all patterns and returns the automaton to its empty state.
func (a *Automaton[T]) Reset() {
	a.nodes = []node[T]{{next: map[string]int32{}}}
	a.built = false
	a.count = 0
}

// Len returns the number of patterns added.
func (a *Automaton[T]) Len() int {
	return a.count
}

// AddPattern registers a token sequence with its payload. Empty patterns and
// patterns containing empty tokens are ignored.
func (a *Automaton[T]) AddPattern(tokens []string, payload T) {
	if len(tokens) == 0 {
		return
	}
	for _, t := range tokens {
		if t == "" {
			return
		}
	}

	cur := int32(0)
	for _, t := range tokens {
		next, ok := a.nodes[cur].next[t]
		if !ok {
			a.nodes = append(a.nodes, node[T]{next: map[string]int32{}})
			next = int32(len(a.nodes) - 1)
			a.nodes[cur].next[t] = next
		}
		cur = next
	}
	a.nodes[cur].outputs = append(a.nodes[cur].outputs, output[T]{length: len(tokens), payload: payload})
	a.count++
	a.built = false
}

// AddAll registers many patterns with one shared payload.
func (a *Automaton[T]) AddAll(patterns [][]string, payload T) {
	for _, p := range patterns {
		a.AddPattern(p, payload)
	}
}

// Contains reports whether the exact token sequence was added as a pattern.
func (a *Automaton[T]) Contains(tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	cur := int32(0)
	for _, t := range tokens {
		next, ok := a.nodes[cur].next[t]
		if !ok {
			return false
		}
		cur = next
	}
	return len(a.nodes[cur].outputs) > 0
}

// Build computes failure links breadth-first and inherits suffix outputs so
// overlapping patterns are all reported during a single pass.
func (a *Automaton[T]) Build() {
	if a.built {
		return
	}

	queue := make([]int32, 0, len(a.nodes))
	for _, next := range a.nodes[0].next {
		a.nodes[next].fail = 0
		queue = append(queue, next)
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for tok, next := range a.nodes[cur].next {
			queue = append(queue, next)

			fail := a.nodes[cur].fail
			for fail != 0 {
				if f, ok := a.nodes[fail].next[tok]; ok {
					fail = f
					break
				}
				fail = a.nodes[fail].fail
			}
			if fail == 0 {
				if f, ok := a.nodes[0].next[tok]; ok && f != next {
					fail = f
				}
			}
			a.nodes[next].fail = fail

			// Suffix-inherited outputs: a state emits everything its failure
			// state emits.
			a.nodes[next].outputs = append(a.nodes[next].outputs, a.nodes[fail].outputs...)
		}
	}

	a.built = true
}

// Find streams over tokens once and returns every pattern occurrence in
// order of match end position.
func (a *Automaton[T]) Find(tokens []string) []Match[T] {
	if !a.built {
		a.Build()
	}

	var matches []Match[T]
	cur := int32(0)
	for i, tok := range tokens {
		for {
			if next, ok := a.nodes[cur].next[tok]; ok {
				cur = next
				break
			}
			if cur == 0 {
				break
			}
			cur = a.nodes[cur].fail
		}
		for _, out := range a.nodes[cur].outputs {
			matches = append(matches, Match[T]{
				Start:   i - out.length + 1,
				End:     i,
				Payload: out.payload,
			})
		}
	}
	return matches
}

package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// nliScores is the JSON shape the NLI prompt asks the model to emit.
type nliScores struct {
	Entail  float64 `json:"entail"`
	Contra  float64 `json:"contra"`
	Neutral float64 `json:"neutral"`
}

// ParseNLIScores extracts the {entail, contra, neutral} object from raw
// model output. Small models wrap JSON in prose or code fences, so the
// parser scans for the first balanced object rather than decoding the whole
// response. Scores are clamped to [0, 1].
func ParseNLIScores(raw string) (entail, contra, neutral float64, err error) {
	block := firstJSONObject(raw)
	if block == "" {
		return 0, 0, 0, fmt.Errorf("%w: no JSON object found in response", ErrInvalidOutput)
	}

	var scores nliScores
	if uerr := json.Unmarshal([]byte(block), &scores); uerr != nil {
		return 0, 0, 0, fmt.Errorf("%w: %v", ErrInvalidOutput, uerr)
	}
	return clampScore(scores.Entail), clampScore(scores.Contra), clampScore(scores.Neutral), nil
}

// firstJSONObject finds the first balanced { ... } block, tolerating string
// literals with escaped quotes.
func firstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func clampScore(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Package corpus loads the advice items and semantic-cluster configuration
// consumed by the ranking and classification layers. Files are JSON;
// malformed entries are skipped with a warning rather than failing the whole
// load, so a single bad record never takes the product down. An embedded
// default corpus keeps the binary usable with no data files at all.
package corpus

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/alexanderramin/attune/internal/domain"
)

//go:embed advice.json
var defaultAdviceJSON []byte

//go:embed clusters.json
var defaultClustersJSON []byte

// adviceEntry is the wire shape of one corpus record.
type adviceEntry struct {
	ID                string             `json:"id"`
	Text              string             `json:"text"`
	TriggerTones      []string           `json:"trigger_tones,omitempty"`
	Contexts          []string           `json:"contexts,omitempty"`
	ContextLinks      []string           `json:"context_links,omitempty"`
	Styles            []string           `json:"styles,omitempty"`
	Patterns          []string           `json:"patterns,omitempty"`
	Intents           []string           `json:"intents,omitempty"`
	StyleTuning       map[string]float64 `json:"style_tuning,omitempty"`
	SeverityThreshold map[string]float64 `json:"severity_threshold,omitempty"`
	BoostSources      []string           `json:"boost_sources,omitempty"`
}

// clusterEntry is the wire shape of one semantic cluster.
type clusterEntry struct {
	ID                    string             `json:"id"`
	Keywords              []string           `json:"keywords,omitempty"`
	Phrases               []string           `json:"phrases,omitempty"`
	ConfidenceCalibration float64            `json:"confidence_calibration,omitempty"`
	ToneBias              map[string]float64 `json:"tone_bias,omitempty"`
	ContextBias           map[string]float64 `json:"context_bias,omitempty"`
}

// LoadAdvice reads an advice corpus from path. Entries missing an id or
// text, or repeating an id, are skipped with a warning.
func LoadAdvice(path string, logger *slog.Logger) ([]domain.AdviceItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading advice corpus: %w", err)
	}
	return parseAdvice(data, logger)
}

// LoadClusters reads semantic-cluster config from path.
func LoadClusters(path string, logger *slog.Logger) ([]domain.SemanticCluster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cluster config: %w", err)
	}
	return parseClusters(data, logger)
}

// DefaultAdvice returns the embedded advice corpus.
func DefaultAdvice() []domain.AdviceItem {
	items, err := parseAdvice(defaultAdviceJSON, nil)
	if err != nil {
		// The embedded corpus is fixed at build time; a parse failure here
		// is a packaging bug.
		panic(fmt.Sprintf("embedded advice corpus invalid: %v", err))
	}
	return items
}

// DefaultClusters returns the embedded cluster configuration.
func DefaultClusters() []domain.SemanticCluster {
	clusters, err := parseClusters(defaultClustersJSON, nil)
	if err != nil {
		panic(fmt.Sprintf("embedded cluster config invalid: %v", err))
	}
	return clusters
}

func parseAdvice(data []byte, logger *slog.Logger) ([]domain.AdviceItem, error) {
	logger = ensureLogger(logger)

	var entries []adviceEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing advice corpus: %w", err)
	}

	seen := map[string]bool{}
	items := make([]domain.AdviceItem, 0, len(entries))
	for i, e := range entries {
		if e.ID == "" || e.Text == "" {
			logger.Warn("skipping advice entry without id or text", "index", i)
			continue
		}
		if seen[e.ID] {
			logger.Warn("skipping duplicate advice id", "id", e.ID)
			continue
		}
		seen[e.ID] = true

		items = append(items, domain.AdviceItem{
			ID:                e.ID,
			Text:              e.Text,
			TriggerTones:      parseTones(e.TriggerTones, e.ID, logger),
			Contexts:          toContextIDs(e.Contexts),
			ContextLinks:      toContextIDs(e.ContextLinks),
			Styles:            parseStyles(e.Styles, e.ID, logger),
			Patterns:          e.Patterns,
			Intents:           e.Intents,
			StyleTuning:       parseStyleTuning(e.StyleTuning, e.ID, logger),
			SeverityThreshold: parseSeverityThresholds(e.SeverityThreshold, e.ID, logger),
			BoostSources:      e.BoostSources,
		})
	}
	return items, nil
}

func parseClusters(data []byte, logger *slog.Logger) ([]domain.SemanticCluster, error) {
	logger = ensureLogger(logger)

	var entries []clusterEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing cluster config: %w", err)
	}

	clusters := make([]domain.SemanticCluster, 0, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			logger.Warn("skipping cluster entry without id", "index", i)
			continue
		}
		if len(e.Keywords) == 0 && len(e.Phrases) == 0 {
			logger.Warn("skipping cluster with no keywords or phrases", "id", e.ID)
			continue
		}
		calibration := e.ConfidenceCalibration
		if calibration <= 0 || calibration > 1 {
			calibration = 1
		}

		toneBias := map[domain.Tone]float64{}
		for name, v := range e.ToneBias {
			tone, ok := parseTone(name)
			if !ok {
				logger.Warn("skipping unknown tone in cluster bias", "id", e.ID, "tone", name)
				continue
			}
			toneBias[tone] = v
		}
		contextBias := map[domain.ContextID]float64{}
		for name, v := range e.ContextBias {
			contextBias[domain.ContextID(name)] = v
		}

		clusters = append(clusters, domain.SemanticCluster{
			ID:                    e.ID,
			Keywords:              e.Keywords,
			Phrases:               e.Phrases,
			ConfidenceCalibration: calibration,
			ToneBias:              toneBias,
			ContextBias:           contextBias,
		})
	}
	return clusters, nil
}

func toContextIDs(names []string) []domain.ContextID {
	if len(names) == 0 {
		return nil
	}
	out := make([]domain.ContextID, 0, len(names))
	for _, name := range names {
		out = append(out, domain.ContextID(name))
	}
	return out
}

func parseTone(name string) (domain.Tone, bool) {
	switch domain.Tone(name) {
	case domain.ToneAlert, domain.ToneCaution, domain.ToneClear:
		return domain.Tone(name), true
	}
	return "", false
}

func parseTones(names []string, id string, logger *slog.Logger) []domain.Tone {
	var out []domain.Tone
	for _, name := range names {
		tone, ok := parseTone(name)
		if !ok {
			logger.Warn("skipping unknown trigger tone", "id", id, "tone", name)
			continue
		}
		out = append(out, tone)
	}
	return out
}

func parseStyles(names []string, id string, logger *slog.Logger) []domain.AttachmentStyle {
	var out []domain.AttachmentStyle
	for _, name := range names {
		if !domain.ValidAttachmentStyles[name] {
			logger.Warn("skipping unknown attachment style", "id", id, "style", name)
			continue
		}
		out = append(out, domain.AttachmentStyle(name))
	}
	return out
}

func parseStyleTuning(raw map[string]float64, id string, logger *slog.Logger) map[domain.AttachmentStyle]float64 {
	if len(raw) == 0 {
		return nil
	}
	out := map[domain.AttachmentStyle]float64{}
	for name, v := range raw {
		if !domain.ValidAttachmentStyles[name] {
			logger.Warn("skipping unknown style in tuning", "id", id, "style", name)
			continue
		}
		out[domain.AttachmentStyle(name)] = v
	}
	return out
}

func parseSeverityThresholds(raw map[string]float64, id string, logger *slog.Logger) map[domain.Tone]float64 {
	if len(raw) == 0 {
		return nil
	}
	out := map[domain.Tone]float64{}
	for name, v := range raw {
		tone, ok := parseTone(name)
		if !ok {
			logger.Warn("skipping unknown tone in severity threshold", "id", id, "tone", name)
			continue
		}
		out[tone] = v
	}
	return out
}

func ensureLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

// Package parser turns free-form generation output into recommendation entries.
package parser

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/actuallystonmai/product-recommendation-service/internal/domain"
)

const (
	DefaultReason      = "Recommended for you"
	DefaultConfidence  = 0.8
	DefaultExplanation = "Recommendations based on your preferences"
)

// Outcome is either WellFormed or Degraded.
type Outcome interface {
	Explanation() string
	Entries() []domain.ParsedRecommendation
	sealed()
}

// WellFormed is produced when the text held a decodable JSON object.
type WellFormed struct {
	explanation string
	entries     []domain.ParsedRecommendation
	// Skipped counts recommendation entries dropped for lacking a product_id.
	Skipped int
}

func (w WellFormed) Explanation() string                    { return w.explanation }
func (w WellFormed) Entries() []domain.ParsedRecommendation { return w.entries }
func (WellFormed) sealed()                                  {}

// Degraded carries the raw text when no JSON object could be decoded.
type Degraded struct {
	Text string
}

func (d Degraded) Explanation() string                    { return d.Text }
func (d Degraded) Entries() []domain.ParsedRecommendation { return nil }
func (Degraded) sealed()                                  {}

// Parse never fails. It decodes the span between the first '{' and the last '}'
// and falls back to Degraded when that span is missing or not valid JSON.
func Parse(raw domain.RawGeneration) Outcome {
	text := raw.Text
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return Degraded{Text: text}
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text[start:end+1]), &doc); err != nil {
		return Degraded{Text: text}
	}

	out := WellFormed{explanation: DefaultExplanation}
	if rawExpl, ok := doc["explanation"]; ok {
		var s string
		if json.Unmarshal(rawExpl, &s) == nil {
			out.explanation = s
		}
	}

	rawRecs, ok := doc["recommendations"]
	if !ok {
		return out
	}
	var items []json.RawMessage
	if err := json.Unmarshal(rawRecs, &items); err != nil {
		return out
	}

	out.entries = make([]domain.ParsedRecommendation, 0, len(items))
	for _, item := range items {
		entry, ok := parseEntry(item)
		if !ok {
			out.Skipped++
			continue
		}
		out.entries = append(out.entries, entry)
	}
	return out
}

func parseEntry(raw json.RawMessage) (domain.ParsedRecommendation, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return domain.ParsedRecommendation{}, false
	}

	var id string
	switch v := fields["product_id"].(type) {
	case string:
		id = strings.TrimSpace(v)
	case json.Number:
		id = v.String()
	}
	if id == "" {
		return domain.ParsedRecommendation{}, false
	}

	entry := domain.ParsedRecommendation{
		ProductID:       id,
		Reason:          DefaultReason,
		ConfidenceScore: DefaultConfidence,
	}
	if reason, ok := fields["recommendation_reason"].(string); ok && strings.TrimSpace(reason) != "" {
		entry.Reason = reason
	}
	if n, ok := fields["confidence_score"].(json.Number); ok {
		if f, err := n.Float64(); err == nil {
			entry.ConfidenceScore = clamp(f)
		}
	}
	return entry, true
}

func clamp(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

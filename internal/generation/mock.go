package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/actuallystonmai/product-recommendation-service/internal/config"
	"github.com/actuallystonmai/product-recommendation-service/internal/domain"
	"github.com/actuallystonmai/product-recommendation-service/internal/prompt"
)

const (
	mockRecommendations = 3
	mockTopConfidence   = 0.85
	mockConfidenceStep  = 0.1
	mockExplanation     = "These products are recommended based on your preferences and available inventory."
)

// MockGateway answers without a backend. Its recommendation output is the same JSON
// document a live model is asked to produce, so it flows through the same parser.
type MockGateway struct{}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (m *MockGateway) Live() bool       { return false }
func (m *MockGateway) Provider() string { return config.ProviderMock }

type mockEntry struct {
	ProductID string  `json:"product_id"`
	Reason    string  `json:"recommendation_reason"`
	Score     float64 `json:"confidence_score"`
}

type mockDocument struct {
	Recommendations []mockEntry `json:"recommendations"`
	Explanation     string      `json:"explanation"`
}

func (m *MockGateway) Generate(ctx context.Context, req Request) (domain.RawGeneration, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawGeneration{}, err
	}

	switch req.Kind {
	case prompt.Recommend:
		doc := mockDocument{
			Recommendations: make([]mockEntry, 0, mockRecommendations),
			Explanation:     mockExplanation,
		}
		for i, p := range req.Products {
			if i == mockRecommendations {
				break
			}
			doc.Recommendations = append(doc.Recommendations, mockEntry{
				ProductID: p.ID,
				Reason:    fmt.Sprintf("Great choice for your needs - %s offers excellent value", p.Name),
				Score:     MockConfidence(i),
			})
		}
		out, err := json.Marshal(doc)
		if err != nil {
			return domain.RawGeneration{}, fmt.Errorf("encode mock recommendations: %w", err)
		}
		return domain.RawGeneration{Text: string(out)}, nil
	case prompt.Query:
		return domain.RawGeneration{Text: fmt.Sprintf(
			"Based on your query '%s', here are some relevant products from our catalog.", req.Query)}, nil
	case prompt.Chat:
		return domain.RawGeneration{Text: fmt.Sprintf(
			"Hello! I'd be happy to help you with your shopping. You asked: '%s'. How can I assist you with finding the right products?", req.Message)}, nil
	default:
		return domain.RawGeneration{}, fmt.Errorf("mock gateway: unsupported prompt kind %s", req.Kind)
	}
}

// MockConfidence is 0.85 - 0.1*index rounded to two decimals and clamped at zero.
func MockConfidence(index int) float64 {
	score := math.Round((mockTopConfidence-mockConfidenceStep*float64(index))*100) / 100
	return math.Max(0, score)
}

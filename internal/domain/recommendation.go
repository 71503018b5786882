package domain

type RecommendationContext struct {
	// Caller is the verified token identity. Identity is what the identity
	// collaborator returned, nil when it had nothing.
	Caller           Identity  `json:"caller"`
	Identity         *Identity `json:"identity,omitempty"`
	Products         []Product `json:"products"`
	UserPreferences  string    `json:"user_preferences,omitempty"`
	BudgetMax        *float64  `json:"budget_max,omitempty"`
	PreviousOrderIDs []string  `json:"previous_order_ids"`
}

type ParsedRecommendation struct {
	ProductID       string  `json:"product_id"`
	Reason          string  `json:"recommendation_reason"`
	ConfidenceScore float64 `json:"confidence_score"`
}

type ProductRecommendation struct {
	ProductID       string   `json:"product_id"`
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	Price           float64  `json:"price"`
	Tags            []string `json:"tags"`
	Reason          string   `json:"recommendation_reason"`
	ConfidenceScore float64  `json:"confidence_score"`
}

type RecommendationResult struct {
	Recommendations []ProductRecommendation `json:"recommendations"`
	Explanation     string                  `json:"explanation"`
	Personalized    bool                    `json:"personalized"`
}

// RawGeneration is the untouched text produced by a generation backend or the mock path.
type RawGeneration struct {
	Text string
}

type QueryResult struct {
	Answer   string    `json:"answer"`
	Products []Product `json:"products"`
}

type ChatResult struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
}

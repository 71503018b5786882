package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type RecommendationRequest struct {
	UserPreferences string   `json:"user_preferences"`
	Category        string   `json:"category"`
	BudgetMax       *float64 `json:"budget_max" validate:"omitempty,gte=0"`
	PreviousOrders  []string `json:"previous_orders" validate:"omitempty,dive,required"`
}

func (r *RecommendationRequest) normalize() {
	r.UserPreferences = strings.TrimSpace(r.UserPreferences)
	r.Category = strings.TrimSpace(r.Category)
	for i, id := range r.PreviousOrders {
		r.PreviousOrders[i] = strings.TrimSpace(id)
	}
}

type QueryRequest struct {
	Query   string         `json:"query" validate:"required"`
	Context map[string]any `json:"context"`
}

func (r *QueryRequest) normalize() {
	r.Query = strings.TrimSpace(r.Query)
}

type ChatRequest struct {
	Message        string `json:"message" validate:"required"`
	ConversationID string `json:"conversation_id" validate:"omitempty,max=128"`
}

func (r *ChatRequest) normalize() {
	r.Message = strings.TrimSpace(r.Message)
	r.ConversationID = strings.TrimSpace(r.ConversationID)
}

// describeValidation turns validator errors into one readable line naming the
// offending JSON fields.
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return errors.New(strings.Join(parts, "; "))
}

// jsonTagName reports fields by their JSON name in validation errors.
func jsonTagName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

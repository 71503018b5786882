package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order is a stored purchase. Only the product ids feed recommendation prompts.
type Order struct {
	ID        uuid.UUID
	UserEmail string
	ProductID string
	Qty       int
	CreatedAt time.Time
}

package domain

import "time"

type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

type ChatTurn struct {
	Role   ChatRole  `json:"role"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

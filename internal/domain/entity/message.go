package entity

import "time"

type Message struct {
	ID          string    `json:"id"`
	TempID      string    `json:"temp_id,omitempty"`
	ChatID      string    `json:"chat_id"`
	SenderID    string    `json:"sender_id"`
	SenderName  string    `json:"sender_name"`
	Content     string    `json:"content"`
	MessageType string    `json:"message_type"` // "text", "image", "system"
	Status      string    `json:"status"`       // "sent", "delivered", "read"
	CreatedAt   time.Time `json:"created_at"`
}

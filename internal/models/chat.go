package models

import "time"

// Chat is a conversation thread between exactly two participants.
// Lookup is order-insensitive: at most one chat exists per unordered pair.
type Chat struct {
	ID           int64     `json:"id"`
	Participants []int64   `json:"participants"`
	LastMessage  string    `json:"lastMessage"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Message belongs to exactly one chat. ReadBy is append-only and deduplicated.
type Message struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chatId"`
	SenderID  int64     `json:"sender"`
	Content   string    `json:"content"`
	ReadBy    []int64   `json:"readBy"`
	CreatedAt time.Time `json:"createdAt"`
}

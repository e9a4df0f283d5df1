package models

import "time"

type Notification struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Transaction is a ledger entry tied to a booking. Each affected party gets
// its own entry; entries are never merged.
type Transaction struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	BookingID   int64     `json:"bookingId"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Status      string    `json:"status"` // pending, paid
	CreatedAt   time.Time `json:"createdAt"`
}

type Account struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

package models

import "time"

type Booking struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	OwnerID        int64     `json:"owner_id"`
	TrailerID      int64     `json:"trailerId"`
	StartDate      string    `json:"startDate"`
	EndDate        string    `json:"endDate"`
	Price          float64   `json:"price"`
	TotalPaid      float64   `json:"total_paid"`
	Status         string    `json:"status"` // pending, accepted, rejected, cancelled, paid, completed
	Message        string    `json:"message"`
	Notes          string    `json:"notes"`
	ContractSigned bool      `json:"contractSigned"`
	ReturnStatus   string    `json:"returnStatus"` // pending, returned, disputed
	FinalTotal     *float64  `json:"finalTotal,omitempty"`
	StripeSession  string    `json:"stripeSessionId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Trailer struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Title       string    `json:"title"`
	City        string    `json:"city"`
	PricePerDay float64   `json:"price_per_day"`
	CreatedAt   time.Time `json:"created_at"`
}

package models

const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
	StatusPaid      = "paid"
	StatusCompleted = "completed"
)

const (
	ReturnStatusPending  = "pending"
	ReturnStatusReturned = "returned"
	ReturnStatusDisputed = "disputed"
)

const (
	TransactionPending = "pending"
	TransactionPaid    = "paid"
)

const (
	// TypingTTL lifetime of a typing indicator key
	TypingTTL = 10 // seconds

	// SocketRateLimitEvents number of socket events per window
	SocketRateLimitEvents = 60

	// SocketRateLimitWindow socket event rate limit window
	SocketRateLimitWindow = 60 // 1 minute in seconds

	// WorkerQueueSize size of the in-memory worker queue
	WorkerQueueSize = 128
)

package handlers

const (
	ErrInvalidJSON         = "Invalid request body"
	ErrInvalidID           = "Invalid id"
	ErrTooManyRequests     = "Too many requests"
	ErrNotFound            = "Not found"
	ErrConflict            = "Conflicting change"
	ErrUnprocessable       = "Contractor cannot be invited"
	ErrServiceUnavailable  = "Service temporarily unavailable"
	ErrInternalServerError = "Internal server error"

	maxBodyBytes = 1 << 20
)

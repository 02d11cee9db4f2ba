package scanning

import "context"

// ReceiptData contains the fields extracted from one receipt document.
// Date is a date-only string as returned by the provider (any time-of-day
// suffix stripped); Price is nil when the provider value could not be
// coerced to a number.
type ReceiptData struct {
	Date    string `json:"date"`
	Service string `json:"service"`
	Detail  string `json:"detail"`
	Price   *int   `json:"price"`
}

// Scanner defines the interface for receipt extraction providers.
type Scanner interface {
	// Extract analyzes a normalized PNG receipt image and returns the
	// structured fields, or an error when nothing usable came back.
	Extract(ctx context.Context, pngData []byte) (*ReceiptData, error)
	// Close closes the scanner and releases resources
	Close() error
}

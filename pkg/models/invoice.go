package models

import "time"

type Invoice struct {
	// Core identifiers
	ID       string // Unique invoice identifier
	Number   string // Human-readable invoice number printed on the work order
	ClientID string // Client the invoice was issued to

	// Vehicle the service was performed on (optional)
	VehiclePlate string

	// Dates
	IssueDate time.Time  // Date invoice was issued
	DueDate   *time.Time // Explicit due date (nil = issue date + configured terms)

	// Amounts
	Items []LineItem // Services and parts billed
	Total float64    // Gross amount billed (>= 0)

	// Payments in the order they were entered, which is not necessarily date order
	Payments []InvoicePayment

	// Cancelled is set by the invoicing screen when the invoice is voided ("Anulada")
	Cancelled bool

	// Optional metadata
	Notes     string
	CreatedAt time.Time
}

// LineItem is a single service or part billed on an invoice
type LineItem struct {
	Description string
	Quantity    float64
	UnitPrice   float64
}

// Amount returns the line total
func (li LineItem) Amount() float64 {
	return li.Quantity * li.UnitPrice
}

// InvoicePayment is one payment registered against an invoice. It is owned by
// its invoice and never edited after creation.
type InvoicePayment struct {
	ID            string
	Amount        float64   // Always > 0
	Method        string    // One of the configured payment methods
	Date          time.Time // When the payment was received
	ReceiptNumber string    // "none" when no receipt was issued
}

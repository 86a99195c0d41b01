package models

import "time"

// Expense is an operating cost of the shop (rent, utilities, tools...)
type Expense struct {
	ID          string
	Description string
	Category    string
	Amount      float64
	Date        time.Time
	SupplierID  string // optional
}

// Purchase is a parts/stock purchase from a supplier
type Purchase struct {
	ID          string
	SupplierID  string
	Description string
	Amount      float64
	Date        time.Time
}

// SalaryAdvance is money advanced to an employee against payroll
type SalaryAdvance struct {
	ID         string
	EmployeeID string
	Amount     float64
	Date       time.Time
	Note       string
}

// ExtraReceipt is income not tied to an invoice (scrap sale, tips, rentals...)
type ExtraReceipt struct {
	ID          string
	Description string
	Amount      float64
	Date        time.Time
	Method      string
}

// Occurrence is an informational log entry (vehicle arrived, client called...)
type Occurrence struct {
	ID           string
	Title        string
	Description  string
	VehiclePlate string
	CreatedAt    time.Time
}

type Client struct {
	ID    string
	Name  string
	Phone string
	Email string
}

type Employee struct {
	ID   string
	Name string
	Role string
}

type Supplier struct {
	ID   string
	Name string
}

// Dataset is the full set of records supplied by a data source. Every report
// is derived from it; nothing in this module writes back into it.
type Dataset struct {
	Invoices       []Invoice
	Expenses       []Expense
	Purchases      []Purchase
	SalaryAdvances []SalaryAdvance
	ExtraReceipts  []ExtraReceipt
	Occurrences    []Occurrence
	Clients        []Client
	Employees      []Employee
	Suppliers      []Supplier

	// PaymentMethods is the configured list offered when registering payments
	PaymentMethods []string
}

// FindInvoice returns the invoice with the given id or number
func (d *Dataset) FindInvoice(idOrNumber string) (*Invoice, bool) {
	for i := range d.Invoices {
		if d.Invoices[i].ID == idOrNumber || d.Invoices[i].Number == idOrNumber {
			return &d.Invoices[i], true
		}
	}
	return nil, false
}

package dataset

// Snapshot rows as they appear in the data file. Amounts are left untyped so
// both numbers (1234.5) and typed text ("R$ 1.234,50") decode; dates are
// strings parsed by parseDate.

type snapshot struct {
	PaymentMethods []string           `yaml:"payment_methods"`
	Clients        []rawClient        `yaml:"clients"`
	Employees      []rawEmployee      `yaml:"employees"`
	Suppliers      []rawSupplier      `yaml:"suppliers"`
	Invoices       []rawInvoice       `yaml:"invoices"`
	Expenses       []rawExpense       `yaml:"expenses"`
	Purchases      []rawPurchase      `yaml:"purchases"`
	SalaryAdvances []rawSalaryAdvance `yaml:"salary_advances"`
	ExtraReceipts  []rawExtraReceipt  `yaml:"extra_receipts"`
	Occurrences    []rawOccurrence    `yaml:"occurrences"`
}

type rawClient struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Phone string `yaml:"phone"`
	Email string `yaml:"email"`
}

type rawEmployee struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Role string `yaml:"role"`
}

type rawSupplier struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type rawInvoice struct {
	ID           string       `yaml:"id"`
	Number       string       `yaml:"number"`
	ClientID     string       `yaml:"client_id"`
	VehiclePlate string       `yaml:"vehicle_plate"`
	IssueDate    string       `yaml:"issue_date"`
	DueDate      string       `yaml:"due_date"`
	Items        []rawItem    `yaml:"items"`
	Total        interface{}  `yaml:"total"`
	Payments     []rawPayment `yaml:"payments"`
	Status       string       `yaml:"status"`
	Cancelled    bool         `yaml:"cancelled"`
	Notes        string       `yaml:"notes"`
	CreatedAt    string       `yaml:"created_at"`
}

type rawItem struct {
	Description string      `yaml:"description"`
	Quantity    interface{} `yaml:"quantity"`
	UnitPrice   interface{} `yaml:"unit_price"`
}

type rawPayment struct {
	ID            string      `yaml:"id"`
	Amount        interface{} `yaml:"amount"`
	Method        string      `yaml:"method"`
	Date          string      `yaml:"date"`
	ReceiptNumber string      `yaml:"receipt_number"`
}

type rawExpense struct {
	ID          string      `yaml:"id"`
	Description string      `yaml:"description"`
	Category    string      `yaml:"category"`
	Amount      interface{} `yaml:"amount"`
	Date        string      `yaml:"date"`
	SupplierID  string      `yaml:"supplier_id"`
}

type rawPurchase struct {
	ID          string      `yaml:"id"`
	SupplierID  string      `yaml:"supplier_id"`
	Description string      `yaml:"description"`
	Amount      interface{} `yaml:"amount"`
	Date        string      `yaml:"date"`
}

type rawSalaryAdvance struct {
	ID         string      `yaml:"id"`
	EmployeeID string      `yaml:"employee_id"`
	Amount     interface{} `yaml:"amount"`
	Date       string      `yaml:"date"`
	Note       string      `yaml:"note"`
}

type rawExtraReceipt struct {
	ID          string      `yaml:"id"`
	Description string      `yaml:"description"`
	Amount      interface{} `yaml:"amount"`
	Date        string      `yaml:"date"`
	Method      string      `yaml:"method"`
}

type rawOccurrence struct {
	ID           string `yaml:"id"`
	Title        string `yaml:"title"`
	Description  string `yaml:"description"`
	VehiclePlate string `yaml:"vehicle_plate"`
	CreatedAt    string `yaml:"created_at"`
}

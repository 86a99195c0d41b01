package finance_test

import (
	"fmt"
	"time"

	"oficina/internal/finance"
	"oficina/pkg/models"
)

func ExampleCalculator_Compute() {
	now := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
	inv := models.Invoice{
		Total:     1000,
		IssueDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Payments:  []models.InvoicePayment{{Amount: 400}},
	}

	bal := finance.NewCalculator(now, finance.DefaultDueTermsDays).Compute(inv)
	fmt.Println(bal.Status, bal.TotalPaid, bal.Balance)
	// Output: Pago Parcialmente 400 600
}

func ExampleValidateBatch() {
	rows := []finance.PaymentRow{
		{Method: "Pix", Amount: "250,00"},
		{Amount: "0"},
	}

	res, err := finance.ValidateBatch(600, rows, finance.BatchOptions{Methods: []string{"Dinheiro"}})
	fmt.Println(err, res.TotalPaid, res.Remaining, res.Dropped)

	_, err = finance.ValidateBatch(600, []finance.PaymentRow{{Amount: "700"}}, finance.BatchOptions{})
	fmt.Println(err)
	// Output:
	// <nil> 250 350 1
	// exceeds-balance: total paid 700.00 exceeds balance 600.00 by 100.00
}

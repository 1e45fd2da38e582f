package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// InvoiceStatus is the payment status of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPaid    InvoiceStatus = "Paid"
	InvoiceStatusUnpaid  InvoiceStatus = "Unpaid"
	InvoiceStatusOverdue InvoiceStatus = "Overdue"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusPaid, InvoiceStatusUnpaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

// Invoice bills a client for an order. ClientID is the client's email.
// Amount is the VAT-inclusive total.
type Invoice struct {
	ID            string        `json:"id"`
	OrderID       string        `json:"order_id"`
	ClientID      string        `json:"client_id"`
	ClientName    string        `json:"client_name,omitempty"`
	InvoiceNumber string        `json:"invoice_number"`
	IssueDate     time.Time     `json:"issue_date"`
	DueDate       time.Time     `json:"due_date"`
	SubTotal      float64       `json:"sub_total"`
	TaxAmount     float64       `json:"tax_amount"`
	Amount        float64       `json:"amount"`
	Status        InvoiceStatus `json:"status"`
}

// NewInvoice creates an unpaid invoice for an order, applying the VAT rate
// (a percentage, e.g. 15 for 15%) on top of the subtotal. Due 30 days after
// issue.
func NewInvoice(order *Order, subTotal, vatRate float64, sequence int) *Invoice {
	tax := round2(subTotal * vatRate / 100)
	issue := time.Now().UTC()
	return &Invoice{
		ID:            uuid.NewString(),
		OrderID:       order.ID,
		ClientID:      order.Client.Email,
		ClientName:    order.Client.Name,
		InvoiceNumber: fmt.Sprintf("INV-%s-%04d", issue.Format("200601"), sequence),
		IssueDate:     issue,
		DueDate:       issue.AddDate(0, 0, 30),
		SubTotal:      round2(subTotal),
		TaxAmount:     tax,
		Amount:        round2(subTotal + tax),
		Status:        InvoiceStatusUnpaid,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// InvoiceFilter represents filters for listing invoices.
type InvoiceFilter struct {
	ClientID *string        `json:"client_id,omitempty"`
	OrderID  *string        `json:"order_id,omitempty"`
	Status   *InvoiceStatus `json:"status,omitempty"`
	Limit    int            `json:"limit"`
	Offset   int            `json:"offset"`
}

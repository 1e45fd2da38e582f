package domain

// PaymentGatewaySettings holds the toggle and credentials reference for one
// payment gateway. Gateway integration itself lives outside this service.
type PaymentGatewaySettings struct {
	Enabled    bool   `json:"enabled"`
	MerchantID string `json:"merchant_id,omitempty"`
	APIKey     string `json:"api_key,omitempty"`
}

// BillingSettings is the single-row billing configuration: VAT rate (a
// percentage), gateway settings, and the company details printed on invoices.
type BillingSettings struct {
	VATRate        float64                `json:"vat_rate"`
	PayFast        PaymentGatewaySettings `json:"payfast"`
	PayPal         PaymentGatewaySettings `json:"paypal"`
	CompanyName    string                 `json:"company_name,omitempty"`
	CompanyAddress string                 `json:"company_address,omitempty"`
	InvoiceFooter  string                 `json:"invoice_footer,omitempty"`
}

// DefaultBillingSettings returns the settings used before an admin has saved
// any configuration.
func DefaultBillingSettings() BillingSettings {
	return BillingSettings{
		VATRate: 15,
	}
}

package types

import "github.com/shopspring/decimal"

// BalanceSnapshot is the account balance as last reported by the server.
type BalanceSnapshot struct {
	Amount   decimal.Decimal `yaml:"amount" json:"amount"`
	Currency string          `yaml:"currency" json:"currency"`
}

// NewBalanceSnapshot creates a BalanceSnapshot from a float amount.
func NewBalanceSnapshot(amount float64, currency string) BalanceSnapshot {
	return BalanceSnapshot{
		Amount:   decimal.NewFromFloat(amount),
		Currency: currency,
	}
}

// String renders the balance as "900.00 USD".
func (b BalanceSnapshot) String() string {
	if b.Currency == "" {
		return b.Amount.StringFixed(2)
	}

	return b.Amount.StringFixed(2) + " " + b.Currency
}

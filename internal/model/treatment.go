package model

import "github.com/shopspring/decimal"

// Treatment is a billable catalog entry.
type Treatment struct {
	ID          uint64          `json:"id"`          // treatments.treatment_id
	Name        string          `json:"name"`        // treatments.name
	Description string          `json:"description"` // treatments.description
	DefaultFee  decimal.Decimal `json:"default_fee"` // treatments.default_fee DECIMAL(10,2)
}

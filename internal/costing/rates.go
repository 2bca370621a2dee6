package costing

import (
	"github.com/shopspring/decimal"

	"github.com/bidboard/bidboard-backend/pkg/config"
	pkgerrors "github.com/bidboard/bidboard-backend/pkg/errors"
)

// Rates holds the pricing rates applied when rolling up line item totals.
// LaborRate is dollars per labor hour. TaxRate is a fraction (0.0825 = 8.25%)
// applied to material cost only, never to labor.
type Rates struct {
	LaborRate decimal.Decimal
	TaxRate   decimal.Decimal
}

// RatesFromConfig parses the configured rate strings into decimals.
func RatesFromConfig(cfg config.CostingConfig) (Rates, error) {
	labor, err := cfg.LaborRateDecimal()
	if err != nil {
		return Rates{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid labor rate")
	}
	tax, err := cfg.TaxRateDecimal()
	if err != nil {
		return Rates{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tax rate")
	}
	if labor.IsNegative() || tax.IsNegative() {
		return Rates{}, pkgerrors.New(pkgerrors.CodeValidation, "rates must not be negative")
	}
	return Rates{LaborRate: labor, TaxRate: tax}, nil
}

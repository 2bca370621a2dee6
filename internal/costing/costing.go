// Package costing rolls line items up into door and bid totals.
//
// All arithmetic runs on decimals and rounding happens only in the
// display helpers, so intermediate sums never accumulate drift. Labor
// is never taxed: tax applies to parts and hardware only.
package costing

import (
	"github.com/shopspring/decimal"

	"github.com/bidboard/bidboard-backend/pkg/db/models"
)

// DoorTotals is the cost breakdown for a single door.
type DoorTotals struct {
	Parts      decimal.Decimal
	Hardware   decimal.Decimal
	LaborHours decimal.Decimal
	LaborCost  decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
}

// BidTotals is the cost breakdown across every door on a bid.
type BidTotals struct {
	Parts      decimal.Decimal
	Hardware   decimal.Decimal
	LaborHours decimal.Decimal
	LaborCost  decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
}

// LineItemTotal returns quantity*price + hardware. Labor is priced
// separately at the door level and excluded here.
func LineItemTotal(item models.LineItem) decimal.Decimal {
	qty := decimal.NewFromFloat(item.Quantity)
	price := decimal.NewFromFloat(item.Price)
	hardware := decimal.NewFromFloat(item.Hardware)
	return qty.Mul(price).Add(hardware)
}

// ComputeDoorTotals sums the door's line items and applies the labor
// and tax rates. Tax covers parts and hardware only.
func ComputeDoorTotals(door models.Door, rates Rates) DoorTotals {
	totals := DoorTotals{
		Parts:      decimal.Zero,
		Hardware:   decimal.Zero,
		LaborHours: decimal.Zero,
	}
	for _, item := range door.LineItems {
		qty := decimal.NewFromFloat(item.Quantity)
		price := decimal.NewFromFloat(item.Price)
		totals.Parts = totals.Parts.Add(qty.Mul(price))
		totals.Hardware = totals.Hardware.Add(decimal.NewFromFloat(item.Hardware))
		totals.LaborHours = totals.LaborHours.Add(decimal.NewFromFloat(item.LaborHours))
	}
	totals.LaborCost = totals.LaborHours.Mul(rates.LaborRate)
	totals.Tax = totals.Parts.Add(totals.Hardware).Mul(rates.TaxRate)
	totals.Total = totals.Parts.Add(totals.LaborCost).Add(totals.Hardware).Add(totals.Tax)
	return totals
}

// ComputeBidTotals aggregates door totals across the whole bid.
func ComputeBidTotals(bid models.Bid, rates Rates) BidTotals {
	totals := BidTotals{
		Parts:      decimal.Zero,
		Hardware:   decimal.Zero,
		LaborHours: decimal.Zero,
		LaborCost:  decimal.Zero,
		Tax:        decimal.Zero,
		Total:      decimal.Zero,
	}
	for _, door := range bid.Doors {
		dt := ComputeDoorTotals(door, rates)
		totals.Parts = totals.Parts.Add(dt.Parts)
		totals.Hardware = totals.Hardware.Add(dt.Hardware)
		totals.LaborHours = totals.LaborHours.Add(dt.LaborHours)
		totals.LaborCost = totals.LaborCost.Add(dt.LaborCost)
		totals.Tax = totals.Tax.Add(dt.Tax)
		totals.Total = totals.Total.Add(dt.Total)
	}
	return totals
}

// DisplayAmount rounds a monetary value to cents for presentation.
// Internal sums stay unrounded; only the rendered figure is truncated.
func DisplayAmount(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// DisplayString formats a monetary value with two decimal places.
func DisplayString(v decimal.Decimal) string {
	return v.StringFixed(2)
}

package costing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/bidboard/bidboard-backend/pkg/config"
	"github.com/bidboard/bidboard-backend/pkg/db/models"
)

func testRates(t *testing.T) Rates {
	t.Helper()
	rates, err := RatesFromConfig(config.CostingConfig{LaborRate: "75.00", TaxRate: "0.0825"})
	if err != nil {
		t.Fatalf("RatesFromConfig: %v", err)
	}
	return rates
}

func TestLineItemTotal(t *testing.T) {
	t.Parallel()

	item := models.LineItem{Quantity: 2, Price: 10, Hardware: 5}
	got := LineItemTotal(item)
	if !got.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("LineItemTotal = %s, want 25", got)
	}
}

func TestTaxExcludesLabor(t *testing.T) {
	t.Parallel()

	rates := testRates(t)

	lowLabor := models.Door{LineItems: []models.LineItem{
		{Quantity: 1, Price: 100, LaborHours: 0},
	}}
	highLabor := models.Door{LineItems: []models.LineItem{
		{Quantity: 1, Price: 100, LaborHours: 1000},
	}}

	a := ComputeDoorTotals(lowLabor, rates)
	b := ComputeDoorTotals(highLabor, rates)

	wantTax := decimal.NewFromInt(100).Mul(rates.TaxRate)
	if !a.Tax.Equal(wantTax) {
		t.Fatalf("tax = %s, want %s", a.Tax, wantTax)
	}
	if !a.Tax.Equal(b.Tax) {
		t.Fatalf("tax changed with labor magnitude: %s vs %s", a.Tax, b.Tax)
	}
}

func TestComputeDoorTotals(t *testing.T) {
	t.Parallel()

	rates := testRates(t)
	door := models.Door{LineItems: []models.LineItem{
		{Quantity: 2, Price: 10, LaborHours: 1.5, Hardware: 5},
		{Quantity: 1, Price: 200, LaborHours: 0.5, Hardware: 0},
	}}

	got := ComputeDoorTotals(door, rates)

	wantParts := decimal.NewFromInt(220)
	wantHardware := decimal.NewFromInt(5)
	wantLaborCost := decimal.NewFromInt(150) // 2.0h * 75.00
	wantTax := wantParts.Add(wantHardware).Mul(rates.TaxRate)
	wantTotal := wantParts.Add(wantLaborCost).Add(wantHardware).Add(wantTax)

	if !got.Parts.Equal(wantParts) {
		t.Fatalf("parts = %s, want %s", got.Parts, wantParts)
	}
	if !got.Hardware.Equal(wantHardware) {
		t.Fatalf("hardware = %s, want %s", got.Hardware, wantHardware)
	}
	if !got.LaborCost.Equal(wantLaborCost) {
		t.Fatalf("labor cost = %s, want %s", got.LaborCost, wantLaborCost)
	}
	if !got.Tax.Equal(wantTax) {
		t.Fatalf("tax = %s, want %s", got.Tax, wantTax)
	}
	if !got.Total.Equal(wantTotal) {
		t.Fatalf("total = %s, want %s", got.Total, wantTotal)
	}
}

func TestComputeBidTotalsSumsDoors(t *testing.T) {
	t.Parallel()

	rates := testRates(t)
	door := models.Door{LineItems: []models.LineItem{
		{Quantity: 3, Price: 40, LaborHours: 2, Hardware: 10},
	}}
	bid := models.Bid{Doors: []models.Door{door, door}}

	single := ComputeDoorTotals(door, rates)
	got := ComputeBidTotals(bid, rates)

	if !got.Total.Equal(single.Total.Mul(decimal.NewFromInt(2))) {
		t.Fatalf("bid total = %s, want %s", got.Total, single.Total.Mul(decimal.NewFromInt(2)))
	}
	if !got.LaborHours.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("labor hours = %s, want 4", got.LaborHours)
	}
}

func TestRatesFromConfigRejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, err := RatesFromConfig(config.CostingConfig{LaborRate: "abc", TaxRate: "0.08"}); err == nil {
		t.Fatal("expected error for invalid labor rate")
	}
	if _, err := RatesFromConfig(config.CostingConfig{LaborRate: "75", TaxRate: "-0.1"}); err == nil {
		t.Fatal("expected error for negative tax rate")
	}
}

func TestDisplayRounding(t *testing.T) {
	t.Parallel()

	v := decimal.RequireFromString("10.005")
	if got := DisplayString(v); got != "10.01" {
		t.Fatalf("DisplayString = %q, want %q", got, "10.01")
	}
	// The raw value is untouched; only the display form rounds.
	if !v.Equal(decimal.RequireFromString("10.005")) {
		t.Fatal("display rounding mutated the source value")
	}
}

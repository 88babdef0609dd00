package calculator

import (
	"errors"
	"math"
	"testing"

	"github.com/avivpaz10/importing-costs/internal/parser"
)

func params() ShipmentParameters {
	return ShipmentParameters{
		ContainerCost:      1000,
		ContainerVolume:    10,
		ImportTaxRate:      0.17,
		USDToLocalRate:     3.6,
		RMBToLocalRate:     0.5,
		LocalTransportCost: 900,
		UnloadingCost:      360,
		AdditionalFees:     180,
	}
}

func product(code string, qty, price, volume float64) parser.ProductRecord {
	return parser.ProductRecord{
		Code:        code,
		Quantity:    qty,
		UnitPrice:   price,
		TotalVolume: volume,
		Currency:    parser.CurrencyUSD,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.005
}

func TestAllocate_ProportionalShipping(t *testing.T) {
	t.Parallel()

	products := []parser.ProductRecord{
		product("A", 100, 2.5, 2.0),
		product("B", 50, 4.0, 3.0),
	}

	lines, _, err := Allocate(products, params())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("lines want=2 got=%d", len(lines))
	}

	if !almostEqual(lines[0].VolumeRatio, 0.2) || !almostEqual(lines[1].VolumeRatio, 0.3) {
		t.Fatalf("ratios want 0.2/0.3 got %v/%v", lines[0].VolumeRatio, lines[1].VolumeRatio)
	}
	if !almostEqual(lines[0].ShippingCost, 200) {
		t.Fatalf("shipping A want=200 got=%v", lines[0].ShippingCost)
	}
	if !almostEqual(lines[1].ShippingCost, 300) {
		t.Fatalf("shipping B want=300 got=%v", lines[1].ShippingCost)
	}
}

func TestAllocate_SingleProductConservation(t *testing.T) {
	t.Parallel()

	p := params()
	products := []parser.ProductRecord{product("A", 10, 1.0, p.ContainerVolume)}

	lines, _, err := Allocate(products, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(lines[0].ShippingCost, p.ContainerCost) {
		t.Fatalf("a product filling the container must carry the full container cost, got %v", lines[0].ShippingCost)
	}
}

func TestAllocate_PerUnitBreakdown(t *testing.T) {
	t.Parallel()

	// One product owning half the container volume.
	p := params()
	products := []parser.ProductRecord{
		product("A", 100, 2.0, 2.5),
		product("B", 0, 3.0, 2.5),
	}

	lines, _, err := Allocate(products, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a := lines[0]
	// shipping 500 USD over 100 units = 5 USD/unit; in local 18.0.
	// unit price 2.0 USD = 7.2 local. transport 450/100, unloading 180/100,
	// fees 90/100 => 4.5 + 1.8 + 0.9.
	wantFinal := 7.2 + 18.0 + 4.5 + 1.8 + 0.9
	if !almostEqual(a.FinalCostPerUnit, wantFinal) {
		t.Fatalf("final per unit want=%v got=%v", wantFinal, a.FinalCostPerUnit)
	}
	if !almostEqual(a.VATPerUnit, wantFinal*p.ImportTaxRate) {
		t.Fatalf("vat want=%v got=%v", wantFinal*p.ImportTaxRate, a.VATPerUnit)
	}
	if !almostEqual(a.FinalCostPerUnitWithVAT, wantFinal*(1+p.ImportTaxRate)) {
		t.Fatalf("final with vat want=%v got=%v", wantFinal*(1+p.ImportTaxRate), a.FinalCostPerUnitWithVAT)
	}

	// Zero quantity must not divide by zero: per-unit fields stay 0.
	b := lines[1]
	if b.ShippingCostPerUnit != 0 || b.FinalCostPerUnit != b.UnitPriceLocal {
		t.Fatalf("zero-quantity product got per-unit allocation: %+v", b)
	}
}

func TestAllocate_TotalsRow(t *testing.T) {
	t.Parallel()

	p := params()
	products := []parser.ProductRecord{
		product("A", 100, 2.5, 2.0),
		product("B", 50, 4.0, 3.0),
	}

	lines, totals, err := Allocate(products, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !totals.IsTotal {
		t.Fatalf("totals row not flagged")
	}
	if totals.Quantity != 150 {
		t.Fatalf("totals quantity want=150 got=%v", totals.Quantity)
	}
	if !almostEqual(totals.ShippingCost, lines[0].ShippingCost+lines[1].ShippingCost) {
		t.Fatalf("totals shipping mismatch: %v", totals.ShippingCost)
	}
	if totals.FinalCostPerUnit != 0 || totals.FinalCostPerUnitWithVAT != 0 {
		t.Fatalf("per-unit fields must be zero on the totals row")
	}

	// The totals row reports the raw transport and unloading overhead once
	// more on top of the allocated per-product sums.
	sumLineTotals := 0.0
	for _, l := range lines {
		sumLineTotals += l.TotalCost
	}
	want := sumLineTotals + p.LocalTransportCost + p.UnloadingCost
	if !almostEqual(totals.TotalCost, want) {
		t.Fatalf("totals cost want=%v got=%v", want, totals.TotalCost)
	}
}

func TestAllocate_VolumeExceedsContainer(t *testing.T) {
	t.Parallel()

	products := []parser.ProductRecord{product("A", 10, 1.0, 11.0)}

	lines, _, err := Allocate(products, params())
	if !errors.Is(err, ErrInvalidShipment) {
		t.Fatalf("want ErrInvalidShipment got %v", err)
	}
	if lines != nil {
		t.Fatalf("no lines expected on failure")
	}
}

func TestAllocate_ZeroTotalVolume(t *testing.T) {
	t.Parallel()

	products := []parser.ProductRecord{product("A", 10, 1.0, 0)}

	if _, _, err := Allocate(products, params()); !errors.Is(err, ErrInvalidShipment) {
		t.Fatalf("want ErrInvalidShipment got %v", err)
	}
}

func TestAllocate_MissingRMBRate(t *testing.T) {
	t.Parallel()

	p := params()
	p.RMBToLocalRate = 0

	rmb := product("A", 10, 1.0, 2.0)
	rmb.Currency = parser.CurrencyRMB

	if _, _, err := Allocate([]parser.ProductRecord{rmb}, p); !errors.Is(err, ErrMissingExchangeRate) {
		t.Fatalf("want ErrMissingExchangeRate got %v", err)
	}
}

func TestAllocate_RMBRateApplied(t *testing.T) {
	t.Parallel()

	p := params()
	rmb := product("A", 10, 100.0, p.ContainerVolume)
	rmb.Currency = parser.CurrencyRMB

	lines, _, err := Allocate([]parser.ProductRecord{rmb}, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(lines[0].UnitPriceLocal, 100.0*p.RMBToLocalRate) {
		t.Fatalf("unit price local want=%v got=%v", 100.0*p.RMBToLocalRate, lines[0].UnitPriceLocal)
	}
}

func TestAllocate_RoundingAtEmission(t *testing.T) {
	t.Parallel()

	p := ShipmentParameters{
		ContainerCost:   1000,
		ContainerVolume: 3,
		USDToLocalRate:  1,
	}
	products := []parser.ProductRecord{
		product("A", 3, 1.0, 1.0),
		product("B", 3, 1.0, 1.0),
		product("C", 3, 1.0, 1.0),
	}

	lines, _, err := Allocate(products, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 1000/3 = 333.333..., emitted with 2 decimals.
	if lines[0].ShippingCost != 333.33 {
		t.Fatalf("shipping want=333.33 got=%v", lines[0].ShippingCost)
	}
}

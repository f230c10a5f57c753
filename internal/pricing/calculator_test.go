package pricing

import (
	"testing"

	"github.com/google/uuid"

	"github.com/minhtrandev/shopora-backend/pkg/enums"
	"github.com/minhtrandev/shopora-backend/pkg/errors"
)

func TestUnitPriceAfterPromotions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		list int64
		pcts []int
		want int64
	}{
		{name: "no promos", list: 200000, pcts: nil, want: 200000},
		{name: "single promo", list: 200000, pcts: []int{10}, want: 180000},
		{name: "compound promos", list: 200000, pcts: []int{10, 10}, want: 162000},
		{name: "rounds to nearest thousand", list: 19900, pcts: []int{10}, want: 18000},
		{name: "rounds half up", list: 25000, pcts: []int{10}, want: 23000},
	}

	for _, tt := range tests {
		if got := UnitPriceAfterPromotions(tt.list, tt.pcts); got != tt.want {
			t.Fatalf("%s: expected %d, got %d", tt.name, tt.want, got)
		}
	}
}

func TestComputeCategoryVoucherUsesPostPromotionPrice(t *testing.T) {
	t.Parallel()

	variantID := uuid.New()
	lines := []Line{{
		VariantID:     variantID,
		ProductID:     uuid.New(),
		Quantity:      1,
		ListPrice:     200000,
		PromoPercents: []int{10},
	}}
	voucher := VoucherRule{
		ID:               uuid.New(),
		Type:             enums.VoucherTypeCategoryScoped,
		Percent:          5,
		AppliesToVariant: map[uuid.UUID]bool{variantID: true},
	}

	quote, err := Compute(lines, 30000, []VoucherRule{voucher})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if quote.Lines[0].UnitPrice != 180000 {
		t.Fatalf("expected post-promotion unit price 180000, got %d", quote.Lines[0].UnitPrice)
	}
	if quote.DiscountTotal != 9000 {
		t.Fatalf("expected category discount 9000, got %d", quote.DiscountTotal)
	}
	if got := quote.VoucherDiscounts[0].LineShares[variantID]; got != 9000 {
		t.Fatalf("expected line share 9000, got %d", got)
	}
	if quote.Total != 180000+30000-9000 {
		t.Fatalf("unexpected total %d", quote.Total)
	}
}

func TestComputeBillWideUsesPrePromotionSubtotal(t *testing.T) {
	t.Parallel()

	lines := []Line{{
		VariantID:     uuid.New(),
		ProductID:     uuid.New(),
		Quantity:      2,
		ListPrice:     100000,
		PromoPercents: []int{10},
	}}
	voucher := VoucherRule{ID: uuid.New(), Type: enums.VoucherTypeBillWide, Percent: 10}

	quote, err := Compute(lines, 0, []VoucherRule{voucher})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	// 10% of the 200000 list subtotal, not of the discounted 180000.
	if quote.DiscountTotal != 20000 {
		t.Fatalf("expected bill-wide discount 20000, got %d", quote.DiscountTotal)
	}
	if quote.Subtotal != 180000 {
		t.Fatalf("expected post-promotion subtotal 180000, got %d", quote.Subtotal)
	}
}

func TestComputeShippingVoucher(t *testing.T) {
	t.Parallel()

	lines := []Line{{VariantID: uuid.New(), ProductID: uuid.New(), Quantity: 1, ListPrice: 50000}}
	voucher := VoucherRule{ID: uuid.New(), Type: enums.VoucherTypeShippingFee, Percent: 50}

	quote, err := Compute(lines, 30000, []VoucherRule{voucher})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if quote.DiscountTotal != 15000 {
		t.Fatalf("expected shipping discount 15000, got %d", quote.DiscountTotal)
	}
	if quote.Total != 50000+30000-15000 {
		t.Fatalf("unexpected total %d", quote.Total)
	}
}

func TestComputeRejectsTwoVouchersOfSameClass(t *testing.T) {
	t.Parallel()

	lines := []Line{{VariantID: uuid.New(), ProductID: uuid.New(), Quantity: 1, ListPrice: 50000}}
	vouchers := []VoucherRule{
		{ID: uuid.New(), Type: enums.VoucherTypeBillWide, Percent: 10},
		{ID: uuid.New(), Type: enums.VoucherTypeBillWide, Percent: 5},
	}

	_, err := Compute(lines, 0, vouchers)
	if typed := errors.As(err); typed == nil || typed.Code() != errors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestComputeAllowsOneVoucherPerClass(t *testing.T) {
	t.Parallel()

	variantID := uuid.New()
	lines := []Line{{VariantID: variantID, ProductID: uuid.New(), Quantity: 1, ListPrice: 100000}}
	vouchers := []VoucherRule{
		{ID: uuid.New(), Type: enums.VoucherTypeCategoryScoped, Percent: 5, AppliesToVariant: map[uuid.UUID]bool{variantID: true}},
		{ID: uuid.New(), Type: enums.VoucherTypeShippingFee, Percent: 100},
		{ID: uuid.New(), Type: enums.VoucherTypeBillWide, Percent: 10},
	}

	quote, err := Compute(lines, 20000, vouchers)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if len(quote.VoucherDiscounts) != 3 {
		t.Fatalf("expected 3 voucher discounts, got %d", len(quote.VoucherDiscounts))
	}
	// Fixed application order: bill-wide, shipping, category.
	if quote.VoucherDiscounts[0].Type != enums.VoucherTypeBillWide ||
		quote.VoucherDiscounts[1].Type != enums.VoucherTypeShippingFee ||
		quote.VoucherDiscounts[2].Type != enums.VoucherTypeCategoryScoped {
		t.Fatalf("vouchers applied out of order: %+v", quote.VoucherDiscounts)
	}
}

func TestComputeFloorsTotalAtZero(t *testing.T) {
	t.Parallel()

	lines := []Line{{VariantID: uuid.New(), ProductID: uuid.New(), Quantity: 1, ListPrice: 10000}}
	vouchers := []VoucherRule{
		{ID: uuid.New(), Type: enums.VoucherTypeBillWide, Percent: 100},
		{ID: uuid.New(), Type: enums.VoucherTypeShippingFee, Percent: 100},
	}

	quote, err := Compute(lines, 5000, vouchers)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if quote.Total != 0 {
		t.Fatalf("expected floored total 0, got %d", quote.Total)
	}
}

func TestComputeValidation(t *testing.T) {
	t.Parallel()

	if _, err := Compute(nil, 0, nil); errors.As(err) == nil {
		t.Fatalf("expected error for empty lines, got %v", err)
	}

	lines := []Line{{VariantID: uuid.New(), ProductID: uuid.New(), Quantity: 0, ListPrice: 1000}}
	if _, err := Compute(lines, 0, nil); errors.As(err) == nil {
		t.Fatalf("expected error for zero quantity, got %v", err)
	}
}

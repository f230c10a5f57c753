package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minhtrandev/shopora-backend/pkg/enums"
	"github.com/minhtrandev/shopora-backend/pkg/errors"
)

// Line is one orderable line fed into the calculator. PromoPercents holds the
// percent values of every promotion active for the line's product.
type Line struct {
	VariantID     uuid.UUID
	ProductID     uuid.UUID
	Quantity      int
	ListPrice     int64
	PromoPercents []int
}

// VoucherRule is a voucher reduced to what the calculator needs. For
// category-scoped vouchers AppliesToVariant holds the precomputed set of
// matching variant ids.
type VoucherRule struct {
	ID               uuid.UUID
	Type             enums.VoucherType
	Percent          int
	AppliesToVariant map[uuid.UUID]bool
}

// QuotedLine is a line after promotions applied.
type QuotedLine struct {
	VariantID uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	ListPrice int64
	UnitPrice int64
	LineTotal int64
}

// VoucherDiscount is the computed amount for one redeemed voucher. LineShares
// is populated for category-scoped vouchers only.
type VoucherDiscount struct {
	VoucherID  uuid.UUID
	Type       enums.VoucherType
	Amount     int64
	LineShares map[uuid.UUID]int64
}

// Quote is the full pricing breakdown for a prospective order.
type Quote struct {
	Lines            []QuotedLine
	ListSubtotal     int64
	Subtotal         int64
	ShippingCost     int64
	VoucherDiscounts []VoucherDiscount
	DiscountTotal    int64
	Total            int64
}

var thousand = decimal.NewFromInt(1000)

// roundToThousand rounds to the nearest multiple of 1000, halves away from zero.
func roundToThousand(d decimal.Decimal) int64 {
	return d.Div(thousand).Round(0).Mul(thousand).IntPart()
}

func percentOf(amount decimal.Decimal, percent int) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(int64(percent))).Div(decimal.NewFromInt(100))
}

// UnitPriceAfterPromotions compounds every promotion percent onto the list
// price and rounds the result to the nearest thousand.
func UnitPriceAfterPromotions(listPrice int64, promoPercents []int) int64 {
	price := decimal.NewFromInt(listPrice)
	for _, pct := range promoPercents {
		price = price.Sub(percentOf(price, pct))
	}
	return roundToThousand(price)
}

// Compute prices the given lines and applies vouchers in a fixed rule order:
// bill-wide first, then shipping fee, then category-scoped. At most one
// voucher of each type may be supplied.
func Compute(lines []Line, shippingCost int64, vouchers []VoucherRule) (Quote, error) {
	if len(lines) == 0 {
		return Quote{}, errors.New(errors.CodeValidation, "no lines to price")
	}
	if err := checkVoucherExclusivity(vouchers); err != nil {
		return Quote{}, err
	}

	quote := Quote{ShippingCost: shippingCost}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return Quote{}, errors.New(errors.CodeValidation, "line quantity must be positive")
		}
		unit := UnitPriceAfterPromotions(line.ListPrice, line.PromoPercents)
		quoted := QuotedLine{
			VariantID: line.VariantID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			ListPrice: line.ListPrice,
			UnitPrice: unit,
			LineTotal: unit * int64(line.Quantity),
		}
		quote.Lines = append(quote.Lines, quoted)
		quote.ListSubtotal += line.ListPrice * int64(line.Quantity)
		quote.Subtotal += quoted.LineTotal
	}

	ordered := orderVouchers(vouchers)
	for _, rule := range ordered {
		disc := applyVoucher(rule, quote)
		quote.VoucherDiscounts = append(quote.VoucherDiscounts, disc)
		quote.DiscountTotal += disc.Amount
	}

	total := quote.Subtotal + quote.ShippingCost - quote.DiscountTotal
	if total < 0 {
		total = 0
	}
	quote.Total = total
	return quote, nil
}

func checkVoucherExclusivity(vouchers []VoucherRule) error {
	seen := map[enums.VoucherType]bool{}
	for _, v := range vouchers {
		if !v.Type.IsValid() {
			return errors.New(errors.CodeValidation, "unknown voucher type")
		}
		if seen[v.Type] {
			return errors.New(errors.CodeValidation, "only one voucher per discount class is allowed")
		}
		seen[v.Type] = true
	}
	return nil
}

// orderVouchers pins the application order regardless of input order.
func orderVouchers(vouchers []VoucherRule) []VoucherRule {
	rank := map[enums.VoucherType]int{
		enums.VoucherTypeBillWide:       0,
		enums.VoucherTypeShippingFee:    1,
		enums.VoucherTypeCategoryScoped: 2,
	}
	ordered := make([]VoucherRule, len(vouchers))
	copy(ordered, vouchers)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && rank[ordered[j].Type] < rank[ordered[j-1].Type]; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	return ordered
}

func applyVoucher(rule VoucherRule, quote Quote) VoucherDiscount {
	disc := VoucherDiscount{VoucherID: rule.ID, Type: rule.Type}
	switch rule.Type {
	case enums.VoucherTypeBillWide:
		// Bill-wide percent applies to the pre-promotion subtotal.
		disc.Amount = percentOf(decimal.NewFromInt(quote.ListSubtotal), rule.Percent).Round(0).IntPart()
	case enums.VoucherTypeShippingFee:
		disc.Amount = percentOf(decimal.NewFromInt(quote.ShippingCost), rule.Percent).Round(0).IntPart()
	case enums.VoucherTypeCategoryScoped:
		disc.LineShares = map[uuid.UUID]int64{}
		for _, line := range quote.Lines {
			if !rule.AppliesToVariant[line.VariantID] {
				continue
			}
			share := percentOf(decimal.NewFromInt(line.LineTotal), rule.Percent).Round(0).IntPart()
			if share == 0 {
				continue
			}
			disc.LineShares[line.VariantID] = share
			disc.Amount += share
		}
	}
	return disc
}

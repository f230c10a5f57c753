package enums

import "fmt"

// VoucherType selects the discount rule a voucher applies.
type VoucherType string

const (
	VoucherTypeBillWide       VoucherType = "bill_wide"
	VoucherTypeShippingFee    VoucherType = "shipping_fee"
	VoucherTypeCategoryScoped VoucherType = "category_scoped"
)

var validVoucherTypes = []VoucherType{
	VoucherTypeBillWide,
	VoucherTypeShippingFee,
	VoucherTypeCategoryScoped,
}

// String implements fmt.Stringer.
func (v VoucherType) String() string {
	return string(v)
}

// IsValid reports whether the value is known.
func (v VoucherType) IsValid() bool {
	for _, candidate := range validVoucherTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVoucherType converts raw input into a VoucherType.
func ParseVoucherType(value string) (VoucherType, error) {
	for _, candidate := range validVoucherTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid voucher type %q", value)
}

// VoucherStatus is the administrative state of a voucher.
type VoucherStatus string

const (
	VoucherStatusActive   VoucherStatus = "active"
	VoucherStatusDisabled VoucherStatus = "disabled"
)

var validVoucherStatuses = []VoucherStatus{
	VoucherStatusActive,
	VoucherStatusDisabled,
}

// IsValid reports whether the value is known.
func (v VoucherStatus) IsValid() bool {
	for _, candidate := range validVoucherStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVoucherStatus converts raw input into a VoucherStatus.
func ParseVoucherStatus(value string) (VoucherStatus, error) {
	for _, candidate := range validVoucherStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid voucher status %q", value)
}

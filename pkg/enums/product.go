package enums

import "fmt"

// ProductStatus is the storefront visibility state of a product.
type ProductStatus string

const (
	ProductStatusActive     ProductStatus = "active"
	ProductStatusHidden     ProductStatus = "hidden"
	ProductStatusOutOfStock ProductStatus = "out_of_stock"
)

var validProductStatuses = []ProductStatus{
	ProductStatusActive,
	ProductStatusHidden,
	ProductStatusOutOfStock,
}

// String implements fmt.Stringer.
func (p ProductStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is known.
func (p ProductStatus) IsValid() bool {
	for _, candidate := range validProductStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// Sellable reports whether lines referencing the product may be ordered.
func (p ProductStatus) Sellable() bool {
	return p == ProductStatusActive || p == ProductStatusOutOfStock
}

// ParseProductStatus converts raw input into a ProductStatus.
func ParseProductStatus(value string) (ProductStatus, error) {
	for _, candidate := range validProductStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product status %q", value)
}

// VariantStatus is the visibility state of a single product variant.
type VariantStatus string

const (
	VariantStatusActive VariantStatus = "active"
	VariantStatusHidden VariantStatus = "hidden"
)

var validVariantStatuses = []VariantStatus{
	VariantStatusActive,
	VariantStatusHidden,
}

// IsValid reports whether the value is known.
func (v VariantStatus) IsValid() bool {
	for _, candidate := range validVariantStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVariantStatus converts raw input into a VariantStatus.
func ParseVariantStatus(value string) (VariantStatus, error) {
	for _, candidate := range validVariantStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid variant status %q", value)
}

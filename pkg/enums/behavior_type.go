package enums

import "fmt"

// BehaviorType labels recorded shopper behavior events.
type BehaviorType string

const (
	BehaviorTypeView     BehaviorType = "view"
	BehaviorTypeCartAdd  BehaviorType = "cart_add"
	BehaviorTypePurchase BehaviorType = "purchase"
)

var validBehaviorTypes = []BehaviorType{
	BehaviorTypeView,
	BehaviorTypeCartAdd,
	BehaviorTypePurchase,
}

// String implements fmt.Stringer.
func (b BehaviorType) String() string {
	return string(b)
}

// IsValid reports whether the value is known.
func (b BehaviorType) IsValid() bool {
	for _, candidate := range validBehaviorTypes {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBehaviorType converts raw input into a BehaviorType.
func ParseBehaviorType(value string) (BehaviorType, error) {
	for _, candidate := range validBehaviorTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid behavior type %q", value)
}

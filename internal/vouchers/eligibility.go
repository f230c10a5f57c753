package vouchers

import (
	"fmt"
	"time"

	"github.com/minhtrandev/shopora-backend/pkg/db/models"
	"github.com/minhtrandev/shopora-backend/pkg/enums"
	"github.com/minhtrandev/shopora-backend/pkg/errors"
)

// CheckEligibility validates a voucher against the prospective order before
// any state changes. alreadyUsed comes from Repository.UsedByAccount.
func CheckEligibility(voucher *models.Voucher, alreadyUsed bool, subtotal int64, at time.Time) error {
	if voucher == nil {
		return errors.New(errors.CodeNotFound, "voucher not found")
	}
	if voucher.Status != enums.VoucherStatusActive {
		return errors.New(errors.CodeVoucherInvalid, fmt.Sprintf("voucher %s is disabled", voucher.Code))
	}
	if at.Before(voucher.StartDate) || at.After(voucher.EndDate) {
		return errors.New(errors.CodeVoucherInvalid, fmt.Sprintf("voucher %s is out of its redemption window", voucher.Code))
	}
	if voucher.Remaining <= 0 {
		return errors.New(errors.CodeVoucherInvalid, fmt.Sprintf("voucher %s is redeemed out", voucher.Code))
	}
	if subtotal < voucher.MinSubtotal {
		return errors.New(errors.CodeVoucherInvalid, fmt.Sprintf("order subtotal below the minimum for voucher %s", voucher.Code))
	}
	if alreadyUsed {
		return errors.New(errors.CodeVoucherInvalid, fmt.Sprintf("voucher %s was already used by this account", voucher.Code))
	}
	return nil
}

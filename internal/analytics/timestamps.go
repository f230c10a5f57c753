package analytics

import "time"

// RevenueTimestamp picks the moment an order's money counts as earned for the
// completion event. Settled bills use their payment time; unsettled ones fall
// back to the delivery invoice stamp, then to the completion time.
func RevenueTimestamp(paymentTime, invoiceTime *time.Time, completedAt time.Time) time.Time {
	if paymentTime != nil && !paymentTime.IsZero() {
		return paymentTime.UTC()
	}
	if invoiceTime != nil && !invoiceTime.IsZero() {
		return invoiceTime.UTC()
	}
	return completedAt.UTC()
}

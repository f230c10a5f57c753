package analytics

import (
	"testing"
	"time"
)

func TestRevenueTimestampPrefersSettlement(t *testing.T) {
	completedAt := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	paid := completedAt.Add(-72 * time.Hour)
	invoiced := completedAt.Add(-71 * time.Hour)

	got := RevenueTimestamp(&paid, &invoiced, completedAt)
	if !got.Equal(paid.UTC()) {
		t.Fatalf("expected payment time, got %v", got)
	}

	// An unsettled bill falls back to the delivery invoice stamp.
	got = RevenueTimestamp(nil, &invoiced, completedAt)
	if !got.Equal(invoiced.UTC()) {
		t.Fatalf("expected invoice time, got %v", got)
	}

	got = RevenueTimestamp(nil, nil, completedAt)
	if !got.Equal(completedAt.UTC()) {
		t.Fatalf("expected completion time, got %v", got)
	}
}

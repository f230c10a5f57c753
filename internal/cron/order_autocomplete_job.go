package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/minhtrandev/shopora-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type autoCompleter interface {
	AutoCompleteDelivered(ctx context.Context, now time.Time) (int, error)
}

// OrderAutoCompleteJobParams configure the delivered-order sweep.
type OrderAutoCompleteJobParams struct {
	Logger *logger.Logger
	Orders autoCompleter
}

// NewOrderAutoCompleteJob builds the job that promotes orders sitting in
// delivered past the confirmation window to completed.
func NewOrderAutoCompleteJob(params OrderAutoCompleteJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order service required")
	}
	return &orderAutoCompleteJob{
		logg:   params.Logger,
		orders: params.Orders,
		now:    time.Now,
	}, nil
}

type orderAutoCompleteJob struct {
	logg   *logger.Logger
	orders autoCompleter
	now    func() time.Time
}

func (j *orderAutoCompleteJob) Name() string { return "order-auto-complete" }

func (j *orderAutoCompleteJob) Run(ctx context.Context) error {
	completed, err := j.orders.AutoCompleteDelivered(ctx, j.now().UTC())
	logCtx := j.logg.WithFields(ctx, map[string]any{"completed": completed})
	if err != nil {
		// Partial progress still counts: each order ran in its own
		// transaction, so completed orders stay completed.
		j.logg.Error(logCtx, "order auto-complete sweep finished with errors", err)
		return fmt.Errorf("order auto-complete: %w", err)
	}
	j.logg.Info(logCtx, "order auto-complete sweep complete")
	return nil
}

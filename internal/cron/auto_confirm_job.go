package cron

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/uteshop/uteshop-backend/internal/orders"
	"github.com/uteshop/uteshop-backend/pkg/logger"
)

type orderConfirmer interface {
	AutoConfirm(ctx context.Context) ([]orders.AutoConfirmResult, error)
}

// AutoConfirmJobParams configure the stale-order sweep.
type AutoConfirmJobParams struct {
	Logger *logger.Logger
	Orders orderConfirmer
}

// NewAutoConfirmJob builds the job that confirms orders left in new past the
// instant cancellation window.
func NewAutoConfirmJob(params AutoConfirmJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order service required")
	}
	return &autoConfirmJob{
		logg:   params.Logger,
		orders: params.Orders,
	}, nil
}

type autoConfirmJob struct {
	logg   *logger.Logger
	orders orderConfirmer
}

func (j *autoConfirmJob) Name() string { return "order-auto-confirm" }

func (j *autoConfirmJob) Run(ctx context.Context) error {
	results, err := j.orders.AutoConfirm(ctx)
	if err != nil {
		return fmt.Errorf("auto-confirm sweep: %w", err)
	}

	confirmed := 0
	var errs []error
	for _, result := range results {
		if result.Success {
			confirmed++
			continue
		}
		errs = append(errs, fmt.Errorf("order %d: %s", result.OrderID, result.Error))
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"swept":     len(results),
		"confirmed": confirmed,
		"failed":    len(errs),
	})
	j.logg.Info(logCtx, "auto-confirm sweep complete")
	return multierr.Combine(errs...)
}

package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/propdesk/fundedpay/pkg/db/models"
	"github.com/propdesk/fundedpay/pkg/logger"
	"github.com/propdesk/fundedpay/pkg/metrics"
)

const (
	CryptoOrderExpiryJobName = "crypto-order-expiry"

	defaultExpiryBatchSize = 200
)

type expiredOrderReader interface {
	FindExpiredCryptoOrders(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
}

type orderExpirer interface {
	ExpireOrder(ctx context.Context, orderID uuid.UUID) (bool, error)
}

// CryptoOrderExpiryJobParams configure the crypto order expiry job.
type CryptoOrderExpiryJobParams struct {
	Logger    *logger.Logger
	Reader    expiredOrderReader
	Expirer   orderExpirer
	Metrics   *metrics.CronJobMetrics
	Grace     time.Duration
	BatchSize int
}

// NewCryptoOrderExpiryJob builds the job that expires pending crypto orders
// whose payment deadline passed more than Grace ago.
func NewCryptoOrderExpiryJob(params CryptoOrderExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reader == nil {
		return nil, fmt.Errorf("expired order reader required")
	}
	if params.Expirer == nil {
		return nil, fmt.Errorf("order expirer required")
	}
	if params.Grace < 0 {
		return nil, fmt.Errorf("grace must be non-negative")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultExpiryBatchSize
	}
	return &cryptoOrderExpiryJob{
		logg:    params.Logger,
		reader:  params.Reader,
		expirer: params.Expirer,
		metrics: params.Metrics,
		grace:   params.Grace,
		batch:   batch,
		now:     time.Now,
	}, nil
}

type cryptoOrderExpiryJob struct {
	logg    *logger.Logger
	reader  expiredOrderReader
	expirer orderExpirer
	metrics *metrics.CronJobMetrics
	grace   time.Duration
	batch   int
	now     func() time.Time
}

func (j *cryptoOrderExpiryJob) Name() string { return CryptoOrderExpiryJobName }

// Run expires one batch. A failing order does not stop the others; all
// failures are combined into the returned error.
func (j *cryptoOrderExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.grace)
	rows, err := j.reader.FindExpiredCryptoOrders(ctx, cutoff, j.batch)
	if err != nil {
		return fmt.Errorf("query expired crypto orders: %w", err)
	}

	var errs error
	expired := 0
	for _, order := range rows {
		changed, err := j.expirer.ExpireOrder(ctx, order.ID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("expire order %s: %w", order.ID, err))
			continue
		}
		if changed {
			expired++
		}
	}
	j.metrics.AddAffected(j.Name(), expired)

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates": len(rows),
		"expired":    expired,
		"cutoff":     cutoff.Format(time.RFC3339),
	})
	j.logg.Info(logCtx, "crypto order expiry loop complete")
	return errs
}

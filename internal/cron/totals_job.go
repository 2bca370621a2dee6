package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/bidboard/bidboard-backend/internal/bids"
	"github.com/bidboard/bidboard-backend/internal/costing"
	"github.com/bidboard/bidboard-backend/pkg/logger"
)

const (
	defaultTotalsWindow    = 25 * time.Hour
	defaultTotalsBatchSize = 100
)

// BidTotalsJobParams configure the totals reconcile job.
type BidTotalsJobParams struct {
	Logger    *logger.Logger
	DB        txRunner
	Repo      bidTotalsRepo
	Rates     costing.Rates
	Window    time.Duration
	BatchSize int
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type bidTotalsRepo interface {
	ListBidIDsUpdatedSince(ctx context.Context, since time.Time, limit int) ([]uuid.UUID, error)
	WithTx(tx *gorm.DB) bids.BidRepository
}

// NewBidTotalsJob constructs the job that repairs drift in the cached
// bid totals columns.
func NewBidTotalsJob(params BidTotalsJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("bid repository required")
	}
	window := params.Window
	if window <= 0 {
		window = defaultTotalsWindow
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultTotalsBatchSize
	}
	return &bidTotalsJob{
		logg:      params.Logger,
		db:        params.DB,
		repo:      params.Repo,
		rates:     params.Rates,
		window:    window,
		batchSize: batchSize,
		now:       time.Now,
	}, nil
}

type bidTotalsJob struct {
	logg      *logger.Logger
	db        txRunner
	repo      bidTotalsRepo
	rates     costing.Rates
	window    time.Duration
	batchSize int
	now       func() time.Time
}

func (j *bidTotalsJob) Name() string { return "bid-totals" }

// Run recomputes cached totals for every bid touched inside the window.
// One broken bid does not stop the rest; failures are aggregated.
func (j *bidTotalsJob) Run(ctx context.Context) error {
	since := j.now().UTC().Add(-j.window)
	ids, err := j.repo.ListBidIDsUpdatedSince(ctx, since, j.batchSize)
	if err != nil {
		return fmt.Errorf("list recently updated bids: %w", err)
	}

	var errs []error
	repaired := 0
	for _, bidID := range ids {
		changed, err := j.reconcileBid(ctx, bidID)
		if err != nil {
			errs = append(errs, fmt.Errorf("bid %s: %w", bidID, err))
			continue
		}
		if changed {
			repaired++
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"since":    since,
		"checked":  len(ids),
		"repaired": repaired,
		"failed":   len(errs),
	})
	j.logg.Info(logCtx, "bid totals reconcile complete")
	return multierr.Combine(errs...)
}

func (j *bidTotalsJob) reconcileBid(ctx context.Context, bidID uuid.UUID) (bool, error) {
	changed := false
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.repo.WithTx(tx)
		bid, err := repo.FindBid(ctx, bidID)
		if err != nil {
			return err
		}

		totals := costing.ComputeBidTotals(*bid, j.rates)
		parts := costing.DisplayAmount(totals.Parts)
		labor := costing.DisplayAmount(totals.LaborCost)
		hardware := costing.DisplayAmount(totals.Hardware)
		tax := costing.DisplayAmount(totals.Tax)
		grand := costing.DisplayAmount(totals.Total)

		if bid.PartsTotal.Equal(parts) &&
			bid.LaborTotal.Equal(labor) &&
			bid.HardwareTotal.Equal(hardware) &&
			bid.TaxTotal.Equal(tax) &&
			bid.GrandTotal.Equal(grand) {
			return nil
		}

		bid.PartsTotal = parts
		bid.LaborTotal = labor
		bid.HardwareTotal = hardware
		bid.TaxTotal = tax
		bid.GrandTotal = grand
		changed = true
		return repo.UpdateBidTotals(ctx, bid)
	})
	return changed, err
}

package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"payoutrecon/internal/config"
	"payoutrecon/internal/reconcile"
)

// OptionsFromConfig maps the application configuration to service options.
func OptionsFromConfig(cfg *config.AppConfig) (Options, error) {
	tol, err := decimal.NewFromString(cfg.Reconcile.Tolerance)
	if err != nil {
		return Options{}, fmt.Errorf("reconcile tolerance %q: %w", cfg.Reconcile.Tolerance, err)
	}
	if tol.IsNegative() {
		return Options{}, fmt.Errorf("reconcile tolerance %q: must not be negative", cfg.Reconcile.Tolerance)
	}
	return Options{
		ShopTimezone:       cfg.Reconcile.SalesTimezone,
		Tolerance:          tol,
		PayoutLookbackDays: cfg.Reconcile.PayoutLookbackDays,
		Filter: reconcile.DateFilter{
			Start:      cfg.Viewer.StartDate,
			MaxDays:    cfg.Viewer.DateRangeDays,
			MaxColumns: cfg.Viewer.MaxColumns,
			Reverse:    cfg.Viewer.Reverse,
		},
		PresignExpiry: time.Duration(cfg.MinIO.PresignExpiryMin) * time.Minute,
	}, nil
}

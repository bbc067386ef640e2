// Package service holds the reconciliation use cases shared by the HTTP API.
package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"payoutrecon/internal/model"
	"payoutrecon/internal/payout"
	"payoutrecon/internal/reconcile"
	"payoutrecon/internal/report"
	"payoutrecon/internal/repository"
	"payoutrecon/internal/storage"
)

var (
	ErrIDRequired      = errors.New("id is required")
	ErrNotFound        = errors.New("reconciliation run not found")
	ErrReaderNil       = errors.New("reader is nil")
	ErrInvalidTimezone = errors.New("invalid timezone")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidGrouping = errors.New("invalid grouping")
	ErrReportNotFound  = errors.New("report not found")
	ErrInvalidPayouts  = errors.New("invalid payout export")
)

const tracerName = "payoutrecon/internal/service"

// maxParallelUploads bounds concurrent report uploads of one run.
const maxParallelUploads = 4

// DailyRequest asks for a single-day reconciliation.
type DailyRequest struct {
	Day        string
	Timezone   string
	PayoutCSV  io.Reader
	PayoutFile string
}

// RangeRequest asks for a reconciliation of every day in the payout export.
type RangeRequest struct {
	Timezone   string
	GroupBy    string
	PayoutCSV  io.Reader
	PayoutFile string
}

// RunListResult is the service-level DTO for paginated runs.
type RunListResult struct {
	Items []model.Run `json:"data"`
	Total int         `json:"total"`
}

// ReconciliationService defines the reconciliation use cases.
type ReconciliationService interface {
	// RunDaily reconciles one day, persists the run and uploads its reports.
	RunDaily(ctx context.Context, req DailyRequest) (*model.Run, error)

	// RunRange reconciles the whole payout export span.
	RunRange(ctx context.Context, req RangeRequest) (*model.Run, error)

	// List returns runs using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*RunListResult, error)

	// Get returns a run with its reports.
	Get(ctx context.Context, id string) (*model.Run, error)

	// Days returns the daily summaries of a run.
	Days(ctx context.Context, id string) ([]model.DailySummary, error)

	// Mismatches analyses the mismatching days of a run.
	Mismatches(ctx context.Context, id string) (*model.MismatchAnalysis, error)

	// ReportURL returns a presigned download URL for one report of a run.
	ReportURL(ctx context.Context, id, kind string) (string, error)

	// Delete removes the report objects of a run, then the run.
	Delete(ctx context.Context, id string) error

	// AnalyzeRefunds compares refund sources for orders created between
	// start and end (YYYY-MM-DD, shop timezone).
	AnalyzeRefunds(ctx context.Context, start, end string) (*model.RefundSummary, error)
}

// Options tune a ReconciliationService.
type Options struct {
	ShopTimezone       string
	Tolerance          decimal.Decimal
	PayoutLookbackDays int
	Filter             reconcile.DateFilter
	PresignExpiry      time.Duration
}

type reconciliationService struct {
	fetcher reconcile.OrderFetcher
	engine  *reconcile.Engine
	store   storage.Storage
	repo    repository.RunRepository
	metrics *Metrics
	log     *zap.Logger
	opts    Options
	now     func() time.Time
}

// NewReconciliationService constructs a ReconciliationService. metrics and
// log may be nil.
func NewReconciliationService(fetcher reconcile.OrderFetcher, store storage.Storage, repo repository.RunRepository,
	metrics *Metrics, log *zap.Logger, opts Options) ReconciliationService {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.PresignExpiry <= 0 {
		opts.PresignExpiry = 15 * time.Minute
	}
	return &reconciliationService{
		fetcher: fetcher,
		engine:  reconcile.NewEngine(fetcher, opts.Tolerance, opts.PayoutLookbackDays),
		store:   store,
		repo:    repo,
		metrics: metrics,
		log:     log.With(zap.String("component", "reconciliation")),
		opts:    opts,
		now:     time.Now,
	}
}

func (s *reconciliationService) location(name string) (*time.Location, error) {
	loc, err := reconcile.LoadTimezone(name, s.opts.ShopTimezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimezone, err)
	}
	return loc, nil
}

func (s *reconciliationService) RunDaily(ctx context.Context, req DailyRequest) (*model.Run, error) {
	if req.PayoutCSV == nil {
		return nil, ErrReaderNil
	}
	loc, err := s.location(req.Timezone)
	if err != nil {
		return nil, err
	}
	day, err := reconcile.ParseDay(req.Day)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, req.Day)
	}
	exp, err := payout.Load(req.PayoutCSV)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayouts, err)
	}

	start := s.now()
	res, err := s.engine.Daily(ctx, day, loc, exp.Rows)
	if err != nil {
		s.metrics.runFinished(model.ModeDaily, model.RunFailed)
		return nil, err
	}
	arts, err := report.DailyArtifacts(res)
	if err != nil {
		s.metrics.runFinished(model.ModeDaily, model.RunFailed)
		return nil, err
	}

	days := []model.DailySummary{res.Summary}
	run := s.newRun(model.ModeDaily, model.GroupByOrderDate, loc, req.PayoutFile, days)
	run.TargetDate = day.String()
	run.StartDate, run.EndDate = day.String(), day.String()
	run.OrderCount = len(res.Rows)

	stored, err := s.persist(ctx, run, days, arts)
	if err != nil {
		return nil, err
	}
	s.metrics.observe(model.ModeDaily, s.now().Sub(start).Seconds(), len(res.Orders), run.MismatchCount)
	return stored, nil
}

func (s *reconciliationService) RunRange(ctx context.Context, req RangeRequest) (*model.Run, error) {
	if req.PayoutCSV == nil {
		return nil, ErrReaderNil
	}
	loc, err := s.location(req.Timezone)
	if err != nil {
		return nil, err
	}
	groupBy := req.GroupBy
	if groupBy == "" {
		groupBy = model.GroupByOrderDate
	}
	if groupBy != model.GroupByOrderDate && groupBy != model.GroupByPayoutDate {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGrouping, groupBy)
	}
	exp, err := payout.Load(req.PayoutCSV)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayouts, err)
	}

	start := s.now()
	res, err := s.engine.Range(ctx, loc, groupBy, exp.Rows)
	if err != nil {
		s.metrics.runFinished(model.ModeRange, model.RunFailed)
		return nil, err
	}
	arts, err := report.RangeArtifacts(res, s.opts.Filter)
	if err != nil {
		s.metrics.runFinished(model.ModeRange, model.RunFailed)
		return nil, err
	}

	run := s.newRun(model.ModeRange, groupBy, loc, req.PayoutFile, res.Summaries)
	run.StartDate, run.EndDate = res.Start.String(), res.End.String()
	run.OrderCount = len(res.Rows)

	stored, err := s.persist(ctx, run, res.Summaries, arts)
	if err != nil {
		return nil, err
	}
	s.metrics.observe(model.ModeRange, s.now().Sub(start).Seconds(), len(res.Orders), run.MismatchCount)
	return stored, nil
}

func (s *reconciliationService) newRun(mode, groupBy string, loc *time.Location, file string, days []model.DailySummary) *model.Run {
	run := &model.Run{
		ID:              uuid.New().String(),
		Mode:            mode,
		GroupBy:         groupBy,
		Timezone:        loc.String(),
		PayoutFile:      file,
		TotalDifference: decimal.Zero,
		Status:          model.RunCompleted,
		CreatedAt:       s.now().UTC(),
	}
	for _, d := range days {
		if d.Balance.Mismatch {
			run.MismatchCount++
		}
		run.TotalDifference = run.TotalDifference.Add(d.Balance.Difference)
	}
	return run
}

// persist stores the run and its days, then uploads the reports. A failure
// after the run row exists marks it failed instead of deleting it.
func (s *reconciliationService) persist(ctx context.Context, run *model.Run, days []model.DailySummary, arts []report.Artifact) (*model.Run, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "reconciliation.persist", trace.WithAttributes(
		attribute.String("run.id", run.ID),
		attribute.String("run.mode", run.Mode),
		attribute.Int("run.days", len(days)),
		attribute.Int("run.reports", len(arts)),
	))
	defer span.End()

	stored, err := s.repo.Create(ctx, run)
	if err != nil {
		s.metrics.runFinished(run.Mode, model.RunFailed)
		err = fmt.Errorf("db save failed: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "create run")
		return nil, err
	}
	if err := s.repo.SaveDays(ctx, run.ID, days); err != nil {
		span.SetStatus(codes.Error, "save days")
		return nil, s.fail(ctx, run, fmt.Errorf("save days: %w", err))
	}
	reports, err := s.upload(ctx, run.ID, arts)
	if err != nil {
		span.SetStatus(codes.Error, "upload reports")
		return nil, s.fail(ctx, run, err)
	}

	stored.Reports = reports
	s.metrics.runFinished(run.Mode, model.RunCompleted)
	s.log.Info("run_completed",
		zap.String("run_id", run.ID),
		zap.String("mode", run.Mode),
		zap.String("group_by", run.GroupBy),
		zap.Int("orders", run.OrderCount),
		zap.Int("mismatch_days", run.MismatchCount),
		zap.Int("reports", len(reports)),
	)
	return stored, nil
}

func (s *reconciliationService) fail(ctx context.Context, run *model.Run, cause error) error {
	s.metrics.runFinished(run.Mode, model.RunFailed)
	trace.SpanFromContext(ctx).RecordError(cause)
	s.log.Error("run_failed", zap.String("run_id", run.ID), zap.Error(cause))
	if err := s.repo.UpdateStatus(ctx, run.ID, model.RunFailed, cause.Error()); err != nil {
		return fmt.Errorf("%w; mark failed: %v", cause, err)
	}
	return cause
}

func reportKey(runID, filename string) string {
	return path.Join("reports", runID, filename)
}

// upload puts every artifact concurrently and records them. If any upload or
// record fails, the objects already stored are deleted.
func (s *reconciliationService) upload(ctx context.Context, runID string, arts []report.Artifact) ([]model.Report, error) {
	infos := make([]storage.ObjectInfo, len(arts))
	uploaded := make([]bool, len(arts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelUploads)
	for i, a := range arts {
		g.Go(func() error {
			info, err := s.store.Put(gctx, reportKey(runID, a.Filename), bytes.NewReader(a.Data), storage.PutObjectOptions{
				Size:        int64(len(a.Data)),
				ContentType: a.ContentType,
				Metadata:    map[string]string{"run-id": runID, "kind": a.Kind},
			})
			if err != nil {
				return fmt.Errorf("upload %s: %w", a.Filename, err)
			}
			infos[i], uploaded[i] = info, true
			return nil
		})
	}
	err := g.Wait()

	var reports []model.Report
	if err == nil {
		for i, a := range arts {
			rep, addErr := s.repo.AddReport(ctx, &model.Report{
				ID:          uuid.New().String(),
				RunID:       runID,
				Kind:        a.Kind,
				Filename:    a.Filename,
				StoragePath: infos[i].Key,
				ContentType: a.ContentType,
				Size:        infos[i].Size,
				CreatedAt:   s.now().UTC(),
			})
			if addErr != nil {
				err = fmt.Errorf("record report %s: %w", a.Filename, addErr)
				break
			}
			reports = append(reports, *rep)
		}
	}
	if err == nil {
		return reports, nil
	}

	for i, a := range arts {
		if !uploaded[i] {
			continue
		}
		if delErr := s.store.Delete(ctx, reportKey(runID, a.Filename)); delErr != nil {
			err = fmt.Errorf("%w; rollback delete failed: %v", err, delErr)
		}
	}
	return nil, err
}

// List returns paginated runs without exposing repository types.
func (s *reconciliationService) List(ctx context.Context, limit, offset int) (*RunListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &RunListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *reconciliationService) find(ctx context.Context, id string) (*model.Run, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	run, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return run, nil
}

func (s *reconciliationService) Get(ctx context.Context, id string) (*model.Run, error) {
	run, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	reports, err := s.repo.ListReports(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Reports = reports
	return run, nil
}

func (s *reconciliationService) Days(ctx context.Context, id string) ([]model.DailySummary, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListDays(ctx, id, false)
}

func (s *reconciliationService) Mismatches(ctx context.Context, id string) (*model.MismatchAnalysis, error) {
	days, err := s.Days(ctx, id)
	if err != nil {
		return nil, err
	}
	a := reconcile.AnalyzeMismatches(days)
	return &a, nil
}

func (s *reconciliationService) ReportURL(ctx context.Context, id, kind string) (string, error) {
	if _, err := s.find(ctx, id); err != nil {
		return "", err
	}
	reports, err := s.repo.ListReports(ctx, id)
	if err != nil {
		return "", err
	}
	for _, r := range reports {
		if r.Kind == kind {
			return s.store.PresignGet(ctx, r.StoragePath, s.opts.PresignExpiry)
		}
	}
	return "", ErrReportNotFound
}

// Delete removes report objects first; if that fails the rows are kept so
// the objects stay reachable.
func (s *reconciliationService) Delete(ctx context.Context, id string) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	reports, err := s.repo.ListReports(ctx, id)
	if err != nil {
		return err
	}
	for _, r := range reports {
		if err := s.store.Delete(ctx, r.StoragePath); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("delete storage: %w", err)
		}
	}
	return s.repo.Delete(ctx, id)
}

func (s *reconciliationService) AnalyzeRefunds(ctx context.Context, start, end string) (*model.RefundSummary, error) {
	from, err := reconcile.ParseDay(start)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, start)
	}
	to, err := reconcile.ParseDay(end)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, end)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: end %s before start %s", ErrInvalidDate, to, from)
	}
	loc, err := s.location("shop")
	if err != nil {
		return nil, err
	}

	orders, err := s.fetcher.FetchOrders(ctx, from.Start(loc).UTC(), to.End(loc).UTC())
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	s.metrics.fetched(len(orders))

	analyses := reconcile.AnalyzeRefunds(orders, loc, s.opts.Tolerance)
	summary := reconcile.SummarizeRefunds(analyses, s.opts.Tolerance)
	summary.Start, summary.End = from.String(), to.String()
	summary.OrdersScanned = len(orders)
	return &summary, nil
}

package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
	"wellness-center/internal/domain/classification"
	"wellness-center/internal/domain/membership"
	"wellness-center/internal/infrastructure/monitoring"
	"wellness-center/internal/pkg/apperrors"
)

const DefaultWorkers = 8

var ErrJobRunning = fmt.Errorf("classification run already in progress: %w", apperrors.ErrConflict)

type CustomerLister interface {
	ListActiveCustomerIDs(ctx context.Context) ([]int64, error)
}

type CriteriaLoader interface {
	EffectiveCriteria(ctx context.Context) (membership.Criteria, bool, error)
}

type Classifier interface {
	ReclassifyWithCriteria(ctx context.Context, customerID int64, criteria membership.Criteria, now time.Time) (*classification.Outcome, error)
}

// ProgressFunc is called after each customer with the number done so far.
// It may be called from several goroutines.
type ProgressFunc func(done, total int)

type Report struct {
	StartedAt          time.Time
	Duration           time.Duration
	Total              int
	Processed          int
	Changed            int
	Skipped            int
	Errors             int
	CriteriaConfigured bool
}

type ClassificationJob struct {
	customers  CustomerLister
	criteria   CriteriaLoader
	classifier Classifier
	workers    int
	logger     *slog.Logger
	now        func() time.Time

	running atomic.Bool
}

func NewClassificationJob(
	customers CustomerLister,
	criteria CriteriaLoader,
	classifier Classifier,
	workers int,
	logger *slog.Logger,
) *ClassificationJob {
	if customers == nil || criteria == nil || classifier == nil || logger == nil {
		panic("ClassificationJob dependencies cannot be nil")
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &ClassificationJob{
		customers:  customers,
		criteria:   criteria,
		classifier: classifier,
		workers:    workers,
		logger:     logger.With("job", "Classification"),
		now:        time.Now,
	}
}

func (j *ClassificationJob) Running() bool {
	return j.running.Load()
}

// Run reclassifies every active customer. It returns ErrJobRunning when
// another run holds the job.
func (j *ClassificationJob) Run(ctx context.Context) error {
	_, err := j.RunWithProgress(ctx, nil)
	return err
}

func (j *ClassificationJob) RunWithProgress(ctx context.Context, progress ProgressFunc) (Report, error) {
	if !j.running.CompareAndSwap(false, true) {
		return Report{}, ErrJobRunning
	}
	defer j.running.Store(false)
	return j.run(ctx, progress)
}

// Start launches a run in the background and returns immediately. The run
// is detached from ctx cancellation and bounded by timeout instead.
func (j *ClassificationJob) Start(ctx context.Context, timeout time.Duration) error {
	if !j.running.CompareAndSwap(false, true) {
		return ErrJobRunning
	}

	runCtx := context.WithoutCancel(ctx)
	var cancel context.CancelFunc = func() {}
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
	}

	go func() {
		defer j.running.Store(false)
		defer cancel()
		if _, err := j.run(runCtx, nil); err != nil {
			j.logger.ErrorContext(runCtx, "Triggered classification run failed", slog.Any("error", err))
		}
	}()
	return nil
}

func (j *ClassificationJob) run(ctx context.Context, progress ProgressFunc) (report Report, err error) {
	startTime := j.now()
	report.StartedAt = startTime
	j.logger.InfoContext(ctx, "Starting customer classification job.")

	defer func() {
		report.Duration = time.Since(startTime)
		status := "success"
		if err != nil {
			status = "failure"
		}
		monitoring.RecordClassificationRun(status, report.Duration)
	}()

	criteria, configured, err := j.criteria.EffectiveCriteria(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to load membership criteria, aborting job.", slog.Any("error", err))
		return report, fmt.Errorf("cannot run job, failed to load criteria: %w", err)
	}
	report.CriteriaConfigured = configured
	if !configured {
		j.logger.WarnContext(ctx, "No membership criteria configured, classifying with built-in defaults.")
	}

	j.logger.DebugContext(ctx, "Fetching active customer IDs.")
	ids, err := j.customers.ListActiveCustomerIDs(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to get active customer IDs, aborting job.", slog.Any("error", err))
		return report, fmt.Errorf("cannot run job, failed to get active customers: %w", err)
	}
	report.Total = len(ids)
	j.logger.InfoContext(ctx, "Fetched active customer IDs.", slog.Int("count", len(ids)))

	if len(ids) == 0 {
		j.logger.InfoContext(ctx, "No active customers found to classify.")
		return report, nil
	}

	// One reference time for the whole run keeps status boundaries consistent
	// across customers processed at different moments.
	now := startTime

	var processed, changed, skipped, errCount, done atomic.Int32
	idCh := make(chan int64)
	var wg sync.WaitGroup

	workers := min(j.workers, len(ids))
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for customerID := range idCh {
				logCtx := j.logger.With(slog.Int64("customerID", customerID))

				out, classifyErr := j.classifier.ReclassifyWithCriteria(ctx, customerID, criteria, now)
				switch {
				case classifyErr == nil:
					processed.Add(1)
					if out.Changed {
						changed.Add(1)
					}
				case errors.Is(classifyErr, apperrors.ErrNotFound):
					logCtx.WarnContext(ctx, "Customer not found during classification (deleted during run?)", slog.Any("error", classifyErr))
					skipped.Add(1)
				default:
					logCtx.ErrorContext(ctx, "Failed to classify customer", slog.Any("error", classifyErr))
					errCount.Add(1)
				}

				n := done.Add(1)
				if progress != nil {
					progress(int(n), len(ids))
				}
			}
		}()
	}

feed:
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		select {
		case idCh <- id:
		case <-ctx.Done():
			break feed
		}
	}
	close(idCh)
	wg.Wait()

	report.Processed = int(processed.Load())
	report.Changed = int(changed.Load())
	report.Skipped = int(skipped.Load())
	report.Errors = int(errCount.Load())

	summaryLog := j.logger.With(
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("total_active_customers", report.Total),
		slog.Int("customers_processed", report.Processed),
		slog.Int("classifications_changed", report.Changed),
		slog.Int("customers_skipped", report.Skipped),
		slog.Int("errors_encountered", report.Errors),
	)

	if ctxErr := ctx.Err(); ctxErr != nil {
		summaryLog.WarnContext(ctx, "Customer classification job interrupted.", slog.Any("error", ctxErr))
		return report, fmt.Errorf("job interrupted after %d of %d customers: %w", done.Load(), report.Total, ctxErr)
	}
	if report.Errors > 0 {
		summaryLog.WarnContext(ctx, "Customer classification job finished with errors.")
		return report, fmt.Errorf("job completed with %d errors", report.Errors)
	}
	summaryLog.InfoContext(ctx, "Customer classification job finished successfully.")
	return report, nil
}

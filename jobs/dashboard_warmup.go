package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/jobs"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/reports"
)

// DashboardSource recomputes the dashboard cache.
type DashboardSource interface {
	RefreshDashboard(ctx context.Context) (reports.Dashboard, error)
}

// DashboardWarmupJob keeps the reports dashboard cache warm so interactive
// requests rarely pay for the aggregate queries.
type DashboardWarmupJob struct {
	Reports DashboardSource
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(source DashboardSource, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{Reports: source, Logger: logger, Metrics: metrics}
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("dashboard warmup: handler not configured")
	}

	tracker := j.metrics().Track(TaskDashboardWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	warmCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	dashboard, err := j.Reports.RefreshDashboard(warmCtx)
	if err != nil {
		resultErr = err
		j.logger().Error("refresh dashboard", slog.Any("error", err))
		return resultErr
	}
	j.logger().Info("dashboard cache warmed",
		slog.Int("pending_orders", dashboard.PendingOrders),
		slog.Int("low_stock_alerts", dashboard.LowStockAlerts),
		slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskDashboardWarmup))
}

func (j *DashboardWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

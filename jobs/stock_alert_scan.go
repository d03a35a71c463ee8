package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/inventory"
	jobmetrics "github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// AlertSource produces the current stock alerts.
type AlertSource interface {
	Alerts(ctx context.Context) (inventory.Alerts, error)
}

// StockAlertScanJob periodically surfaces low and out-of-stock products so
// staff do not depend on someone opening the alerts page.
type StockAlertScanJob struct {
	Inventory AlertSource
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewStockAlertScanJob wires dependencies for the scan handler.
func NewStockAlertScanJob(source AlertSource, logger *slog.Logger, metrics *jobmetrics.Metrics) *StockAlertScanJob {
	return &StockAlertScanJob{Inventory: source, Logger: logger, Metrics: metrics}
}

// Handle processes stock alert scan tasks.
func (j *StockAlertScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Inventory == nil {
		return errors.New("stock alert scan: handler not configured")
	}
	var payload StockAlertScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskStockAlertScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	scanCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	alerts, err := j.Inventory.Alerts(scanCtx)
	if err != nil {
		resultErr = err
		j.logger().Error("scan stock alerts", slog.Any("error", err))
		return resultErr
	}

	j.metrics().AddStockAlerts("low_stock", len(alerts.LowStock))
	j.metrics().AddStockAlerts("out_of_stock", len(alerts.OutOfStock))

	if alerts.TotalAlerts < payload.NotifyThreshold {
		return resultErr
	}
	logger := j.logger().With(
		slog.Int("low_stock", len(alerts.LowStock)),
		slog.Int("out_of_stock", len(alerts.OutOfStock)),
	)
	if len(alerts.OutOfStock) > 0 {
		logger.Warn("products out of stock")
	} else if alerts.TotalAlerts > 0 {
		logger.Info("products below minimum stock level")
	} else {
		logger.Info("stock levels healthy")
	}
	return resultErr
}

func (j *StockAlertScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskStockAlertScan))
	}
	return slog.Default().With(slog.String("job", TaskStockAlertScan))
}

func (j *StockAlertScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

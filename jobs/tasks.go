package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStockAlertScan scans inventory for low and out-of-stock products.
	TaskStockAlertScan = "inventory:stock_alert_scan"
	// TaskDashboardWarmup recomputes the reports dashboard cache.
	TaskDashboardWarmup = "reports:dashboard_warmup"
)

// StockAlertScanPayload configures a stock alert scan run.
type StockAlertScanPayload struct {
	// NotifyThreshold skips logging when total alerts stay below it.
	NotifyThreshold int `json:"notify_threshold"`
}

// NewStockAlertScanTask constructs an Asynq task.
func NewStockAlertScanTask(payload StockAlertScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStockAlertScan, data), nil
}

// DashboardWarmupPayload configures a dashboard warmup run.
type DashboardWarmupPayload struct{}

// NewDashboardWarmupTask constructs an Asynq task.
func NewDashboardWarmupTask() (*asynq.Task, error) {
	data, err := json.Marshal(DashboardWarmupPayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}

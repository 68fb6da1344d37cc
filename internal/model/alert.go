package model

import "time"

// AlertType categorises a monitoring alert.
type AlertType string

const (
	AlertRSIHigh         AlertType = "rsi_high"
	AlertRSILow          AlertType = "rsi_low"
	AlertGSRExtreme      AlertType = "gsr_extreme"
	AlertPriceDrop       AlertType = "price_drop"
	AlertStopLossWarning AlertType = "stop_loss_warning"
	AlertReviewDue       AlertType = "review_due"
	AlertRebalanceDue    AlertType = "rebalance_due"
	AlertOrderFilled     AlertType = "order_filled"
)

// Alert is a user-facing notification derived from market or portfolio state.
type Alert struct {
	ID      string    `json:"id"`
	Date    time.Time `json:"date"`
	Type    AlertType `json:"type"`
	Metal   Metal     `json:"metal,omitempty"`
	Message string    `json:"message"`
	Read    bool      `json:"read"`
}

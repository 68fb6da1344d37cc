package model

import "time"

// OrderStatus is the lifecycle state of a limit order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderFilled    OrderStatus = "filled"
	OrderCancelled OrderStatus = "cancelled"
)

// LimitOrder is a tiered buy order proposal and its caller-driven lifecycle.
type LimitOrder struct {
	ID          string      `json:"id"`
	Metal       Metal       `json:"metal"`
	Tier        int         `json:"tier"`        // 1..4
	Amount      float64     `json:"amount"`      // currency
	TargetPrice float64     `json:"targetPrice"` // currency per gram
	Quantity    float64     `json:"quantity"`    // grams
	Status      OrderStatus `json:"status"`
	CreatedDate time.Time   `json:"createdDate"`
	FilledDate  *time.Time  `json:"filledDate,omitempty"`
	FilledPrice *float64    `json:"filledPrice,omitempty"`
}

// TierProposal is one tier of a generated limit order schedule.
type TierProposal struct {
	Tier        int     `json:"tier"`
	Amount      float64 `json:"amount"`
	TargetPrice float64 `json:"targetPrice"`
	Quantity    float64 `json:"quantity"`
	Percentage  float64 `json:"percentage"`
}

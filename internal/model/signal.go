package model

// GSRRebalancing is the gold-silver-ratio nudge applied to a monthly plan.
type GSRRebalancing struct {
	Needed    bool    `json:"needed"`
	FromMetal Metal   `json:"fromMetal,omitempty"`
	ToMetal   Metal   `json:"toMetal,omitempty"`
	Amount    float64 `json:"amount,omitempty"` // capital redirected into ToMetal
}

// MonthlyInvestment is the value-averaging contribution plan for one month.
type MonthlyInvestment struct {
	Month              string         `json:"month"` // YYYY-MM
	TargetValue        float64        `json:"targetValue"`
	CurrentValue       float64        `json:"currentValue"`
	RequiredInvestment float64        `json:"requiredInvestment"`
	RSIAdjustments     PerMetal       `json:"rsiAdjustments"`
	GSR                float64        `json:"gsr"`
	GSRRebalancing     GSRRebalancing `json:"gsrRebalancing"`
	FinalAllocation    PerMetal       `json:"finalAllocation"`
}

// StopLossState classifies how close a position is to its stop.
type StopLossState string

const (
	StopSafe    StopLossState = "safe"
	StopWarning StopLossState = "warning"
	StopDanger  StopLossState = "danger"
)

// StopLossStatus holds the stop levels of one metal position.
type StopLossStatus struct {
	Metal            Metal         `json:"metal"`
	CurrentPrice     float64       `json:"currentPrice"`
	AverageCost      float64       `json:"averageCost"`
	Volatility       float64       `json:"volatility"`
	DynamicStopLoss  float64       `json:"dynamicStopLoss"`
	HardStopLoss     float64       `json:"hardStopLoss"`
	TrailingStopLoss float64       `json:"trailingStopLoss,omitempty"`
	DistanceFromStop float64       `json:"distanceFromStop"` // percent
	Status           StopLossState `json:"status"`
}

// Trade is one side of a rebalancing proposal.
type Trade struct {
	Metal    Metal   `json:"metal"`
	Amount   float64 `json:"amount"`
	Quantity float64 `json:"quantity"`
}

// RebalancingRecommendation compares current and target allocations.
type RebalancingRecommendation struct {
	Needed            bool     `json:"needed"`
	CurrentAllocation PerMetal `json:"currentAllocation"`
	TargetAllocation  PerMetal `json:"targetAllocation"`
	Deviations        PerMetal `json:"deviations"`
	Sell              *Trade   `json:"sell,omitempty"`
	Buy               *Trade   `json:"buy,omitempty"`
}

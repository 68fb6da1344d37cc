package model

import "time"

// TransactionType is either a buy or a sell.
type TransactionType string

const (
	Buy  TransactionType = "buy"
	Sell TransactionType = "sell"
)

// Transaction is one recorded trade.
type Transaction struct {
	ID       string          `json:"id"`
	Date     time.Time       `json:"date"`
	Metal    Metal           `json:"metal"`
	Type     TransactionType `json:"type"`
	Quantity float64         `json:"quantity"` // grams
	Price    float64         `json:"price"`    // currency per gram
	Amount   float64         `json:"amount"`   // quantity * price
	Platform string          `json:"platform"`
	RSI      float64         `json:"rsi"`
	GSR      float64         `json:"gsr"`
	Notes    string          `json:"notes"`
}

// NewTransaction builds a transaction with Amount derived from quantity and price.
func NewTransaction(date time.Time, metal Metal, typ TransactionType, quantity, price float64) Transaction {
	return Transaction{
		Date:     date,
		Metal:    metal,
		Type:     typ,
		Quantity: quantity,
		Price:    price,
		Amount:   quantity * price,
	}
}

// Holding is the derived position in one metal.
type Holding struct {
	Quantity    float64 `json:"quantity"`    // grams
	AverageCost float64 `json:"averageCost"` // currency per gram
	TotalCost   float64 `json:"totalCost"`   // cost basis of the remaining quantity
}

// Holdings maps every metal to its position.
type Holdings map[Metal]Holding

// EmptyHoldings returns holdings with a zero position for each metal.
func EmptyHoldings() Holdings {
	h := make(Holdings, len(Metals))
	for _, m := range Metals {
		h[m] = Holding{}
	}
	return h
}

package portfolio

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrOversell           = errors.New("sell exceeds holdings")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidPrice       = errors.New("invalid price point")
	ErrNoPriceData        = errors.New("no price data")
	ErrOrderClosed        = errors.New("order is not pending")
	ErrInvalidConfig      = errors.New("invalid config")
)

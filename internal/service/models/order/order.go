package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order represents an order in the system. The same shape is used for the
// HTTP resource and for the queue message payload.
type Order struct {
	ID        uuid.UUID       `json:"id"`
	Customer  string          `json:"customer"`
	Product   string          `json:"product"`
	Amount    decimal.Decimal `json:"amount"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

package transfer

import (
	"context"

	"payflow/internal/models"
	"payflow/internal/money"
)

// Result is the outcome of a successful transfer: the persisted ledger
// record and both post-transfer balances.
type Result struct {
	Transaction     *models.Transaction
	SenderBalance   money.Money
	ReceiverBalance money.Money
}

// Service moves money between two accounts atomically, charging the fixed
// commission.
type Service interface {
	Transfer(ctx context.Context, senderID, receiverID uint64, rawAmount string, metadata models.JSON) (*Result, error)
}

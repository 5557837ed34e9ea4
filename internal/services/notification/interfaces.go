package notification

import (
	"context"

	"payflow/internal/models"
	"payflow/internal/money"
)

// Notifier delivers the post-commit transfer notification. Delivery is
// fire-and-forget from the engine's perspective: a failed publish is logged
// and never rolls back the transfer.
type Notifier interface {
	TransferCompleted(ctx context.Context, record *models.Transaction, senderBalance, receiverBalance money.Money) error
}

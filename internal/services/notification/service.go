// Package notification publishes transfer-completed events to the private
// per-account channels that interested clients subscribe to.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"payflow/internal/models"
	"payflow/internal/money"

	"github.com/redis/go-redis/v9"
)

// EventTransferCompleted is the event name carried in every published message.
const EventTransferCompleted = "TransferCompleted"

// ChannelForAccount returns the private channel an account listens on.
func ChannelForAccount(accountID uint64) string {
	return fmt.Sprintf("private-user.%d", accountID)
}

// transferEvent is the wire payload of a completed transfer.
type transferEvent struct {
	Event string            `json:"event"`
	Data  transferEventData `json:"data"`
}

type transferEventData struct {
	Transaction transactionPayload `json:"transaction"`
	Balances    balancesPayload    `json:"balances"`
}

type transactionPayload struct {
	ID            uint64 `json:"id"`
	SenderID      uint64 `json:"sender_id"`
	ReceiverID    uint64 `json:"receiver_id"`
	Amount        string `json:"amount"`
	CommissionFee string `json:"commission_fee"`
	TotalDebited  string `json:"total_debited"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

type balancesPayload struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
}

// Broadcaster publishes transfer events over Redis pub/sub.
type Broadcaster struct {
	client *redis.Client
}

// NewBroadcaster creates a Redis-backed notifier.
func NewBroadcaster(client *redis.Client) *Broadcaster {
	return &Broadcaster{client: client}
}

// TransferCompleted publishes the event to both parties' private channels.
func (b *Broadcaster) TransferCompleted(ctx context.Context, record *models.Transaction, senderBalance, receiverBalance money.Money) error {
	payload, err := json.Marshal(buildEvent(record, senderBalance, receiverBalance))
	if err != nil {
		return fmt.Errorf("failed to encode transfer event: %w", err)
	}

	for _, accountID := range []uint64{record.SenderID, record.ReceiverID} {
		if err := b.client.Publish(ctx, ChannelForAccount(accountID), payload).Err(); err != nil {
			return fmt.Errorf("failed to publish to %s: %w", ChannelForAccount(accountID), err)
		}
	}
	return nil
}

func buildEvent(record *models.Transaction, senderBalance, receiverBalance money.Money) transferEvent {
	return transferEvent{
		Event: EventTransferCompleted,
		Data: transferEventData{
			Transaction: transactionPayload{
				ID:            record.ID,
				SenderID:      record.SenderID,
				ReceiverID:    record.ReceiverID,
				Amount:        record.Amount.String(),
				CommissionFee: record.CommissionFee.String(),
				TotalDebited:  record.TotalDebited.String(),
				Status:        record.Status,
				CreatedAt:     record.CreatedAt.UTC().Format(time.RFC3339),
			},
			Balances: balancesPayload{
				Sender:   senderBalance.String(),
				Receiver: receiverBalance.String(),
			},
		},
	}
}

// Noop is a notifier that discards events. Used by the seeder and in tests.
type Noop struct{}

// TransferCompleted does nothing.
func (Noop) TransferCompleted(context.Context, *models.Transaction, money.Money, money.Money) error {
	return nil
}

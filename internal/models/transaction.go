package models

import (
	"time"

	"payflow/internal/money"
)

// Transaction statuses. The transfer engine only ever writes completed
// records; failed attempts leave no row behind.
const (
	TransactionStatusCompleted = "completed"
)

// Transaction is the immutable ledger record of one completed transfer.
// It is created exactly once per successful transfer and never updated.
type Transaction struct {
	ID            uint64      `gorm:"primarykey" json:"id"`
	Reference     string      `gorm:"type:varchar(64);uniqueIndex;not null" json:"reference"`
	SenderID      uint64      `gorm:"not null;index:idx_transactions_sender_created" json:"sender_id"`
	ReceiverID    uint64      `gorm:"not null;index:idx_transactions_receiver_created" json:"receiver_id"`
	Amount        money.Money `gorm:"type:numeric(18,4);not null" json:"amount"`
	CommissionFee money.Money `gorm:"type:numeric(18,4);not null" json:"commission_fee"`
	TotalDebited  money.Money `gorm:"type:numeric(18,4);not null" json:"total_debited"`
	Status        string      `gorm:"type:varchar(20);not null" json:"status"`
	Metadata      JSON        `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt     time.Time   `gorm:"index:idx_transactions_sender_created;index:idx_transactions_receiver_created" json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

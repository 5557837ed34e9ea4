package models

import (
	"time"

	"payflow/internal/money"
)

// Account is a ledger account row. Balance is only ever mutated inside a
// transfer transaction while the row is locked, and BalanceVersion goes up by
// exactly one on every balance write.
type Account struct {
	ID             uint64      `gorm:"primarykey" json:"id"`
	Name           string      `gorm:"not null" json:"name"`
	Email          string      `gorm:"uniqueIndex;not null" json:"email"`
	Balance        money.Money `gorm:"type:numeric(18,4);not null;default:0" json:"balance"`
	BalanceVersion uint64      `gorm:"not null;default:0" json:"balance_version"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

package repositories

import (
	"context"

	"payflow/internal/models"
	"payflow/internal/money"
)

// AccountStore is the transactional capability the transfer engine runs on.
// Atomically opens one storage transaction; everything done through the
// TransferTx commits or rolls back as a unit.
type AccountStore interface {
	// Get performs an unlocked read of a single account.
	Get(ctx context.Context, id uint64) (*models.Account, error)

	// Atomically runs fn inside one transaction. Returning an error rolls
	// the whole transaction back.
	Atomically(ctx context.Context, fn func(tx TransferTx) error) error
}

// TransferTx is the set of writes available inside a transfer transaction.
type TransferTx interface {
	// LockPair acquires exclusive row locks on both accounts. Callers pass
	// ids in ascending order so every concurrent transfer locks the same
	// pair in the same sequence. Both rows are re-read under lock; a
	// missing row yields ErrAccountNotFound.
	LockPair(ctx context.Context, firstID, secondID uint64) (*models.Account, *models.Account, error)

	// UpdateBalance writes a new balance guarded by the account's current
	// balance_version and increments the version by one. A guard miss
	// yields ErrContention.
	UpdateBalance(ctx context.Context, account *models.Account, balance money.Money) error

	// CreateTransaction inserts the ledger record for a completed transfer.
	CreateTransaction(ctx context.Context, record *models.Transaction) error
}

package repositories

import (
	"context"

	"payflow/internal/models"
)

// TransactionPage is one page of an account's transaction history plus the
// pagination metadata the API exposes.
type TransactionPage struct {
	Transactions []models.Transaction
	CurrentPage  int
	PerPage      int
	Total        int64
}

// TransactionRepository is the read side of the ledger.
type TransactionRepository interface {
	// ListByAccount returns transactions where the account is sender or
	// receiver, newest first by id.
	ListByAccount(ctx context.Context, accountID uint64, page, perPage int) (*TransactionPage, error)
}

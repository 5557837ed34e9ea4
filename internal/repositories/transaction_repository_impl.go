package repositories

import (
	"context"
	"fmt"

	"payflow/internal/models"

	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates the gorm-backed transaction repository.
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) ListByAccount(ctx context.Context, accountID uint64, page, perPage int) (*TransactionPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("sender_id = ? OR receiver_id = ?", accountID, accountID).
		Count(&total).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	var transactions []models.Transaction
	err = r.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", accountID, accountID).
		Order("id DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&transactions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return &TransactionPage{
		Transactions: transactions,
		CurrentPage:  page,
		PerPage:      perPage,
		Total:        total,
	}, nil
}

package repositories

import (
	"context"
	"errors"
	"fmt"

	"payflow/internal/models"
	"payflow/internal/money"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type accountStore struct {
	db *gorm.DB
}

// NewAccountStore creates the gorm-backed account store.
func NewAccountStore(db *gorm.DB) AccountStore {
	return &accountStore{db: db}
}

func (s *accountStore) Get(ctx context.Context, id uint64) (*models.Account, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (s *accountStore) Atomically(ctx context.Context, fn func(tx TransferTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&transferTx{db: tx})
	})
}

type transferTx struct {
	db *gorm.DB
}

func (t *transferTx) LockPair(ctx context.Context, firstID, secondID uint64) (*models.Account, *models.Account, error) {
	first, err := t.lock(ctx, firstID)
	if err != nil {
		return nil, nil, err
	}
	second, err := t.lock(ctx, secondID)
	if err != nil {
		return nil, nil, err
	}
	return first, second, nil
}

func (t *transferTx) lock(ctx context.Context, id uint64) (*models.Account, error) {
	var account models.Account
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&account, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to lock account %d: %w", id, err)
	}
	return &account, nil
}

func (t *transferTx) UpdateBalance(ctx context.Context, account *models.Account, balance money.Money) error {
	result := t.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ? AND balance_version = ?", account.ID, account.BalanceVersion).
		Updates(map[string]interface{}{
			"balance":         balance,
			"balance_version": gorm.Expr("balance_version + 1"),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update balance: %w", result.Error)
	}
	// The row is locked, so a guard miss means another writer slipped in
	// between the read and this write. Treat it as contention.
	if result.RowsAffected == 0 {
		return fmt.Errorf("balance version moved for account %d: %w", account.ID, ErrContention)
	}
	account.Balance = balance
	account.BalanceVersion++
	return nil
}

func (t *transferTx) CreateTransaction(ctx context.Context, record *models.Transaction) error {
	if err := t.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

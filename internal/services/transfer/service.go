// Package transfer implements the atomic two-account transfer engine. Each
// attempt runs inside one storage transaction that locks both account rows
// in ascending-id order, so two transfers touching the same pair can never
// deadlock on each other and concurrent debits of one sender serialize on
// the row lock. Transient contention (deadlocks across three or more
// accounts, lock-wait timeouts) is retried with exponential backoff.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"payflow/internal/models"
	"payflow/internal/money"
	"payflow/internal/repositories"
	"payflow/internal/services/notification"

	"github.com/google/uuid"
)

type service struct {
	store    repositories.AccountStore
	notifier notification.Notifier
	rate     money.Money
}

// NewService creates a transfer service on top of an account store and a
// completion notifier.
func NewService(store repositories.AccountStore, notifier notification.Notifier) Service {
	if store == nil {
		panic("account store is required")
	}
	if notifier == nil {
		notifier = notification.Noop{}
	}
	return &service{
		store:    store,
		notifier: notifier,
		rate:     money.Normalize(CommissionRate),
	}
}

// Transfer debits senderID by amount plus commission and credits receiverID
// by amount. rawAmount is normalized (truncated, not rounded) to four
// fractional digits before any other check.
func (s *service) Transfer(ctx context.Context, senderID, receiverID uint64, rawAmount string, metadata models.JSON) (*Result, error) {
	amount := money.Normalize(rawAmount)

	if senderID == receiverID {
		return nil, ErrInvalidReceiver
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			// 5ms, 10ms, 20ms, 40ms between attempts.
			backoff := backoffBase << (attempt - 1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := s.attempt(ctx, senderID, receiverID, amount, metadata)
		if err == nil {
			return result, nil
		}
		if !repositories.IsContention(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("transfer failed after %d attempts: %w", maxAttempts, lastErr)
}

func (s *service) attempt(ctx context.Context, senderID, receiverID uint64, amount money.Money, metadata models.JSON) (*Result, error) {
	var result *Result

	err := s.store.Atomically(ctx, func(tx repositories.TransferTx) error {
		// Lock both rows in ascending-id order regardless of direction.
		firstID, secondID := senderID, receiverID
		if firstID > secondID {
			firstID, secondID = secondID, firstID
		}

		first, second, err := tx.LockPair(ctx, firstID, secondID)
		if err != nil {
			if errors.Is(err, repositories.ErrAccountNotFound) {
				return ErrAccountNotFound
			}
			return err
		}

		// Map the locked rows back to their transfer roles.
		sender, receiver := first, second
		if sender.ID != senderID {
			sender, receiver = second, first
		}

		commission := amount.Mul(s.rate).Round()
		total := amount.Add(commission).Round()

		if sender.Balance.LessThan(total) {
			return ErrInsufficientFunds
		}

		newSenderBalance := sender.Balance.Sub(total).Round()
		newReceiverBalance := receiver.Balance.Add(amount).Round()

		if err := tx.UpdateBalance(ctx, sender, newSenderBalance); err != nil {
			return err
		}
		if err := tx.UpdateBalance(ctx, receiver, newReceiverBalance); err != nil {
			return err
		}

		record := &models.Transaction{
			Reference:     uuid.NewString(),
			SenderID:      sender.ID,
			ReceiverID:    receiver.ID,
			Amount:        amount,
			CommissionFee: commission,
			TotalDebited:  total,
			Status:        models.TransactionStatusCompleted,
			Metadata:      metadata,
		}
		if err := tx.CreateTransaction(ctx, record); err != nil {
			return err
		}

		// Best-effort notification. A publish failure must not roll the
		// transfer back.
		if err := s.notifier.TransferCompleted(ctx, record, newSenderBalance, newReceiverBalance); err != nil {
			log.Printf("transfer %s: notification failed: %v", record.Reference, err)
		}

		result = &Result{
			Transaction:     record,
			SenderBalance:   newSenderBalance,
			ReceiverBalance: newReceiverBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

package transfer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"payflow/internal/models"
	"payflow/internal/money"
	"payflow/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory AccountStore. A single mutex serializes every
// transaction, which matches the exclusion the row locks provide in the
// real store for transfers touching the same accounts.
type memStore struct {
	mu        sync.Mutex
	accounts  map[uint64]*models.Account
	records   []*models.Transaction
	lockOrder [][2]uint64
	attempts  int
	failNext  int
	failWith  error
}

func newMemStore(balances map[uint64]string) *memStore {
	accounts := make(map[uint64]*models.Account, len(balances))
	for id, balance := range balances {
		accounts[id] = &models.Account{ID: id, Balance: money.Normalize(balance)}
	}
	return &memStore{accounts: accounts}
}

func (m *memStore) Get(_ context.Context, id uint64) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

func (m *memStore) Atomically(_ context.Context, fn func(tx repositories.TransferTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts++
	if m.failNext > 0 {
		m.failNext--
		return m.failWith
	}

	snapshot := make(map[uint64]*models.Account, len(m.accounts))
	for id, account := range m.accounts {
		copied := *account
		snapshot[id] = &copied
	}
	recordCount := len(m.records)

	if err := fn(&memTx{store: m}); err != nil {
		m.accounts = snapshot
		m.records = m.records[:recordCount]
		return err
	}
	return nil
}

type memTx struct {
	store *memStore
}

func (t *memTx) LockPair(_ context.Context, firstID, secondID uint64) (*models.Account, *models.Account, error) {
	t.store.lockOrder = append(t.store.lockOrder, [2]uint64{firstID, secondID})
	first, ok := t.store.accounts[firstID]
	if !ok {
		return nil, nil, repositories.ErrAccountNotFound
	}
	second, ok := t.store.accounts[secondID]
	if !ok {
		return nil, nil, repositories.ErrAccountNotFound
	}
	return first, second, nil
}

func (t *memTx) UpdateBalance(_ context.Context, account *models.Account, balance money.Money) error {
	stored, ok := t.store.accounts[account.ID]
	if !ok {
		return repositories.ErrAccountNotFound
	}
	if stored.BalanceVersion != account.BalanceVersion {
		return repositories.ErrContention
	}
	stored.Balance = balance
	stored.BalanceVersion++
	return nil
}

func (t *memTx) CreateTransaction(_ context.Context, record *models.Transaction) error {
	record.ID = uint64(len(t.store.records) + 1)
	record.CreatedAt = time.Now()
	t.store.records = append(t.store.records, record)
	return nil
}

// recordingNotifier captures every notification; err, when set, is returned
// from each delivery.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []*Result
	err   error
}

func (n *recordingNotifier) TransferCompleted(_ context.Context, record *models.Transaction, senderBalance, receiverBalance money.Money) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, &Result{Transaction: record, SenderBalance: senderBalance, ReceiverBalance: receiverBalance})
	return n.err
}

func TestTransferSuccess(t *testing.T) {
	store := newMemStore(map[uint64]string{1: "1000.0000", 2: "0.0000"})
	notifier := &recordingNotifier{}
	svc := NewService(store, notifier)

	result, err := svc.Transfer(context.Background(), 1, 2, "100.00", nil)
	require.NoError(t, err)

	assert.Equal(t, "100.0000", result.Transaction.Amount.String())
	assert.Equal(t, "1.5000", result.Transaction.CommissionFee.String())
	assert.Equal(t, "101.5000", result.Transaction.TotalDebited.String())
	assert.Equal(t, models.TransactionStatusCompleted, result.Transaction.Status)
	assert.NotEmpty(t, result.Transaction.Reference)
	assert.Equal(t, "898.5000", result.SenderBalance.String())
	assert.Equal(t, "100.0000", result.ReceiverBalance.String())

	sender, _ := store.Get(context.Background(), 1)
	receiver, _ := store.Get(context.Background(), 2)
	assert.Equal(t, "898.5000", sender.Balance.String())
	assert.Equal(t, "100.0000", receiver.Balance.String())
	assert.Equal(t, uint64(1), sender.BalanceVersion)
	assert.Equal(t, uint64(1), receiver.BalanceVersion)

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, result.Transaction.ID, notifier.calls[0].Transaction.ID)
	assert.Equal(t, "898.5000", notifier.calls[0].SenderBalance.String())
}

func TestTransferBalanceConservation(t *testing.T) {
	store := newMemStore(map[uint64]string{1: "777.7777", 2: "12.3456"})
	svc := NewService(store, nil)

	result, err := svc.Transfer(context.Background(), 1, 2, "33.3333", nil)
	require.NoError(t, err)

	oldSender := money.Normalize("777.7777")
	oldReceiver := money.Normalize("12.3456")

	// new_sender + total_debited == old_sender, new_receiver - amount == old_receiver
	assert.True(t, result.SenderBalance.Add(result.Transaction.TotalDebited).Equal(oldSender))
	assert.True(t, result.ReceiverBalance.Sub(result.Transaction.Amount).Equal(oldReceiver))
}

func TestTransferTruncatesRawAmount(t *testing.T) {
	store := newMemStore(map[uint64]string{1: "1000.0000", 2: "0.0000"})
	svc := NewService(store, nil)

	result, err := svc.Transfer(context.Background(), 1, 2, "10.00005", nil)
	require.NoError(t, err)
	assert.Equal(t, "10.0000", result.Transaction.Amount.String())
}

func TestTransferSelfIsRejected(t *testing.T) {
	store := newMemStore(map[uint64]string{1: "1000.0000"})
	svc := NewService(store, nil)

	_, err := svc.Transfer(context.Background(), 1, 1, "10.00", nil)
	assert.ErrorIs(t, err, ErrInvalidReceiver)
	assert.Zero(t, store.attempts)
	assert.Empty(t, store.records)
}

func TestTransferNonPositiveAmount(t *testing.T) {
	store := newMemStore(map[uint64]string{1: "1000.0000", 2: "0.0000"})
	svc := NewService(store, nil)

	for _, raw := range []string{"", "0", "0.0000", "-5", "0.00004", "garbage"} {
		_, err := svc.Transfer(context.Background(), 1, 2, raw, nil)
		assert.ErrorIs(t, err, ErrInvalidAmount, "raw amount %q", raw)
	}
	assert.Zero(t, store.attempts)
	assert.Empty(t, store.records)
}

func TestTransferUnknownReceiverFailsWithoutRetry(t *testing.T) {
	store := newMemStore(map[uint64]string{1: "1000.0000"})
	svc := NewService(store, nil)

	_, err := svc.Transfer(context.Background(), 1, 99, "10.00", nil)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.Equal(t, 1, store.attempts)
	assert.Empty(t, store.records)
}

func TestTransferInsufficientFundsRollsBack(t *testing.T) {
	store := newMemStore(map[uint64]string{1: "50.0000", 2: "0.0000"})
	notifier := &recordingNotifier{}
	svc := NewService(store, notifier)

	_, err := svc.Transfer(context.Background(), 1, 2, "100.00", nil)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 1, store.attempts)
	assert.Empty(t, store.records)
	assert.Empty(t, notifier.calls)

	sender, _ := store.Get(context.Background(), 1)
	receiver, _ := store.Get(context.Background(), 2)
	assert.Equal(t, "50.0000", sender.Balance.String())
	assert.Equal(t, "0.0000", receiver.Balance.String())
	assert.Zero(t, sender.BalanceVersion)
}

func TestTransferExactBalanceSucceeds(t *testing.T) {
	// 100.00 + 1.50 commission drains a 101.5000 balance exactly.
	store := newMemStore(map[uint64]string{1: "101.5000", 2: "0.0000"})
	svc := NewService(store, nil)

	result, err := svc.Transfer(context.Background(), 1, 2, "100.00", nil)
	require.NoError(t, err)
	assert.Equal(t, "0.0000", result.SenderBalance.String())
}

func TestTransferRetriesContention(t *testing.T) {
	store := newMemStore(map[uint64]string{1: "1000.0000", 2: "0.0000"})
	store.failNext = 2
	store.failWith = repositories.ErrContention
	svc := NewService(store, nil)

	result, err := svc.Transfer(context.Background(), 1, 2, "100.00", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, store.attempts)
	assert.Equal(t, "898.5000", result.SenderBalance.String())
}

func TestTransferExhaustsRetries(t *testing.T) {
	store := newMemStore(map[uint64]string{1: "1000.0000", 2: "0.0000"})
	store.failNext = maxAttempts
	store.failWith = repositories.ErrContention
	svc := NewService(store, nil)

	_, err := svc.Transfer(context.Background(), 1, 2, "100.00", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, repositories.ErrContention)
	assert.Equal(t, maxAttempts, store.attempts)
	assert.Empty(t, store.records)
}

func TestTransferStoreFailureIsNotRetried(t *testing.T) {
	store := newMemStore(map[uint64]string{1: "1000.0000", 2: "0.0000"})
	store.failNext = 1
	store.failWith = errors.New("connection refused")
	svc := NewService(store, nil)

	_, err := svc.Transfer(context.Background(), 1, 2, "100.00", nil)
	require.Error(t, err)
	assert.Equal(t, 1, store.attempts)
}

func TestTransferNotifierFailureDoesNotRollBack(t *testing.T) {
	store := newMemStore(map[uint64]string{1: "1000.0000", 2: "0.0000"})
	notifier := &recordingNotifier{err: errors.New("broker down")}
	svc := NewService(store, notifier)

	result, err := svc.Transfer(context.Background(), 1, 2, "100.00", nil)
	require.NoError(t, err)
	require.Len(t, store.records, 1)
	assert.Equal(t, "898.5000", result.SenderBalance.String())
}

func TestTransferLocksAscendingRegardlessOfDirection(t *testing.T) {
	store := newMemStore(map[uint64]string{3: "1000.0000", 7: "1000.0000"})
	svc := NewService(store, nil)

	_, err := svc.Transfer(context.Background(), 3, 7, "10.00", nil)
	require.NoError(t, err)
	_, err = svc.Transfer(context.Background(), 7, 3, "10.00", nil)
	require.NoError(t, err)

	require.Len(t, store.lockOrder, 2)
	assert.Equal(t, [2]uint64{3, 7}, store.lockOrder[0])
	assert.Equal(t, [2]uint64{3, 7}, store.lockOrder[1])
}

func TestConcurrentTransfersNeverOverdraw(t *testing.T) {
	// 507.5000 covers exactly five transfers of 100.00 + 1.50 commission.
	store := newMemStore(map[uint64]string{1: "507.5000", 2: "0.0000"})
	svc := NewService(store, nil)

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Transfer(context.Background(), 1, 2, "100.00", nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	successes, failures := 0, 0
	for err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, ErrInsufficientFunds)
			failures++
		}
	}

	assert.Equal(t, 5, successes)
	assert.Equal(t, 5, failures)
	assert.Len(t, store.records, 5)

	sender, _ := store.Get(context.Background(), 1)
	receiver, _ := store.Get(context.Background(), 2)
	assert.Equal(t, "0.0000", sender.Balance.String())
	assert.Equal(t, "500.0000", receiver.Balance.String())
	assert.Equal(t, uint64(5), sender.BalanceVersion)
}

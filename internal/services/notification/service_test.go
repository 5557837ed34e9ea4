package notification

import (
	"encoding/json"
	"testing"
	"time"

	"payflow/internal/models"
	"payflow/internal/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelForAccount(t *testing.T) {
	assert.Equal(t, "private-user.1", ChannelForAccount(1))
	assert.Equal(t, "private-user.42", ChannelForAccount(42))
}

func TestBuildEventPayload(t *testing.T) {
	record := &models.Transaction{
		ID:            7,
		SenderID:      1,
		ReceiverID:    2,
		Amount:        money.Normalize("100.00"),
		CommissionFee: money.Normalize("1.50"),
		TotalDebited:  money.Normalize("101.50"),
		Status:        models.TransactionStatusCompleted,
		CreatedAt:     time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
	}

	event := buildEvent(record, money.Normalize("898.50"), money.Normalize("100.00"))
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "TransferCompleted", decoded["event"])

	data := decoded["data"].(map[string]interface{})
	tx := data["transaction"].(map[string]interface{})
	assert.Equal(t, float64(7), tx["id"])
	assert.Equal(t, "100.0000", tx["amount"])
	assert.Equal(t, "1.5000", tx["commission_fee"])
	assert.Equal(t, "101.5000", tx["total_debited"])
	assert.Equal(t, "completed", tx["status"])
	assert.Equal(t, "2026-08-28T12:00:00Z", tx["created_at"])

	balances := data["balances"].(map[string]interface{})
	assert.Equal(t, "898.5000", balances["sender"])
	assert.Equal(t, "100.0000", balances["receiver"])
}

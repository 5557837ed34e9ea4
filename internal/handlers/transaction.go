package handlers

import (
	"errors"
	"log"
	"regexp"
	"time"

	"payflow/internal/models"
	"payflow/internal/repositories"
	"payflow/internal/services/transfer"
	"payflow/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// amountPattern accepts a non-negative decimal with up to four fractional
// digits, matching what the transfer engine normalizes.
var amountPattern = regexp.MustCompile(`^\d+(\.\d{1,4})?$`)

// TransactionHandler exposes the transfer and listing endpoints.
type TransactionHandler struct {
	transfers    transfer.Service
	accounts     repositories.AccountStore
	transactions repositories.TransactionRepository
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transfers transfer.Service, accounts repositories.AccountStore, transactions repositories.TransactionRepository) *TransactionHandler {
	return &TransactionHandler{
		transfers:    transfers,
		accounts:     accounts,
		transactions: transactions,
	}
}

type transactionPayload struct {
	ID            uint64      `json:"id"`
	Reference     string      `json:"reference"`
	SenderID      uint64      `json:"sender_id"`
	ReceiverID    uint64      `json:"receiver_id"`
	Amount        string      `json:"amount"`
	CommissionFee string      `json:"commission_fee"`
	TotalDebited  string      `json:"total_debited"`
	Status        string      `json:"status"`
	Metadata      models.JSON `json:"metadata,omitempty"`
	CreatedAt     string      `json:"created_at"`
}

func toTransactionPayload(tx *models.Transaction) transactionPayload {
	return transactionPayload{
		ID:            tx.ID,
		Reference:     tx.Reference,
		SenderID:      tx.SenderID,
		ReceiverID:    tx.ReceiverID,
		Amount:        tx.Amount.String(),
		CommissionFee: tx.CommissionFee.String(),
		TotalDebited:  tx.TotalDebited.String(),
		Status:        tx.Status,
		Metadata:      tx.Metadata,
		CreatedAt:     tx.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Create handles POST /api/transactions: it performs a transfer from the
// authenticated account to the requested receiver.
func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.AccountClaims)

	var req struct {
		ReceiverID uint64      `json:"receiver_id"`
		Amount     string      `json:"amount"`
		Metadata   models.JSON `json:"metadata"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.ReceiverID == 0 {
		return response.UnprocessableEntity(c, "receiver_id is required")
	}
	if !amountPattern.MatchString(req.Amount) {
		return response.UnprocessableEntity(c, "the amount must be a decimal with up to 4 decimal places")
	}

	result, err := h.transfers.Transfer(c.Context(), claims.AccountID, req.ReceiverID, req.Amount, req.Metadata)
	if err != nil {
		return transferError(c, err)
	}

	return response.Created(c, fiber.Map{
		"transaction": toTransactionPayload(result.Transaction),
		"balance":     result.SenderBalance.String(),
	})
}

// List handles GET /api/transactions: the caller's balance plus a paginated
// history of transfers the caller sent or received, newest first.
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.AccountClaims)

	page := c.QueryInt("page", 1)
	perPage := c.QueryInt("per_page", defaultPerPage)
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	account, err := h.accounts.Get(c.Context(), claims.AccountID)
	if err != nil {
		log.Printf("account lookup failed: %v", err)
		return response.ServerError(c, "failed to load account")
	}

	result, err := h.transactions.ListByAccount(c.Context(), claims.AccountID, page, perPage)
	if err != nil {
		log.Printf("transaction listing failed: %v", err)
		return response.ServerError(c, "failed to load transactions")
	}

	transactions := make([]transactionPayload, len(result.Transactions))
	for i := range result.Transactions {
		transactions[i] = toTransactionPayload(&result.Transactions[i])
	}

	return c.JSON(fiber.Map{
		"balance":      account.Balance.String(),
		"transactions": transactions,
		"meta": fiber.Map{
			"current_page": result.CurrentPage,
			"per_page":     result.PerPage,
			"total":        result.Total,
		},
	})
}

// transferError maps engine errors onto distinct client-facing categories:
// validation failures, forbidden insufficient-funds, and retryable
// contention exhaustion.
func transferError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, transfer.ErrInvalidReceiver),
		errors.Is(err, transfer.ErrInvalidAmount),
		errors.Is(err, transfer.ErrAccountNotFound):
		return response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, transfer.ErrInsufficientFunds):
		return response.Forbidden(c, err.Error())
	case repositories.IsContention(err):
		return response.ServiceUnavailable(c, "the transfer could not complete, please retry")
	default:
		log.Printf("transfer failed: %v", err)
		return response.ServerError(c, "transfer failed")
	}
}

// Package main seeds demo accounts and a starter transaction history. It is
// idempotent: accounts are matched by email and transfers are skipped when
// any records already exist.
package main

import (
	"context"
	"errors"
	"log"

	"payflow/internal/config"
	"payflow/internal/models"
	"payflow/internal/money"
	"payflow/internal/repositories"
	"payflow/internal/services/notification"
	"payflow/internal/services/transfer"

	"gorm.io/gorm"
)

type demoAccount struct {
	name    string
	email   string
	balance string
}

var demoAccounts = []demoAccount{
	{"Alice Demo", "alice@example.com", "1500.0000"},
	{"Bob Demo", "bob@example.com", "300.0000"},
	{"Charlie Demo", "charlie@example.com", "100.0000"},
	{"Demo User", "demo@example.com", "1000.0000"},
}

// demoTransfers route through the real engine so commissions and balances
// come out consistent. Listed as sender email, receiver email, amount.
var demoTransfers = [][3]string{
	{"demo@example.com", "alice@example.com", "100.0000"},
	{"alice@example.com", "bob@example.com", "50.0000"},
	{"bob@example.com", "charlie@example.com", "25.0000"},
	{"alice@example.com", "charlie@example.com", "10.0000"},
	{"demo@example.com", "bob@example.com", "75.0000"},
	{"charlie@example.com", "demo@example.com", "5.0000"},
}

func main() {
	config.LoadEnv()

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer repositories.CloseDB()

	ctx := context.Background()
	byEmail := make(map[string]uint64, len(demoAccounts))

	for _, demo := range demoAccounts {
		var account models.Account
		err := repositories.DB.WithContext(ctx).Where("email = ?", demo.email).First(&account).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			account = models.Account{
				Name:    demo.name,
				Email:   demo.email,
				Balance: money.Normalize(demo.balance),
			}
			if err := repositories.DB.WithContext(ctx).Create(&account).Error; err != nil {
				log.Fatalf("failed to create account %s: %v", demo.email, err)
			}
			log.Printf("created account %s with balance %s", demo.email, account.Balance)
		case err != nil:
			log.Fatalf("failed to look up account %s: %v", demo.email, err)
		default:
			log.Printf("account %s already exists", demo.email)
		}
		byEmail[demo.email] = account.ID
	}

	var count int64
	if err := repositories.DB.WithContext(ctx).Model(&models.Transaction{}).Count(&count).Error; err != nil {
		log.Fatalf("failed to count transactions: %v", err)
	}
	if count > 0 {
		log.Printf("transactions already present, skipping transfer seeding")
		return
	}

	// Seeded transfers do not broadcast.
	svc := transfer.NewService(repositories.NewAccountStore(repositories.DB), notification.Noop{})

	for _, t := range demoTransfers {
		senderID, receiverID, amount := byEmail[t[0]], byEmail[t[1]], t[2]
		result, err := svc.Transfer(ctx, senderID, receiverID, amount, models.JSON{"seeded": true})
		if err != nil {
			log.Fatalf("seed transfer %s -> %s failed: %v", t[0], t[1], err)
		}
		log.Printf("seeded transfer %s -> %s amount %s (total debited %s)",
			t[0], t[1], amount, result.Transaction.TotalDebited)
	}

	log.Println("seeding complete")
}

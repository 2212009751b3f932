package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/keeperhq/keeper/internal/model"
	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with demo accounts and goals",
		Long: `Create a small set of demo accounts and savings goals so the chat
can be tried out immediately. Safe to skip on a real database; seeding an
already-populated database adds duplicates.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := seedAccounts(ctx, store); err != nil {
				return err
			}

			cmd.Println("Seeded demo accounts and goals.")
			return nil
		},
	}
}

type accountCreator interface {
	CreateAccount(ctx context.Context, account *model.FinancialAccount) error
	CreateGoal(ctx context.Context, goal *model.Goal) error
}

func seedAccounts(ctx context.Context, store accountCreator) error {
	accounts := []model.FinancialAccount{
		{Name: "Main Checking", Type: model.AccountChecking, Balance: 2450.00},
		{Name: "My Savings Account", Type: model.AccountSavings, Balance: 8200.00},
		{Name: "Travel Card", Type: model.AccountCredit, Balance: -320.50},
		{Name: "Wallet Cash", Type: model.AccountCash, Balance: 85.00},
	}

	for i := range accounts {
		accounts[i].ID = uuid.NewString()
		accounts[i].Icon = model.AccountIcon(accounts[i].Type)
		if err := store.CreateAccount(ctx, &accounts[i]); err != nil {
			return err
		}
	}

	targetDate := time.Now().AddDate(1, 0, 0)
	goals := []model.Goal{
		{Name: "Emergency Fund", TargetAmount: 10000, CurrentAmount: 3500},
		{Name: "Japan Trip", TargetAmount: 4000, CurrentAmount: 1200, TargetDate: &targetDate},
	}

	for i := range goals {
		goals[i].ID = uuid.NewString()
		goals[i].Icon = model.GoalIcon()
		if err := store.CreateGoal(ctx, &goals[i]); err != nil {
			return err
		}
	}

	return nil
}

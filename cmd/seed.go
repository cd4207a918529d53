package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vibast-solutions/ms-go-accounts/app/notify"
	"github.com/vibast-solutions/ms-go-accounts/app/repository"
	"github.com/vibast-solutions/ms-go-accounts/app/service"
	"github.com/vibast-solutions/ms-go-accounts/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"
)

var (
	seedFirstName string
	seedLastName  string
	seedUsername  string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed initial data",
}

var seedAdminCmd = &cobra.Command{
	Use:   "admin <email> <password>",
	Short: "Create a confirmed administrator account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		accountService, db, err := newAccountServiceForSeedCommands()
		if err != nil {
			return err
		}
		defer db.Close()

		confirmed := true
		active := true
		result, err := accountService.Create(cmd.Context(), service.CreateAccountData{
			Email:         args[0],
			Password:      args[1],
			Username:      seedUsername,
			FirstName:     seedFirstName,
			LastName:      seedLastName,
			Confirmed:     &confirmed,
			Active:        &active,
			HasAdminRight: true,
		})
		if err != nil {
			if errors.Is(err, service.ErrDuplicateAccount) {
				return fmt.Errorf("account %q already exists", args[0])
			}
			return err
		}

		fmt.Printf("account_id: %d\n", result.Account.ID)
		fmt.Printf("email: %s\n", result.Account.Email)
		fmt.Printf("username: %s\n", result.Account.Username)
		return nil
	},
}

func init() {
	seedAdminCmd.Flags().StringVar(&seedFirstName, "first-name", "", "administrator first name")
	seedAdminCmd.Flags().StringVar(&seedLastName, "last-name", "", "administrator last name")
	seedAdminCmd.Flags().StringVar(&seedUsername, "username", "", "administrator username (defaults to the email)")
	seedCmd.AddCommand(seedAdminCmd)
	rootCmd.AddCommand(seedCmd)
}

func newAccountServiceForSeedCommands() (*service.AccountService, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, nil, err
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, nil, err
	}

	if err = runMigrations(context.Background(), db); err != nil {
		db.Close()
		return nil, nil, err
	}

	accountRepo := repository.NewAccountRepository(db)
	notifier := notify.NewAMQPNotifier(cfg.AMQPURL, cfg.EmailQueue)
	accountService := service.NewAccountService(accountRepo, notifier, cfg)

	return accountService, db, nil
}

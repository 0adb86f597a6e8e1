package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/jsiebens/weiboauth/internal/database"
	"github.com/jsiebens/weiboauth/internal/domain"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func accountCommands() *cobra.Command {
	command := &cobra.Command{
		Use:          "accounts",
		Aliases:      []string{"account"},
		Short:        "Inspect linked accounts",
		SilenceUsage: true,
	}

	command.AddCommand(listAccountsCommand())
	command.AddCommand(getAccountCommand())

	return command
}

func listAccountsCommand() *cobra.Command {
	command := &cobra.Command{
		Use:          "list",
		Short:        "List accounts",
		SilenceUsage: true,
	}

	cbf := prepareConfigCommand(command)

	command.RunE = func(cmd *cobra.Command, args []string) error {
		c, err := cbf.load()
		if err != nil {
			return err
		}

		repository, err := database.OpenDB(&c.Database, zap.NewNop())
		if err != nil {
			return err
		}

		accounts, err := repository.ListAccounts(cmd.Context())
		if err != nil {
			return err
		}

		tbl := table.New("ID", "PROVIDER", "EXTERNAL_ID", "LOGIN_NAME", "EMAIL", "LAST_AUTHENTICATED").WithWriter(cmd.OutOrStdout())
		for _, a := range accounts {
			tbl.AddRow(a.ID, a.Provider, a.ExternalID, a.LoginName, a.Email, lastAuthenticated(&a))
		}
		tbl.Print()

		return nil
	}

	return command
}

func getAccountCommand() *cobra.Command {
	command := &cobra.Command{
		Use:          "get",
		Short:        "Show an account and its stored profile",
		SilenceUsage: true,
	}

	var accountID uint64

	cbf := prepareConfigCommand(command)
	command.Flags().Uint64Var(&accountID, "account-id", 0, "Account ID.")

	_ = command.MarkFlagRequired("account-id")

	command.RunE = func(cmd *cobra.Command, args []string) error {
		c, err := cbf.load()
		if err != nil {
			return err
		}

		repository, err := database.OpenDB(&c.Database, zap.NewNop())
		if err != nil {
			return err
		}

		a, err := repository.GetAccount(cmd.Context(), accountID)
		if err != nil {
			return err
		}
		if a == nil {
			return fmt.Errorf("account %d not found", accountID)
		}

		tbl := table.New("ID", "PROVIDER", "EXTERNAL_ID", "LOGIN_NAME", "EMAIL", "LAST_AUTHENTICATED").WithWriter(cmd.OutOrStdout())
		tbl.AddRow(a.ID, a.Provider, a.ExternalID, a.LoginName, a.Email, lastAuthenticated(a))
		tbl.Print()

		profile, err := json.MarshalIndent(a.Profile, "", "  ")
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "\nProfile:\n%s\n", profile)
		return err
	}

	return command
}

func lastAuthenticated(a *domain.Account) string {
	if a.LastAuthenticated == nil {
		return ""
	}
	return a.LastAuthenticated.UTC().Format("2006-01-02 15:04:05")
}

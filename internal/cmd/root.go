package cmd

import (
	"github.com/spf13/cobra"
)

func Command() *cobra.Command {
	rootCmd := rootCommand()
	rootCmd.AddCommand(serverCommand())
	rootCmd.AddCommand(loginUrlCommand())
	rootCmd.AddCommand(providersCommand())
	rootCmd.AddCommand(accountCommands())
	rootCmd.AddCommand(versionCommand())

	return rootCmd
}

func Execute() error {
	return Command().Execute()
}

func rootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "weiboauth",
		Short: "Sign in with Weibo",
	}
}

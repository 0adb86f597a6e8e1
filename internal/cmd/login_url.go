package cmd

import (
	"fmt"

	"github.com/jsiebens/weiboauth/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func loginUrlCommand() *cobra.Command {
	command := &cobra.Command{
		Use:          "login-url",
		Short:        "Print the Weibo authorization url",
		SilenceUsage: true,
	}

	var state string

	cbf := prepareConfigCommand(command)
	command.Flags().StringVar(&state, "state", "", "Opaque state value to forward to Weibo.")

	command.RunE = func(cmd *cobra.Command, args []string) error {
		c, err := cbf.load()
		if err != nil {
			return err
		}

		p, err := server.NewWeiboProvider(c, zap.NewNop())
		if err != nil {
			return err
		}

		loginURL, err := p.LoginURL(state)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), loginURL)
		return err
	}

	return command
}

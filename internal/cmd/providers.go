package cmd

import (
	"github.com/jsiebens/weiboauth/internal/server"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func providersCommand() *cobra.Command {
	command := &cobra.Command{
		Use:          "providers",
		Short:        "List the configured providers",
		SilenceUsage: true,
	}

	cbf := prepareConfigCommand(command)

	command.RunE = func(cmd *cobra.Command, args []string) error {
		c, err := cbf.load()
		if err != nil {
			return err
		}

		p, err := server.NewWeiboProvider(c, zap.NewNop())
		if err != nil {
			return err
		}

		pc := p.Config()
		configured := pc.Validate() == nil

		tbl := table.New("NAME", "CONFIGURED", "SITE", "SCOPE", "TOKEN_MODE", "CALLBACK_URL").WithWriter(cmd.OutOrStdout())
		tbl.AddRow(p.Name(), configured, pc.Site, pc.Scope, pc.TokenMode, pc.CallbackURL)
		tbl.Print()

		return nil
	}

	return command
}

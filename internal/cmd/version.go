package cmd

import (
	"fmt"

	"github.com/jsiebens/weiboauth/internal/version"
	"github.com/spf13/cobra"
)

func versionCommand() *cobra.Command {
	var command = &cobra.Command{
		Use:          "version",
		Short:        "Display version information",
		SilenceUsage: true,
	}

	command.Run = func(cmd *cobra.Command, args []string) {
		info := version.Get()
		fmt.Fprintf(cmd.OutOrStdout(), `Version:       %s
Git Revision:  %s
Go Version:    %s
`, info.Version, info.Revision, info.GoVersion)
	}

	return command
}

package cmd

import (
	"github.com/jsiebens/weiboauth/internal/config"
	"github.com/jsiebens/weiboauth/internal/server"
	"github.com/spf13/cobra"
)

func serverCommand() *cobra.Command {
	command := &cobra.Command{
		Use:          "server",
		Short:        "Start a weiboauth server",
		SilenceUsage: true,
	}

	cbf := prepareConfigCommand(command)

	command.RunE = func(command *cobra.Command, args []string) error {
		c, err := cbf.load()
		if err != nil {
			return err
		}

		return server.Start(c)
	}

	return command
}

type configByFlags struct {
	file string
	c    config.Config
}

func prepareConfigCommand(cmd *cobra.Command) *configByFlags {
	c := &configByFlags{}
	c.prepareCommand(cmd)
	return c
}

func (c *configByFlags) load() (*config.Config, error) {
	return config.LoadConfig(c.file, &c.c)
}

func (c *configByFlags) prepareCommand(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&c.file, "config", "c", "", "Path to the configuration file.")

	cmd.Flags().StringVar(&c.c.HttpListenAddr, "http-listen-addr", "", "")
	cmd.Flags().StringVar(&c.c.MetricsListenAddr, "metrics-listen-addr", "", "")
	cmd.Flags().StringVar(&c.c.ServerUrl, "server-url", "", "")

	cmd.Flags().StringVar(&c.c.Database.Type, "database-type", "", "")
	cmd.Flags().StringVar(&c.c.Database.Url, "database-url", "", "")

	cmd.Flags().StringVar(&c.c.Logging.Level, "logging-level", "", "")
	cmd.Flags().StringVar(&c.c.Logging.Format, "logging-format", "", "")
	cmd.Flags().StringVar(&c.c.Logging.File, "logging-file", "", "")

	cmd.Flags().StringVar(&c.c.Providers.Weibo.ClientKey, "weibo-client-key", "", "")
	cmd.Flags().StringVar(&c.c.Providers.Weibo.ClientSecret, "weibo-client-secret", "", "")
	cmd.Flags().StringVar(&c.c.Providers.Weibo.CallbackUrl, "weibo-callback-url", "", "")
	cmd.Flags().StringVar(&c.c.Providers.Weibo.Scope, "weibo-scope", "", "")
	cmd.Flags().StringVar(&c.c.Providers.Weibo.Site, "weibo-site", "", "")
	cmd.Flags().StringVar(&c.c.Providers.Weibo.TokenMode, "weibo-token-mode", "", "")
	cmd.Flags().StringVar(&c.c.Providers.Weibo.HttpTimeout, "weibo-http-timeout", "", "")
}

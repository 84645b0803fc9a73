package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/telarpress/contact-relay/internal/app"
	"github.com/telarpress/contact-relay/internal/config"
	"go.uber.org/zap"
)

var (
	configFile string
	envFile    string
	host       string
	port       int
	logLevel   string

	rootCmd = &cobra.Command{
		Use:          "contactd",
		Short:        "contactd relays contact form submissions to email after a reCAPTCHA check",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}

			a, err := app.Load(configFile, overrides(cmd)...)
			if err != nil {
				return err
			}
			defer a.Logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := a.Server()
			if err := srv.Run(ctx); err != nil {
				a.Logger.Error("HTTP server stopped", zap.Error(err))
				return err
			}
			a.Logger.Info("HTTP server stopped")
			return nil
		},
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}

			opts, err := config.Load(configFile, overrides(cmd)...)
			if err != nil {
				return err
			}
			return config.Dump(cmd.OutOrStdout(), opts)
		},
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "config file (yaml, toml or json)")
	flags.StringVar(&envFile, "env-file", ".env", "optional dotenv file loaded before the environment is read")
	flags.StringVar(&host, "host", "", "interface to listen on")
	flags.IntVarP(&port, "port", "p", 0, "port to listen on")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(configCmd)
}

// overrides turns flags set on the command line into config overrides, so
// unset flags leave file and environment values alone.
func overrides(cmd *cobra.Command) []config.Option {
	var opts []config.Option
	flags := cmd.Flags()
	if flags.Changed("host") {
		opts = append(opts, config.Option{Key: "host", Value: host})
	}
	if flags.Changed("port") {
		opts = append(opts, config.Option{Key: "port", Value: port})
	}
	if flags.Changed("log-level") {
		opts = append(opts, config.Option{Key: "log_level", Value: logLevel})
	}
	return opts
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

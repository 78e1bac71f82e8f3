package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Netflix/go-env"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "signaling",
		Short:         "WebRTC signaling relay",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCommand())

	return root
}

// newServeCommand reads Settings from the environment. Flags that are set
// explicitly win over their environment variable.
func newServeCommand() *cobra.Command {
	var (
		port        int
		basePath    string
		logEncoding string
		logLevel    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the websocket and REST servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var settings Settings
			if _, err := env.UnmarshalFromEnviron(&settings); err != nil {
				return fmt.Errorf("parse settings from environment: %w", err)
			}

			flags := cmd.Flags()
			if flags.Changed("port") {
				settings.Port = port
			}
			if flags.Changed("base-path") {
				settings.BasePath = basePath
			}
			if flags.Changed("log-encoding") {
				settings.LogEncoding = logEncoding
			}
			if flags.Changed("log-level") {
				settings.LogLevel = logLevel
			}

			logger, err := buildZapLogger(settings.LogEncoding, settings.LogLevel)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			defer logger.Sync()

			app, err := NewApp(cmd.Context(), logger, settings)
			if err != nil {
				logger.Error("failed to setup", zap.Error(err))
				return err
			}

			if err := app.Run(cmd.Context()); err != nil {
				logger.Error("server exited with error", zap.Error(err))
				return err
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 8000, "HTTP listen port (PORT)")
	cmd.Flags().StringVar(&basePath, "base-path", "/signaling", "router path prefix (BASE_PATH)")
	cmd.Flags().StringVar(&logEncoding, "log-encoding", "console", "json or console (LOG_ENCODING)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "minimum log level (LOG_LEVEL)")

	return cmd
}
